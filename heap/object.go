package heap

// Kind is the variant tag of a heap object.
type Kind uint8

const (
	// KindInteger is a boxed signed 32-bit integer.
	KindInteger Kind = iota

	// KindPair holds references to two other heap objects.
	KindPair
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindPair:
		return "Pair"
	default:
		return "Unknown"
	}
}

// valid reports whether k names one of the supported object kinds.
func (k Kind) valid() bool {
	return k == KindInteger || k == KindPair
}

// Object is a single fixed-layout heap object.
//
// Int carries the payload of a KindInteger object. First and Second carry
// the fields of a KindPair object; they are NilRef only in the window
// between allocation and construction, never once the pair is reachable.
// The fields of the inactive variant are ignored.
//
// Collection scratch state (the forwarding destination) lives in a side
// table owned by the collector, not in the object itself, so an Object's
// shape is its steady-state value and nothing more.
type Object struct {
	Kind   Kind
	Int    int32
	First  Ref
	Second Ref
}
