package heap

// Ref identifies an object by its slot index in the heap's arena.
//
// A Ref is only meaningful against the heap that issued it, and a
// collection may relocate the object it names. The collector rewrites
// every Ref held in the root stack and in live pair fields, so a Ref
// obtained from Pop or returned by an allocation entry point stays valid
// across collections for as long as the object itself is reachable.
type Ref int32

// NilRef is the absent reference. It never appears in the root stack or
// in the fields of a constructed pair.
const NilRef Ref = -1

// IsNil reports whether r is the absent reference.
func (r Ref) IsNil() bool {
	return r == NilRef
}
