package heap

import (
	"fmt"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("slide.heap")

// Construction defaults.
const (
	// DefaultInitialCapacity is the arena size, in object slots, used
	// when Config.InitialCapacity is zero.
	DefaultInitialCapacity = 1024

	// DefaultMaxRoots is the root stack bound used when Config.MaxRoots
	// is zero.
	DefaultMaxRoots = 256
)

// Config describes a heap to construct.
type Config struct {
	// InitialCapacity is the arena size in object slots. Zero selects
	// DefaultInitialCapacity. Under the fixed policy this is also the
	// permanent capacity.
	InitialCapacity int

	// MaxRoots bounds the root stack. Zero selects DefaultMaxRoots.
	MaxRoots int

	// Policy decides the arena capacity after each collection. Nil
	// selects the headroom policy with its defaults.
	Policy GrowthPolicy

	// Observer, if non-nil, is called at the end of every collection,
	// explicit or allocation-triggered, with that collection's stats.
	// It runs on the allocating goroutine before the allocation resumes.
	Observer func(CollectionStats)
}

// Heap is a VM instance: one object arena plus one bounded root stack.
//
// A Heap is exclusively owned by a single goroutine; allocation and
// collection are synchronous and never overlap with each other or with
// mutator calls.
type Heap struct {
	objects []Object // the arena; len(objects) is the capacity
	next    int      // bump cursor, exclusive upper bound of allocated slots
	roots   rootStack
	policy  GrowthPolicy

	observer    func(CollectionStats)
	collections uint64
	lastStats   CollectionStats
}

// New constructs an empty heap.
func New(cfg Config) (*Heap, error) {
	if cfg.InitialCapacity < 0 {
		return nil, fmt.Errorf("heap: initial capacity %d is negative", cfg.InitialCapacity)
	}
	if cfg.MaxRoots < 0 {
		return nil, fmt.Errorf("heap: max roots %d is negative", cfg.MaxRoots)
	}
	capacity := cfg.InitialCapacity
	if capacity == 0 {
		capacity = DefaultInitialCapacity
	}
	maxRoots := cfg.MaxRoots
	if maxRoots == 0 {
		maxRoots = DefaultMaxRoots
	}
	policy := cfg.Policy
	if policy == nil {
		policy = NewHeadroomPolicy(0, 0)
	}
	return &Heap{
		objects:  make([]Object, capacity),
		roots:    newRootStack(maxRoots),
		policy:   policy,
		observer: cfg.Observer,
	}, nil
}

// Restore constructs a heap whose arena holds the given objects as a
// dense prefix, with the given root slots, as produced by a snapshot.
// Pair fields and roots must reference slots within the prefix.
func Restore(cfg Config, objects []Object, roots []Ref) (*Heap, error) {
	h, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if len(roots) > h.roots.max {
		return nil, fmt.Errorf("heap: %d roots exceed bound %d: %w",
			len(roots), h.roots.max, ErrRootOverflow)
	}
	if len(objects) > len(h.objects) {
		grown := h.policy.NextCapacity(len(objects), 0, len(h.objects))
		if grown < len(objects) {
			return nil, fmt.Errorf("heap: %d objects exceed capacity %d: %w",
				len(objects), len(h.objects), ErrOutOfMemory)
		}
		h.objects = make([]Object, grown)
	}
	for i, obj := range objects {
		if !obj.Kind.valid() {
			return nil, fmt.Errorf("heap: object %d has unknown kind %d", i, obj.Kind)
		}
		if obj.Kind == KindPair {
			if !h.validSlot(obj.First, len(objects)) || !h.validSlot(obj.Second, len(objects)) {
				return nil, fmt.Errorf("heap: pair %d references outside the heap", i)
			}
		}
	}
	copy(h.objects, objects)
	h.next = len(objects)
	for i, ref := range roots {
		if !h.validSlot(ref, len(objects)) {
			return nil, fmt.Errorf("heap: root %d references outside the heap", i)
		}
		h.roots.slots = append(h.roots.slots, ref)
	}
	return h, nil
}

func (h *Heap) validSlot(ref Ref, extent int) bool {
	return ref >= 0 && int(ref) < extent
}

// ---------------------------------------------------------------------------
// Allocation
// ---------------------------------------------------------------------------

// allocate claims the next arena slot for an object of the given kind,
// collecting first when the arena is full.
//
// The returned object is not yet reachable. Callers must root it, or
// store it into an already-reachable object, before anything that could
// trigger another collection runs; a collection cannot see an unrooted
// object.
func (h *Heap) allocate(kind Kind) (Ref, error) {
	if h.next+1 > len(h.objects) {
		h.collect(1)

		// If there still isn't room after collection, it can't fit.
		if h.next+1 > len(h.objects) {
			return NilRef, fmt.Errorf("heap: allocating %s with %d of %d slots live: %w",
				kind, h.next, len(h.objects), ErrOutOfMemory)
		}
	}

	ref := Ref(h.next)
	h.next++
	h.objects[ref] = Object{Kind: kind, First: NilRef, Second: NilRef}
	return ref, nil
}

// AllocateInteger allocates a boxed integer, pushes it onto the root
// stack, and returns its reference.
func (h *Heap) AllocateInteger(value int32) (Ref, error) {
	ref, err := h.allocate(KindInteger)
	if err != nil {
		return NilRef, err
	}
	h.objects[ref].Int = value

	if err := h.Push(ref); err != nil {
		return NilRef, fmt.Errorf("heap: rooting integer: %w", err)
	}
	return ref, nil
}

// AllocatePair allocates a pair whose fields are popped from the root
// stack, pushes the pair, and returns its reference.
//
// The pair is allocated before its fields are popped so that a collection
// triggered by the allocation still sees the fields as roots. Second is
// popped before First; that ordering decides which operand lands in which
// field and is part of the contract.
func (h *Heap) AllocatePair() (Ref, error) {
	ref, err := h.allocate(KindPair)
	if err != nil {
		return NilRef, err
	}

	second, err := h.Pop()
	if err != nil {
		return NilRef, fmt.Errorf("heap: popping pair second: %w", err)
	}
	first, err := h.Pop()
	if err != nil {
		return NilRef, fmt.Errorf("heap: popping pair first: %w", err)
	}
	h.objects[ref].First = first
	h.objects[ref].Second = second

	if err := h.Push(ref); err != nil {
		return NilRef, fmt.Errorf("heap: rooting pair: %w", err)
	}
	return ref, nil
}

// ---------------------------------------------------------------------------
// Root stack
// ---------------------------------------------------------------------------

// Push appends ref to the root stack. Returns ErrRootOverflow at the
// configured bound.
func (h *Heap) Push(ref Ref) error {
	return h.roots.push(ref)
}

// Pop removes and returns the top root. Returns ErrRootUnderflow when
// the stack is empty.
func (h *Heap) Pop() (Ref, error) {
	return h.roots.pop()
}

// RootCount returns the number of occupied root slots.
func (h *Heap) RootCount() int {
	return h.roots.len()
}

// Roots returns a copy of the root slots in stack order, bottom first.
func (h *Heap) Roots() []Ref {
	out := make([]Ref, h.roots.len())
	copy(out, h.roots.slots)
	return out
}

// ---------------------------------------------------------------------------
// Object access
// ---------------------------------------------------------------------------

func (h *Heap) checkRef(ref Ref) {
	if ref < 0 || int(ref) >= h.next {
		panic("heap: ref out of range")
	}
}

// ObjectAt returns a copy of the object at ref.
// Panics if ref is outside the allocated prefix.
func (h *Heap) ObjectAt(ref Ref) Object {
	h.checkRef(ref)
	return h.objects[ref]
}

// KindOf returns the kind of the object at ref.
func (h *Heap) KindOf(ref Ref) Kind {
	h.checkRef(ref)
	return h.objects[ref].Kind
}

// IntValue returns the payload of the integer at ref.
// Panics if the object is not an integer.
func (h *Heap) IntValue(ref Ref) int32 {
	h.checkRef(ref)
	if h.objects[ref].Kind != KindInteger {
		panic("heap: IntValue: not an integer")
	}
	return h.objects[ref].Int
}

// Pair returns the fields of the pair at ref.
// Panics if the object is not a pair.
func (h *Heap) Pair(ref Ref) (first, second Ref) {
	h.checkRef(ref)
	obj := &h.objects[ref]
	if obj.Kind != KindPair {
		panic("heap: Pair: not a pair")
	}
	return obj.First, obj.Second
}

// SetFirst stores target into the first field of the pair at ref.
// Panics if ref is not a pair or target is not an allocated object.
func (h *Heap) SetFirst(ref, target Ref) {
	h.checkRef(ref)
	h.checkRef(target)
	if h.objects[ref].Kind != KindPair {
		panic("heap: SetFirst: not a pair")
	}
	h.objects[ref].First = target
}

// SetSecond stores target into the second field of the pair at ref.
// Panics if ref is not a pair or target is not an allocated object.
func (h *Heap) SetSecond(ref, target Ref) {
	h.checkRef(ref)
	h.checkRef(target)
	if h.objects[ref].Kind != KindPair {
		panic("heap: SetSecond: not a pair")
	}
	h.objects[ref].Second = target
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// LiveCount returns the number of objects in the allocated prefix of the
// arena. Immediately after a collection this is exactly the number of
// objects reachable from the roots; between collections it also counts
// garbage not yet reclaimed.
func (h *Heap) LiveCount() int {
	return h.next
}

// Capacity returns the arena capacity in object slots.
func (h *Heap) Capacity() int {
	return len(h.objects)
}

// Policy returns the heap's growth policy.
func (h *Heap) Policy() GrowthPolicy {
	return h.policy
}

// CollectionCount returns the number of collections performed.
func (h *Heap) CollectionCount() uint64 {
	return h.collections
}

// LastStats returns statistics from the most recent collection, or the
// zero stats if none has run.
func (h *Heap) LastStats() CollectionStats {
	return h.lastStats
}

// Reset discards every object and root, returning the heap to its
// post-construction state. The arena keeps its current capacity.
func (h *Heap) Reset() {
	h.next = 0
	h.roots.reset()
}
