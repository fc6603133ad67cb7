package heap

import "time"

// CollectionStats holds statistics from a single collection.
type CollectionStats struct {
	Sequence       uint64 // 1-based collection number
	Live           int    // objects surviving the collection
	Reclaimed      int    // objects swept away
	CapacityBefore int    // arena slots going in
	CapacityAfter  int    // arena slots after any resize
	Duration       time.Duration
	Timestamp      time.Time
}

// Collect performs a full stop-the-world collection: mark from the
// roots, assign forwarding destinations, rewrite references, and slide
// the live objects into a dense prefix. It blocks until complete.
//
// Afterwards LiveCount equals the number of objects that were reachable
// from the root stack when Collect was called, every root slot holds the
// relocated reference to the same logical object, and live pair fields
// reference the relocated positions of their original targets.
func (h *Heap) Collect() CollectionStats {
	return h.collect(0)
}

// collect runs one collection cycle with pending slots about to be
// allocated, which the growth policy folds into the new capacity.
func (h *Heap) collect(pending int) CollectionStats {
	start := time.Now()
	allocated := h.next
	capacityBefore := len(h.objects)

	// Find out which objects are still in use.
	forward := h.markAll()

	// Determine where they will end up.
	live := computeForwarding(forward)

	// Fix the references to them. This must happen while every live
	// object is still at its pre-move slot, because the rewrite reads
	// the side table through the old reference.
	h.fixPointers(forward)

	// Resize per policy, then slide. Moving live objects straight into
	// a fresh arena when the capacity changes keeps a shrink from
	// truncating objects that have not slid down yet.
	target := h.policy.NextCapacity(live, pending, capacityBefore)
	h.compact(forward, target)
	h.next = live

	h.collections++
	stats := CollectionStats{
		Sequence:       h.collections,
		Live:           live,
		Reclaimed:      allocated - live,
		CapacityBefore: capacityBefore,
		CapacityAfter:  len(h.objects),
		Duration:       time.Since(start),
		Timestamp:      start,
	}
	h.lastStats = stats

	log.Debugf("collection %d: %d live, %d reclaimed, capacity %d -> %d (%s, %s)",
		stats.Sequence, stats.Live, stats.Reclaimed,
		stats.CapacityBefore, stats.CapacityAfter, h.policy, stats.Duration)

	if h.observer != nil {
		h.observer(stats)
	}
	return stats
}

// markAll walks the object graph from every root slot and returns the
// forwarding side table for this cycle: one entry per allocated slot,
// NilRef for unreached objects and a non-nil placeholder for reached
// ones. The placeholder is the slot's own index; it is overwritten with
// the real destination before it is ever followed.
//
// The walk uses an explicit work list, so its space is bounded by the
// live object count rather than by the depth of the reference chains.
// A slot already non-nil in the table is skipped, which terminates
// cycles and visits shared sub-structure once.
func (h *Heap) markAll() []Ref {
	forward := make([]Ref, h.next)
	for i := range forward {
		forward[i] = NilRef
	}

	work := make([]Ref, h.roots.len(), h.roots.len()+16)
	copy(work, h.roots.slots)

	for len(work) > 0 {
		ref := work[len(work)-1]
		work = work[:len(work)-1]

		if forward[ref] != NilRef {
			continue
		}
		forward[ref] = ref

		obj := &h.objects[ref]
		if obj.Kind == KindPair {
			work = append(work, obj.First, obj.Second)
		}
	}
	return forward
}

// computeForwarding assigns each marked slot its post-compaction
// destination in a single ascending scan and returns the live count.
// Ascending assignment packs the survivors into a dense prefix in their
// original relative order.
func computeForwarding(forward []Ref) int {
	to := Ref(0)
	for from := range forward {
		if forward[from] != NilRef {
			forward[from] = to
			to++
		}
	}
	return int(to)
}

// fixPointers rewrites every root slot and every live pair's fields from
// the old reference to the referent's forwarding destination. Dead
// objects are skipped; their fields are never read.
func (h *Heap) fixPointers(forward []Ref) {
	for i, ref := range h.roots.slots {
		h.roots.slots[i] = forward[ref]
	}

	for from := 0; from < h.next; from++ {
		if forward[from] == NilRef {
			continue
		}
		obj := &h.objects[from]
		if obj.Kind == KindPair {
			obj.First = forward[obj.First]
			obj.Second = forward[obj.Second]
		}
	}
}

// compact slides each live object to its forwarding destination in one
// ascending scan. Destinations never exceed sources, so in-place moves
// cannot overwrite an object that has not moved yet. When the growth
// policy picked a different capacity the survivors move into a fresh
// arena instead, which is also what lets the arena shrink safely.
func (h *Heap) compact(forward []Ref, target int) {
	arena := h.objects
	if target != len(h.objects) {
		arena = make([]Object, target)
	}
	for from := 0; from < h.next; from++ {
		to := forward[from]
		if to == NilRef {
			continue
		}
		arena[to] = h.objects[from]
	}
	h.objects = arena
}
