// Package heap implements a compacting heap for a tiny tagged-object VM.
//
// The heap owns a contiguous arena of fixed-size objects and a bounded
// root stack. Two object kinds exist: boxed 32-bit integers and pairs of
// references to other objects. Objects are handed out by a bump allocator
// and reclaimed en masse by a stop-the-world mark-compact collection in
// the classic LISP2 style: mark reachable objects from the roots, assign
// each live object its post-compaction destination in a single ascending
// scan, rewrite every reference (roots and live pair fields) to the
// destination, then slide the live objects down into a dense prefix.
//
// References are arena indices (Ref), not machine addresses, so growing
// the arena never invalidates them; only compaction rewrites them, and it
// rewrites every copy a caller can observe through the root stack.
package heap
