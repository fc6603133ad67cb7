package heap

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth is the default recursion depth for Render.
const DefaultMaxDepth = 8

// Render returns a human-readable dump of the value at ref, rendering
// pairs recursively: integers as their decimal value, pairs as
// "(first, second)". Recursion is depth-limited so that dumping a cyclic
// structure terminates; elided sub-structure renders as "...".
func (h *Heap) Render(ref Ref) string {
	return h.RenderDepth(ref, DefaultMaxDepth)
}

// RenderDepth renders the value at ref to at most the given depth.
func (h *Heap) RenderDepth(ref Ref, depth int) string {
	var b strings.Builder
	h.render(&b, ref, depth)
	return b.String()
}

func (h *Heap) render(b *strings.Builder, ref Ref, depth int) {
	if depth <= 0 {
		b.WriteString("...")
		return
	}
	h.checkRef(ref)

	obj := &h.objects[ref]
	switch obj.Kind {
	case KindInteger:
		fmt.Fprintf(b, "%d", obj.Int)

	case KindPair:
		b.WriteString("(")
		h.render(b, obj.First, depth-1)
		b.WriteString(", ")
		h.render(b, obj.Second, depth-1)
		b.WriteString(")")
	}
}
