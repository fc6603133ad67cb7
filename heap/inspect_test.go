package heap

import (
	"strings"
	"testing"
)

func TestRenderInteger(t *testing.T) {
	h, _ := New(Config{})
	ref := mustInt(t, h, -42)
	if got := h.Render(ref); got != "-42" {
		t.Errorf("Render = %q, want -42", got)
	}
}

func TestRenderNestedPairs(t *testing.T) {
	h, _ := New(Config{})
	mustInt(t, h, 1)
	mustInt(t, h, 2)
	mustPair(t, h)
	mustInt(t, h, 3)
	mustInt(t, h, 4)
	mustPair(t, h)
	outer := mustPair(t, h)

	if got := h.Render(outer); got != "((1, 2), (3, 4))" {
		t.Errorf("Render = %q, want ((1, 2), (3, 4))", got)
	}
}

// Rendering a cyclic structure terminates, eliding past the depth limit.
func TestRenderCycleTerminates(t *testing.T) {
	h, _ := New(Config{})
	mustInt(t, h, 1)
	mustInt(t, h, 2)
	a := mustPair(t, h)
	h.SetSecond(a, a)

	got := h.Render(a)
	if !strings.Contains(got, "...") {
		t.Errorf("Render = %q, want elision marker", got)
	}
	if !strings.HasPrefix(got, "(1, ") {
		t.Errorf("Render = %q, want it to open with the first field", got)
	}
}

func TestRenderDepth(t *testing.T) {
	h, _ := New(Config{})
	mustInt(t, h, 1)
	mustInt(t, h, 2)
	pair := mustPair(t, h)

	if got := h.RenderDepth(pair, 1); got != "(..., ...)" {
		t.Errorf("RenderDepth(1) = %q, want (..., ...)", got)
	}
	if got := h.RenderDepth(pair, 0); got != "..." {
		t.Errorf("RenderDepth(0) = %q, want ...", got)
	}
}
