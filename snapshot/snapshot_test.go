package snapshot

import (
	"testing"

	"github.com/chazu/slide/heap"
)

func buildNested(t *testing.T) *heap.Heap {
	t.Helper()
	h, err := heap.New(heap.Config{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int32{1, 2} {
		if _, err := h.AllocateInteger(v); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := h.AllocatePair(); err != nil {
		t.Fatal(err)
	}
	for _, v := range []int32{3, 4} {
		if _, err := h.AllocateInteger(v); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := h.AllocatePair(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.AllocatePair(); err != nil {
		t.Fatal(err)
	}
	return h
}

func TestRoundTrip(t *testing.T) {
	h := buildNested(t)

	data, err := Write(h)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	restored, err := Read(data, heap.Config{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if restored.LiveCount() != h.LiveCount() {
		t.Errorf("LiveCount = %d, want %d", restored.LiveCount(), h.LiveCount())
	}
	if restored.RootCount() != h.RootCount() {
		t.Errorf("RootCount = %d, want %d", restored.RootCount(), h.RootCount())
	}
	want := h.Render(h.Roots()[0])
	if got := restored.Render(restored.Roots()[0]); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}

	// The restored heap is fully functional: it collects to the same
	// live count and keeps allocating.
	stats := restored.Collect()
	if stats.Live != 7 {
		t.Errorf("live after collection = %d, want 7", stats.Live)
	}
	if _, err := restored.AllocateInteger(8); err != nil {
		t.Errorf("allocation on restored heap failed: %v", err)
	}
}

func TestRoundTripCycle(t *testing.T) {
	h, _ := heap.New(heap.Config{})
	h.AllocateInteger(1)
	h.AllocateInteger(2)
	a, err := h.AllocatePair()
	if err != nil {
		t.Fatal(err)
	}
	h.SetSecond(a, a)

	data, err := Write(h)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	restored, err := Read(data, heap.Config{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	root := restored.Roots()[0]
	if _, second := restored.Pair(root); second != root {
		t.Errorf("self-cycle not preserved: Second = %d, want %d", second, root)
	}
	if stats := restored.Collect(); stats.Live != 2 {
		t.Errorf("live = %d, want 2", stats.Live)
	}
}

// Write collects, so garbage never reaches the image.
func TestWriteExcludesGarbage(t *testing.T) {
	h, _ := heap.New(heap.Config{})
	h.AllocateInteger(1)
	h.AllocateInteger(2)
	h.Pop()

	data, err := Write(h)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Read(data, heap.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if restored.LiveCount() != 1 {
		t.Errorf("LiveCount = %d, want 1", restored.LiveCount())
	}
}

func TestWriteDeterministic(t *testing.T) {
	a, err := Write(buildNested(t))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Write(buildNested(t))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("identical heaps produced different images")
	}
}

func TestReadRejectsBadImages(t *testing.T) {
	marshal := func(img Image) []byte {
		data, err := cborEncMode.Marshal(&img)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"not cbor", []byte("definitely not CBOR")},
		{"bad version", marshal(Image{Version: 99})},
		{
			"dangling pair field",
			marshal(Image{Version: Version, Objects: []Record{
				{Kind: uint8(heap.KindPair), First: 0, Second: 7},
			}}),
		},
		{
			"dangling root",
			marshal(Image{Version: Version, Roots: []int32{0}}),
		},
		{
			"unknown kind",
			marshal(Image{Version: Version, Objects: []Record{{Kind: 9}}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(tt.data, heap.Config{}); err == nil {
				t.Error("Read should have failed")
			}
		})
	}
}
