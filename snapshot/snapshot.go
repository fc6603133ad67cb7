// Package snapshot serializes a heap to a CBOR image and restores it.
//
// An image holds exactly the live object graph: Write collects the heap
// first, so the encoded arena is a dense prefix and every index in it is
// meaningful. Refs are encoded as their arena indices, which are stable
// within an image by construction.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/slide/heap"
)

// Version is the image format version written by this package.
const Version = 1

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Image is the serialized form of a collected heap.
type Image struct {
	Version int      `cbor:"version"`
	Objects []Record `cbor:"objects"`
	Roots   []int32  `cbor:"roots"`
}

// Record is one serialized object. Kind discriminates the payload:
// integers use Int, pairs use First and Second as arena indices.
type Record struct {
	Kind   uint8 `cbor:"kind"`
	Int    int32 `cbor:"int"`
	First  int32 `cbor:"first"`
	Second int32 `cbor:"second"`
}

// Write collects h and serializes the surviving graph to CBOR bytes.
//
// Collecting is observable: it compacts h and rewrites the references a
// caller holds through the root stack, exactly as an explicit Collect
// would.
func Write(h *heap.Heap) ([]byte, error) {
	h.Collect()

	img := Image{
		Version: Version,
		Objects: make([]Record, h.LiveCount()),
	}
	for i := range img.Objects {
		obj := h.ObjectAt(heap.Ref(i))
		img.Objects[i] = Record{
			Kind:   uint8(obj.Kind),
			Int:    obj.Int,
			First:  int32(obj.First),
			Second: int32(obj.Second),
		}
	}
	for _, root := range h.Roots() {
		img.Roots = append(img.Roots, int32(root))
	}

	data, err := cborEncMode.Marshal(&img)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal image: %w", err)
	}
	return data, nil
}

// Read deserializes an image and rebuilds a heap under cfg whose
// observable object graph is identical to the one Write captured.
// Indices are validated before any object is constructed.
func Read(data []byte, cfg heap.Config) (*heap.Heap, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal image: %w", err)
	}
	if img.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported image version %d", img.Version)
	}

	objects := make([]heap.Object, len(img.Objects))
	for i, rec := range img.Objects {
		objects[i] = heap.Object{
			Kind:   heap.Kind(rec.Kind),
			Int:    rec.Int,
			First:  heap.Ref(rec.First),
			Second: heap.Ref(rec.Second),
		}
	}
	roots := make([]heap.Ref, len(img.Roots))
	for i, root := range img.Roots {
		roots[i] = heap.Ref(root)
	}

	h, err := heap.Restore(cfg, objects, roots)
	if err != nil {
		return nil, fmt.Errorf("snapshot: restore heap: %w", err)
	}
	return h, nil
}
