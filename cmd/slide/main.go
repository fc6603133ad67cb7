// slide demonstration driver - exercises the compacting heap
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/slide/config"
	"github.com/chazu/slide/gclog"
	"github.com/chazu/slide/heap"
	"github.com/chazu/slide/snapshot"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("slide.cli")

func main() {
	capacity := flag.Int("capacity", 0, "Initial heap capacity in object slots (overrides config)")
	policy := flag.String("policy", "", "Growth policy: fixed or headroom (overrides config)")
	factor := flag.Float64("factor", 0, "Headroom factor (overrides config)")
	maxRoots := flag.Int("max-roots", 0, "Root stack bound (overrides config)")
	configDir := flag.String("config", ".", "Directory to search upwards for slide.toml")
	statsDB := flag.String("stats-db", "", "SQLite file to append collection stats to (overrides config)")
	imagePath := flag.String("image", "", "Write a CBOR snapshot of the nested scenario's heap to this file")
	churn := flag.Int("churn", 100000, "Iterations for the churn scenario")
	verbosity := flag.Int("v", 0, "Log verbosity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slide [options]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the compacting-heap demonstration scenarios.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  slide                          # Run with slide.toml or defaults\n")
		fmt.Fprintf(os.Stderr, "  slide -policy fixed -capacity 64\n")
		fmt.Fprintf(os.Stderr, "  slide -stats-db collections.db -v 1\n")
		fmt.Fprintf(os.Stderr, "  slide -image demo.heap         # Snapshot the nested scenario\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	cfg := config.Default()
	if found, err := config.FindAndLoad(*configDir); err != nil {
		fatal("loading configuration: %v", err)
	} else if found != nil {
		cfg = found
		log.Infof("loaded %s from %s", config.FileName, found.Dir)
	}

	if *capacity != 0 {
		cfg.Heap.InitialCapacity = *capacity
	}
	if *policy != "" {
		cfg.Heap.Policy = *policy
	}
	if *factor != 0 {
		cfg.Heap.HeadroomFactor = *factor
	}
	if *maxRoots != 0 {
		cfg.Heap.MaxRoots = *maxRoots
	}
	if *statsDB != "" {
		cfg.Stats.Database = *statsDB
	}
	switch cfg.Heap.Policy {
	case config.PolicyFixed, config.PolicyHeadroom:
	default:
		fatal("unknown growth policy %q", cfg.Heap.Policy)
	}

	heapCfg := cfg.HeapConfig()

	if cfg.Stats.Database != "" {
		recorder, err := gclog.Open(cfg.Stats.Database)
		if err != nil {
			fatal("opening stats database: %v", err)
		}
		defer recorder.Close()
		heapCfg.Observer = func(s heap.CollectionStats) {
			if err := recorder.Record(s); err != nil {
				log.Errorf("recording collection %d: %v", s.Sequence, err)
			}
		}
		log.Infof("recording collection stats to %s", cfg.Stats.Database)
	}

	newHeap := func() *heap.Heap {
		h, err := heap.New(heapCfg)
		if err != nil {
			fatal("constructing heap: %v", err)
		}
		return h
	}

	scenarioPreserved(newHeap())
	scenarioReclaimed(newHeap())
	scenarioNested(newHeap(), *imagePath)
	scenarioCycles(newHeap())
	scenarioChurn(newHeap(), *churn)
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func scenarioPreserved(h *heap.Heap) {
	fmt.Println("Scenario 1: Objects on the root stack are preserved.")
	pushInt(h, 1)
	pushInt(h, 2)
	h.Collect()
	assertLive(h, 2)
}

func scenarioReclaimed(h *heap.Heap) {
	fmt.Println("Scenario 2: Unreached objects are collected.")
	pushInt(h, 1)
	pushInt(h, 2)
	pop(h)
	pop(h)
	h.Collect()
	assertLive(h, 0)
}

func scenarioNested(h *heap.Heap, imagePath string) {
	fmt.Println("Scenario 3: Nested objects are reached.")
	pushInt(h, 1)
	pushInt(h, 2)
	pushPair(h)
	pushInt(h, 3)
	pushInt(h, 4)
	pushPair(h)
	pushPair(h)

	h.Collect()
	assertLive(h, 7)
	outer := h.Roots()[0]
	fmt.Printf("  %s\n", h.Render(outer))

	if imagePath == "" {
		return
	}
	data, err := snapshot.Write(h)
	if err != nil {
		fatal("writing snapshot: %v", err)
	}
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		fatal("writing %s: %v", imagePath, err)
	}
	restored, err := snapshot.Read(data, heap.Config{})
	if err != nil {
		fatal("re-reading snapshot: %v", err)
	}
	fmt.Printf("  snapshot: %d bytes to %s, restores to %s\n",
		len(data), imagePath, restored.Render(restored.Roots()[0]))
}

func scenarioCycles(h *heap.Heap) {
	fmt.Println("Scenario 4: Cycles are handled.")
	pushInt(h, 1)
	pushInt(h, 2)
	a := pushPair(h)
	pushInt(h, 3)
	pushInt(h, 4)
	b := pushPair(h)

	h.SetSecond(a, b)
	h.SetSecond(b, a)

	h.Collect()
	assertLive(h, 4)
}

func scenarioChurn(h *heap.Heap, iterations int) {
	fmt.Printf("Scenario 5: Churn, %d rounds.\n", iterations)
	for i := 0; i < iterations; i++ {
		for j := 0; j < 20; j++ {
			pushInt(h, int32(i))
		}
		for j := 0; j < 20; j++ {
			pop(h)
		}
	}
	h.Collect()
	assertLive(h, 0)
	fmt.Printf("  %d collections over %d allocations\n",
		h.CollectionCount(), iterations*20)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func pushInt(h *heap.Heap, v int32) heap.Ref {
	ref, err := h.AllocateInteger(v)
	if err != nil {
		fatal("allocating integer %d: %v", v, err)
	}
	return ref
}

func pushPair(h *heap.Heap) heap.Ref {
	ref, err := h.AllocatePair()
	if err != nil {
		fatal("allocating pair: %v", err)
	}
	return ref
}

func pop(h *heap.Heap) heap.Ref {
	ref, err := h.Pop()
	if err != nil {
		fatal("popping root: %v", err)
	}
	return ref
}

func assertLive(h *heap.Heap, want int) {
	if got := h.LiveCount(); got != want {
		fatal("expected heap to contain %d objects, but had %d", want, got)
	}
	fmt.Printf("PASS: Expected and found %d live objects.\n", want)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
