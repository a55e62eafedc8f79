package handlers

import (
	"testing"

	"github.com/jpintar/countland/internal/benchmark"
)

func TestTimingPairs(t *testing.T) {
	report := &benchmark.Report{
		Runs: []benchmark.Run{
			{Variant: "full", Pipeline: "countland", Cells: 3000, Seconds: 1.1},
			{Variant: "full", Pipeline: "lognorm-louvain", Cells: 3000, Seconds: 2.2},
			{Variant: "full", Pipeline: "vst-louvain", Cells: 3000, Seconds: 3.3},
			{Variant: "subset", Pipeline: "countland", Cells: 3000, Seconds: 0.9},
			{Variant: "subset", Pipeline: "lognorm-louvain", Cells: 3000, Seconds: 1.8},
			// A variant where only one reference pipeline ran is dropped.
			{Variant: "cell-downsampled", Pipeline: "countland", Cells: 3000, Seconds: 0.5},
		},
	}

	pairs := timingPairs(report)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2: %+v", len(pairs), pairs)
	}
	if pairs[0].Variant != "full" || pairs[0].Countland != 1.1 || pairs[0].Graph != 2.2 {
		t.Errorf("full pair wrong: %+v", pairs[0])
	}
	if pairs[1].Variant != "subset" || pairs[1].Countland != 0.9 || pairs[1].Graph != 1.8 {
		t.Errorf("subset pair wrong: %+v", pairs[1])
	}
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	want := map[string]bool{"bench": false, "inspect": false, "history": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestBenchCmdFlags(t *testing.T) {
	cmd := NewBenchCmd()
	for _, flag := range []string{"seed", "clusters", "components", "neighbors", "resolution", "variants", "output", "save", "plots"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("bench command missing --%s", flag)
		}
	}
}
