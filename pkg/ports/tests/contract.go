package tests

import (
	"context"
	"testing"

	"github.com/aretw0/storyloom/pkg/analysis"
	"github.com/aretw0/storyloom/pkg/ports"
)

// StoryLoaderContractTest is a reusable test suite that verifies if an
// adapter complies with ports.StoryLoader. wantIDs lists the node ids the
// loader is expected to produce.
func StoryLoaderContractTest(t *testing.T, loader ports.StoryLoader, wantStart string, wantIDs []string) {
	t.Helper()

	t.Run("Load", func(t *testing.T) {
		g, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading story: %v", err)
		}
		if g.Meta.Start != wantStart {
			t.Errorf("start mismatch: got %q, want %q", g.Meta.Start, wantStart)
		}

		if len(g.Nodes) != len(wantIDs) {
			t.Errorf("expected %d nodes, got %d", len(wantIDs), len(g.Nodes))
		}

		lookup := make(map[string]bool)
		for _, id := range g.NodeIDs() {
			lookup[id] = true
		}
		for _, id := range wantIDs {
			if !lookup[id] {
				t.Errorf("node %s missing from story", id)
			}
		}
	})

	t.Run("Load is repeatable", func(t *testing.T) {
		a, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("first load: %v", err)
		}
		b, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("second load: %v", err)
		}
		if len(a.Nodes) != len(b.Nodes) {
			t.Errorf("node count changed between loads: %d vs %d", len(a.Nodes), len(b.Nodes))
		}
	})

	t.Run("No duplicate ids", func(t *testing.T) {
		g, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error loading story: %v", err)
		}
		if dups := analysis.DuplicateIDs(g); len(dups) > 0 {
			t.Errorf("loader produced duplicate ids: %v", dups)
		}
	})
}
