package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	g := &domain.AuthoringGraph{Nodes: []domain.AuthoringNode{{ID: "start"}}}
	mgr := NewManager(StoryOpener(g, memory.NewStore(), "leak"))
	ctx := context.Background()
	count := 500

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Do(ctx, sid, func(context.Context, *storyloom.Game) error { return nil })
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
	if n := len(mgr.games); n != 0 {
		t.Errorf("expected no open games, got %d", n)
	}
}
