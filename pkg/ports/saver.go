package ports

import (
	"context"

	"github.com/aretw0/storyloom/pkg/domain"
)

// ProgressSaver persists traversal state on behalf of the engine.
// The engine calls it after every successful mutation (auto-save).
type ProgressSaver interface {
	SaveProgress(ctx context.Context, state *domain.TraversalState) error
}

// ProgressSaverFunc adapts a plain function to ProgressSaver.
type ProgressSaverFunc func(ctx context.Context, state *domain.TraversalState) error

func (f ProgressSaverFunc) SaveProgress(ctx context.Context, state *domain.TraversalState) error {
	return f(ctx, state)
}
