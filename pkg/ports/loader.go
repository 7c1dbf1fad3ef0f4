package ports

import (
	"context"

	"github.com/aretw0/storyloom/pkg/domain"
)

// StoryLoader defines how a story is obtained from its source.
// This allows the source (single file, Loam folder, memory) to be decoupled.
type StoryLoader interface {
	// Load returns the story in authoring shape. Implementations return the
	// graph as found; validation is left to the analysis package.
	Load(ctx context.Context) (*domain.AuthoringGraph, error)
}
