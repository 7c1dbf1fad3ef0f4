package memory

import (
	"context"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/story"
)

// Loader implements ports.StoryLoader over a graph held in memory.
type Loader struct {
	graph *domain.AuthoringGraph
}

// NewLoader creates a loader serving a normalized copy of g.
func NewLoader(g *domain.AuthoringGraph) *Loader {
	return &Loader{graph: story.NormalizeSpec(g)}
}

// NewFromNodes builds a loader from nodes, starting at the first one.
// This improves DX for tests.
func NewFromNodes(title string, nodes ...domain.AuthoringNode) *Loader {
	g := &domain.AuthoringGraph{Meta: domain.Meta{Title: title}, Nodes: nodes}
	if len(nodes) > 0 {
		g.Meta.Start = nodes[0].ID
	}
	return NewLoader(g)
}

// Load returns a fresh copy on every call.
func (l *Loader) Load(ctx context.Context) (*domain.AuthoringGraph, error) {
	return story.NormalizeSpec(l.graph), nil
}
