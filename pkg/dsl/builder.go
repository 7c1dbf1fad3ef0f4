package dsl

import (
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/domain"
)

// Builder manages the story construction.
type Builder struct {
	meta   domain.Meta
	order  []string
	scenes map[string]*SceneBuilder
}

// New creates a new story builder. The first scene added is the start
// unless Start says otherwise.
func New(title string) *Builder {
	return &Builder{
		meta:   domain.Meta{Title: title},
		scenes: make(map[string]*SceneBuilder),
	}
}

// Author sets the author shown in the story header.
func (b *Builder) Author(name string) *Builder {
	b.meta.Author = name
	return b
}

// Start sets the entry scene.
func (b *Builder) Start(id string) *Builder {
	b.meta.Start = id
	return b
}

// Scene creates a new scene in the story.
// If the scene already exists, it returns the existing builder.
func (b *Builder) Scene(id string) *SceneBuilder {
	if sb, ok := b.scenes[id]; ok {
		return sb
	}
	sb := &SceneBuilder{node: domain.AuthoringNode{ID: id}}
	b.scenes[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build returns the story in the authoring shape, scenes in the order they
// were first added.
func (b *Builder) Build() *domain.AuthoringGraph {
	g := &domain.AuthoringGraph{
		Version: domain.DefaultVersion,
		Meta:    b.meta,
		Nodes:   make([]domain.AuthoringNode, 0, len(b.order)),
	}
	if g.Meta.Start == "" && len(b.order) > 0 {
		g.Meta.Start = b.order[0]
	}
	for _, id := range b.order {
		g.Nodes = append(g.Nodes, b.scenes[id].Build())
	}
	return g
}

// Loader compiles the story into a memory loader.
func (b *Builder) Loader() *memory.Loader {
	return memory.NewLoader(b.Build())
}
