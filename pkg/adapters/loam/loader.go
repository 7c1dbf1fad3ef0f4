// Package loam loads a story from a directory of scene files through the
// Loam document repository. Each file is one scene: frontmatter carries the
// id, title and choices, the body is the scene text.
package loam

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/story"
)

// Loader adapts a Loam repository to ports.StoryLoader.
type Loader struct {
	Repo *loam.TypedRepository[SceneMetadata]

	title  string
	start  string
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTitle sets the story title. Defaults to the directory name when opened via Open.
func WithTitle(title string) Option {
	return func(l *Loader) { l.title = title }
}

// WithStart overrides the start scene. A scene flagged `start: true` is used otherwise.
func WithStart(id string) Option {
	return func(l *Loader) { l.start = id }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[SceneMetadata], opts ...Option) *Loader {
	l := &Loader{
		Repo:   repo,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across markdown, yaml and json.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	base := []Option{WithTitle(filepath.Base(absPath))}
	return New(loam.NewTypedRepository[SceneMetadata](repo), append(base, opts...)...), nil
}

// Load reads every scene and assembles a normalized authoring graph.
// Scenes are ordered by id so repeated loads are stable.
func (l *Loader) Load(ctx context.Context) (*domain.AuthoringGraph, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	nodes := make([]domain.AuthoringNode, 0, len(docs))
	start := l.start

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		if doc.Data.Start && l.start == "" {
			if start != "" {
				return nil, fmt.Errorf("multiple start scenes: '%s' and '%s'", start, id)
			}
			start = id
		}

		nodes = append(nodes, buildNode(id, doc.Data, doc.Content))
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	g := &domain.AuthoringGraph{
		Meta: domain.Meta{
			Title: l.title,
			Start: start,
		},
		Nodes: nodes,
	}
	l.logger.Debug("loaded scenes", "count", len(nodes), "start", start)
	return story.NormalizeSpec(g), nil
}

func buildNode(id string, meta SceneMetadata, content string) domain.AuthoringNode {
	node := domain.AuthoringNode{
		ID:      id,
		Title:   meta.Title,
		Text:    strings.TrimSpace(content),
		Image:   meta.Image,
		Actions: meta.Actions,
		Choices: make([]domain.AuthoringChoice, 0, len(meta.Choices)),
	}
	for i, c := range meta.Choices {
		label := c.Label
		if label == "" {
			label = c.Text
		}
		target := c.Target
		if target == "" {
			target = c.To
		}
		choiceID := c.ID
		if choiceID == "" {
			choiceID = fmt.Sprintf("%s-%d", id, i+1)
		}
		node.Choices = append(node.Choices, domain.AuthoringChoice{
			ID:         choiceID,
			Label:      label,
			Target:     trimExtension(target),
			Conditions: c.Conditions,
			Actions:    c.Actions,
		})
	}
	return node
}

// ListScenes lists all scene ids in the repository.
func (l *Loader) ListScenes(ctx context.Context) ([]string, error) {
	g, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return g.NodeIDs(), nil
}

// trimExtension strips scene file extensions only; dotted ids like "ch1.intro" survive.
func trimExtension(id string) string {
	switch ext := filepath.Ext(id); ext {
	case ".md", ".json", ".yaml", ".yml":
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch emits the id of every scene file that changes until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
