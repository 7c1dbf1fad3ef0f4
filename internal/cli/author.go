package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/storyloom/internal/config"
	"github.com/aretw0/storyloom/internal/presentation/graph"
	loamadapter "github.com/aretw0/storyloom/pkg/adapters/loam"
	"github.com/aretw0/storyloom/pkg/analysis"
	"github.com/aretw0/storyloom/pkg/convert"
	"github.com/aretw0/storyloom/pkg/story"
)

// ErrWarnings is returned by Validate in strict mode when only warnings
// were found.
var ErrWarnings = errors.New("story has warnings")

// Validate prints every finding and fails on errors, or on warnings too
// when strict.
func (a *App) Validate(ctx context.Context, source string, strict bool) error {
	g, _, err := a.loadStory(ctx, source)
	if err != nil {
		return err
	}

	report := analysis.Validate(g)
	for _, is := range report.Errors {
		fmt.Fprintln(a.Out, is.String())
	}
	for _, is := range report.Warnings {
		fmt.Fprintln(a.Out, is.String())
	}

	if err := report.Err(); err != nil {
		return err
	}
	if strict && len(report.Warnings) > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, len(report.Warnings))
	}
	fmt.Fprintf(a.Out, "Story %q is valid! ✅ (%d nodes, %d warnings)\n", g.Meta.Title, len(g.Nodes), len(report.Warnings))
	return nil
}

// Graph prints the story as a Mermaid flowchart. With withProgress the
// saved progress of the configured backend is overlaid.
func (a *App) Graph(ctx context.Context, source string, withProgress bool) error {
	g, _, err := a.loadStory(ctx, source)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if withProgress {
		err := a.withBackend(ctx, func(b *config.Backend) error {
			state, err := a.persistenceFor(g, b).Load(ctx)
			if err != nil {
				return err
			}
			overlay = graph.OverlayFromState(state)
			return nil
		})
		if err != nil {
			return err
		}
	}

	fmt.Fprint(a.Out, graph.GenerateMermaid(g, overlay))
	return nil
}

// Shape names accepted by Convert.
const (
	ShapeAuthoring = string(story.ShapeAuthoring)
	ShapeRuntime   = string(story.ShapeRuntime)
	// ShapeScenes writes a directory of markdown scenes instead of printing.
	ShapeScenes = "scenes"
)

// Convert rewrites a story in the requested shape and format. The scenes
// shape writes to outDir; the others print.
func (a *App) Convert(ctx context.Context, source, shape, format, outDir string) error {
	g, _, err := a.loadStory(ctx, source)
	if err != nil {
		return err
	}
	if shape == ShapeScenes {
		if outDir == "" {
			return errors.New("an output directory is required for scenes")
		}
		if err := loamadapter.Export(ctx, outDir, g); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "wrote %d scenes to %s\n", len(g.Nodes), outDir)
		return nil
	}
	f, err := parseFormat(format)
	if err != nil {
		return err
	}

	var data []byte
	switch shape {
	case ShapeAuthoring, "":
		data, err = story.EncodeAuthoring(g, f)
	case ShapeRuntime:
		data, err = story.EncodeRuntime(convert.ToRuntime(g), f)
	default:
		return fmt.Errorf("unknown shape %q (want %s, %s or %s)", shape, ShapeAuthoring, ShapeRuntime, ShapeScenes)
	}
	if err != nil {
		return err
	}
	_, err = a.Out.Write(data)
	return err
}

// Extract prints the part of the story reachable from seeds.
func (a *App) Extract(ctx context.Context, source string, seeds []string, format string) error {
	if len(seeds) == 0 {
		return errors.New("at least one node id is required")
	}
	g, _, err := a.loadStory(ctx, source)
	if err != nil {
		return err
	}
	f, err := parseFormat(format)
	if err != nil {
		return err
	}
	data, err := story.EncodeAuthoring(analysis.Subgraph(g, seeds...), f)
	if err != nil {
		return err
	}
	_, err = a.Out.Write(data)
	return err
}

// Path prints the fewest choices leading from one node to another. An
// empty from means the start node.
func (a *App) Path(ctx context.Context, source, from, to string) error {
	g, _, err := a.loadStory(ctx, source)
	if err != nil {
		return err
	}
	if from == "" {
		from = g.Meta.Start
	}
	p, err := analysis.ShortestPath(g, from, to)
	if err != nil {
		return fmt.Errorf("%s -> %s: %w", from, to, err)
	}

	fmt.Fprintln(a.Out, strings.Join(p.Nodes, " -> "))
	for i, e := range p.Edges {
		label := e.Label
		if label == "" {
			label = e.To
		}
		fmt.Fprintf(a.Out, "  %d. %s: choose %d (%s)\n", i+1, e.From, e.Choice+1, label)
	}
	return nil
}

func parseFormat(format string) (story.Format, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return story.FormatJSON, nil
	case "yaml", "yml":
		return story.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
