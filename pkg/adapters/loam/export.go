package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/storyloom/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Export writes g as one markdown scene per node under dir, in the layout
// Load reads back. Existing scenes with the same ids are overwritten.
func Export(ctx context.Context, dir string, g *domain.AuthoringGraph) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	// No versioning: plain file generation.
	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to initialize loam: %w", err)
	}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if seen[n.ID] {
			return fmt.Errorf("collision detected: ID '%s' appears more than once", n.ID)
		}
		seen[n.ID] = true

		content, err := renderScene(n, n.ID == g.Meta.Start)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, core.Document{ID: n.ID + ".md", Content: content}); err != nil {
			return fmt.Errorf("failed to save scene %q: %w", n.ID, err)
		}
	}
	return nil
}

// renderScene formats a node as frontmatter plus body.
func renderScene(n domain.AuthoringNode, start bool) (string, error) {
	meta := SceneMetadata{
		ID:      n.ID,
		Title:   n.Title,
		Image:   n.Image,
		Start:   start,
		Actions: n.Actions,
	}
	for _, c := range n.Choices {
		meta.Choices = append(meta.Choices, SceneChoice{
			ID:         c.ID,
			Label:      c.Label,
			Target:     c.Target,
			Conditions: c.Conditions,
			Actions:    c.Actions,
		})
	}

	front, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode frontmatter of %q: %w", n.ID, err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(front)
	sb.WriteString("---\n")
	sb.WriteString(n.Text)
	if n.Text != "" && !strings.HasSuffix(n.Text, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
