package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	loamadapter "github.com/aretw0/storyloom/pkg/adapters/loam"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	g := &domain.AuthoringGraph{
		Version: domain.DefaultVersion,
		Meta:    domain.Meta{Title: filepath.Base(dir), Start: "intro"},
		Nodes: []domain.AuthoringNode{
			{ID: "intro", Title: "Intro", Text: "It begins.", Actions: []map[string]any{{"type": "set_flag", "flag": "awake", "value": true}},
				Choices: []domain.AuthoringChoice{
					{ID: "go", Label: "Go on", Target: "ch1/road", Conditions: []map[string]any{{"type": "flag", "flag": "awake", "value": true}}},
				}},
			{ID: "ch1/road", Title: "Road", Text: "A long road.", Choices: []domain.AuthoringChoice{}},
		},
	}
	require.NoError(t, loamadapter.Export(ctx, dir, g))

	_, err := os.Stat(filepath.Join(dir, "ch1", "road.md"))
	require.NoError(t, err)

	loader, err := loamadapter.Open(dir)
	require.NoError(t, err)
	got, err := loader.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, "intro", got.Meta.Start)
	require.Len(t, got.Nodes, 2)
	// Scenes load in id order.
	road, intro := got.Nodes[0], got.Nodes[1]
	assert.Equal(t, "ch1/road", road.ID)
	assert.Equal(t, "A long road.", road.Text)
	assert.Empty(t, road.Choices)

	assert.Equal(t, "Intro", intro.Title)
	assert.Equal(t, "It begins.", intro.Text)
	require.Len(t, intro.Choices, 1)
	assert.Equal(t, "go", intro.Choices[0].ID)
	assert.Equal(t, "Go on", intro.Choices[0].Label)
	assert.Equal(t, "ch1/road", intro.Choices[0].Target)
	require.Len(t, intro.Choices[0].Conditions, 1)
	assert.Equal(t, "flag", intro.Choices[0].Conditions[0]["type"])
	require.Len(t, intro.Actions, 1)
	assert.Equal(t, "set_flag", intro.Actions[0]["type"])
}

func TestExport_Duplicates(t *testing.T) {
	g := &domain.AuthoringGraph{
		Meta:  domain.Meta{Start: "a"},
		Nodes: []domain.AuthoringNode{{ID: "a"}, {ID: "a"}},
	}
	err := loamadapter.Export(context.Background(), t.TempDir(), g)
	assert.ErrorContains(t, err, "collision detected")
}
