package story

import (
	"testing"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSpec_Total(t *testing.T) {
	inputs := []any{
		nil,
		42,
		"garbage",
		[]any{1, 2},
		map[string]any{},
		map[string]any{"nodes": "not-a-list"},
		map[string]any{"meta": 5, "nodes": []any{nil, 3, "x"}},
		(*domain.AuthoringGraph)(nil),
	}

	for _, in := range inputs {
		g := NormalizeSpec(in)
		require.NotNil(t, g, "input %#v", in)
		assert.NotEmpty(t, g.Meta.Title)
		assert.NotEmpty(t, g.Meta.Start)
		assert.NotNil(t, g.Nodes)
		assert.Equal(t, domain.DefaultVersion, g.Version)
	}
}

func TestNormalizeSpec_Defaults(t *testing.T) {
	g := NormalizeSpec(map[string]any{"nodes": []any{map[string]any{"id": "a"}}})

	assert.Equal(t, "Adventure", g.Meta.Title)
	assert.Equal(t, "start", g.Meta.Start)
	require.Len(t, g.Nodes, 1)
	assert.NotNil(t, g.Nodes[0].Choices)
}

func TestNormalizeSpec_KeepsFields(t *testing.T) {
	g := NormalizeSpec(map[string]any{
		"version": 2,
		"meta":    map[string]any{"title": "T", "start": "a", "author": "me", "createdAt": "2024"},
		"nodes": []any{
			map[string]any{
				"id":    "a",
				"title": "A",
				"text":  "hello",
				"choices": []any{
					map[string]any{"id": "c1", "label": "go", "target": "b"},
					map[string]any{"text": "alias", "to": "c"},
					map[string]any{"label": "bad", "target": 12},
				},
			},
		},
	})

	assert.Equal(t, "2", g.Version)
	assert.Equal(t, "T", g.Meta.Title)
	assert.Equal(t, "me", g.Meta.Author)
	require.Len(t, g.Nodes[0].Choices, 3)
	assert.Equal(t, "b", g.Nodes[0].Choices[0].Target)
	assert.Equal(t, "alias", g.Nodes[0].Choices[1].Label)
	assert.Equal(t, "c", g.Nodes[0].Choices[1].Target)
	assert.True(t, g.Nodes[0].Choices[2].InvalidTarget)
	assert.Empty(t, g.Nodes[0].Choices[2].Target)
}

func TestNormalizeSpec_MapNodesBecomeArray(t *testing.T) {
	g := NormalizeSpec(map[string]any{
		"title": "Runtime",
		"start": "b",
		"nodes": map[string]any{
			"b": map[string]any{"text": "B"},
			"a": map[string]any{"text": "A", "choices": []any{map[string]any{"text": "to b", "to": "b"}}},
		},
	})

	assert.Equal(t, "Runtime", g.Meta.Title)
	assert.Equal(t, "b", g.Meta.Start)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "a", g.Nodes[0].ID)
	assert.Equal(t, "b", g.Nodes[0].Choices[0].Target)
}

func TestNormalizeSpec_DoesNotAliasInput(t *testing.T) {
	src := &domain.AuthoringGraph{Nodes: []domain.AuthoringNode{{ID: "a", Choices: []domain.AuthoringChoice{{Target: "b"}}}}}
	g := NormalizeSpec(src)
	g.Nodes[0].Choices[0].Target = "changed"

	assert.Equal(t, "b", src.Nodes[0].Choices[0].Target)
	assert.Empty(t, src.Meta.Start, "defaults applied to the copy only")
}
