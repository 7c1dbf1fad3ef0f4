package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/storyloom/internal/presentation/graph"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func story(start string, nodes ...domain.AuthoringNode) *domain.AuthoringGraph {
	return &domain.AuthoringGraph{Version: domain.DefaultVersion, Meta: domain.Meta{Title: "T", Start: start}, Nodes: nodes}
}

func to(label, target string) domain.AuthoringChoice {
	return domain.AuthoringChoice{Label: label, Target: target}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		graph    *domain.AuthoringGraph
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			graph: story("start",
				domain.AuthoringNode{ID: "start", Choices: []domain.AuthoringChoice{to("", "mid")}},
				domain.AuthoringNode{ID: "mid", Choices: []domain.AuthoringChoice{to("", "end")}},
				domain.AuthoringNode{ID: "end"},
			),
			contains: []string{
				"start((\"start\"))",
				"mid[\"mid\"]",
				"n_end([\"end\"])",
				"start --> mid",
				"mid --> n_end",
				"class n_end ending;",
			},
		},
		{
			name: "Titles",
			graph: story("a",
				domain.AuthoringNode{ID: "a", Title: "The \"Gate\""},
			),
			contains: []string{
				"a((\"The #quot;Gate#quot;<br/><small>a</small>\"))",
			},
		},
		{
			name: "ID Sanitization",
			graph: story("path/to/file.md",
				domain.AuthoringNode{ID: "path/to/file.md", Choices: []domain.AuthoringChoice{to("", "hyphen-ated")}},
				domain.AuthoringNode{ID: "hyphen-ated"},
				domain.AuthoringNode{ID: "hyphen.ated"},
			),
			contains: []string{
				"path_to_file_md((\"path/to/file.md\"))",
				"hyphen_ated([\"hyphen-ated\"])",
				"hyphen_ated_2([\"hyphen.ated\"])",
			},
		},
		{
			name: "Labels And Jumps",
			graph: story("ch1/a",
				domain.AuthoringNode{ID: "ch1/a", Choices: []domain.AuthoringChoice{
					to("Say \"hi\"", "ch1/b"),
					to("Next chapter", "ch2/a"),
					to("", "ch2/b"),
				}},
				domain.AuthoringNode{ID: "ch1/b"},
				domain.AuthoringNode{ID: "ch2/a"},
				domain.AuthoringNode{ID: "ch2/b"},
			),
			contains: []string{
				"ch1_a -- \"Say #quot;hi#quot;\" --> ch1_b",
				"ch1_a -. \"Next chapter\" .-> ch2_a",
				"ch1_a -.-> ch2_b",
			},
		},
		{
			name: "Missing And Unreachable",
			graph: story("a",
				domain.AuthoringNode{ID: "a", Choices: []domain.AuthoringChoice{
					to("", "nowhere"),
					to("", "nowhere"),
					{Label: "broken", Target: "", InvalidTarget: true},
				}},
				domain.AuthoringNode{ID: "island"},
			),
			contains: []string{
				"missing_1[/\"missing: nowhere\"/]",
				"a --> missing_1",
				"class missing_1 missing;",
				"class island unreachable;",
			},
			excludes: []string{"missing_2", "broken"},
		},
		{
			name: "Overlay",
			graph: story("a",
				domain.AuthoringNode{ID: "a", Choices: []domain.AuthoringChoice{to("", "b")}},
				domain.AuthoringNode{ID: "b", Choices: []domain.AuthoringChoice{to("", "a")}},
			),
			overlay: &graph.GraphOverlay{VisitedNodes: []string{"a", "b", "a", "ghost"}, CurrentNode: "b"},
			contains: []string{
				"classDef visited",
				"class a visited;",
				"class b visited;",
				"class b current;",
			},
			excludes: []string{"ghost"},
		},
		{
			name: "No Overlay",
			graph: story("a",
				domain.AuthoringNode{ID: "a"},
			),
			excludes: []string{"classDef visited", "classDef current"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.graph, tt.overlay)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
			if tt.overlay != nil {
				assert.Equal(t, 1, strings.Count(got, "class a visited;"))
			}
		})
	}
}

func TestOverlayFromState(t *testing.T) {
	assert.Nil(t, graph.OverlayFromState(nil))

	s := domain.NewTraversalState("a", 0)
	s.NodeID = "b"
	s.Player.History = []string{"a", "b"}
	o := graph.OverlayFromState(s)
	assert.Equal(t, "b", o.CurrentNode)
	assert.Equal(t, []string{"a", "b"}, o.VisitedNodes)
}
