package graph

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aretw0/storyloom/pkg/analysis"
	"github.com/aretw0/storyloom/pkg/domain"
)

// GraphOverlay contains play-state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromState builds an overlay from a traversal state.
func OverlayFromState(s *domain.TraversalState) *GraphOverlay {
	if s == nil {
		return nil
	}
	return &GraphOverlay{VisitedNodes: s.Player.History, CurrentNode: s.NodeID}
}

// GenerateMermaid produces a Mermaid flowchart for an authoring graph.
// Shapes:
// - Start: ((Circle))
// - Ending (no choices): ([Stadium])
// - Default: [Rectangle]
// Choices into another directory are drawn dotted. Unreachable nodes and
// endings get analysis classes; unresolved targets point at a "missing" ghost.
// Overlay styles (visited/current) are applied last so they win.
func GenerateMermaid(g *domain.AuthoringGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := newIDs()
	seen := make(map[string]bool)
	ghosts := make(map[string]string)
	var ghostOrder []string

	for _, node := range g.Nodes {
		if node.ID == "" || seen[node.ID] {
			continue
		}
		seen[node.ID] = true
		safeID := ids.get(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == g.Meta.Start:
			opener, closer = "((", "))"
		case len(node.Choices) == 0:
			opener, closer = "([", "])"
		}

		label := node.ID
		if node.Title != "" && node.Title != node.ID {
			label = fmt.Sprintf("%s<br/><small>%s</small>", escapeLabel(node.Title), escapeLabel(node.ID))
		} else {
			label = escapeLabel(label)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)
	}

	known := func(id string) bool { return seen[id] }
	for _, node := range g.Nodes {
		if node.ID == "" {
			continue
		}
		safeID := ids.get(node.ID)
		for _, c := range node.Choices {
			if c.InvalidTarget || c.Target == "" {
				continue
			}

			target := ids.get(c.Target)
			if !known(c.Target) {
				ghost, ok := ghosts[c.Target]
				if !ok {
					ghost = fmt.Sprintf("missing_%d", len(ghosts)+1)
					ghosts[c.Target] = ghost
					ghostOrder = append(ghostOrder, ghost)
					fmt.Fprintf(&sb, "    %s[/\"missing: %s\"/]\n", ghost, escapeLabel(c.Target))
				}
				target = ghost
			}

			isJump := path.Dir(node.ID) != path.Dir(c.Target)
			arrow := "-->"
			if isJump {
				arrow = "-.->"
			}
			if c.Label != "" {
				lbl := escapeLabel(c.Label)
				arrow = fmt.Sprintf("-- \"%s\" -->", lbl)
				if isJump {
					arrow = fmt.Sprintf("-. \"%s\" .->", lbl)
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, target)
		}
	}

	sb.WriteString("\n    %% Analysis Styles\n")
	sb.WriteString("    classDef unreachable fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 4,color:#616161;\n")
	sb.WriteString("    classDef ending fill:#e8f5e9,stroke:#2e7d32,color:#000;\n")
	sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,color:#b71c1c;\n")
	for _, is := range analysis.DeadEnds(g) {
		if is.NodeID == "" {
			continue
		}
		fmt.Fprintf(&sb, "    class %s ending;\n", ids.get(is.NodeID))
	}
	for _, is := range analysis.Unreachable(g) {
		fmt.Fprintf(&sb, "    class %s unreachable;\n", ids.get(is.NodeID))
	}
	for _, ghost := range ghostOrder {
		fmt.Fprintf(&sb, "    class %s missing;\n", ghost)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			if !known(id) || visitedSet[id] {
				continue
			}
			visitedSet[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", ids.get(id))
		}

		if known(overlay.CurrentNode) {
			fmt.Fprintf(&sb, "    class %s current;\n", ids.get(overlay.CurrentNode))
		}
	}

	return sb.String()
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// idMap assigns each node id a Mermaid-safe identifier, suffixing
// sanitized collisions ("a-b" and "a.b") so they stay distinct.
type idMap struct {
	byID  map[string]string
	taken map[string]bool
}

func newIDs() *idMap {
	return &idMap{byID: map[string]string{}, taken: map[string]bool{}}
}

func (m *idMap) get(id string) string {
	if s, ok := m.byID[id]; ok {
		return s
	}
	base := sanitizeMermaidID(id)
	s := base
	for n := 2; m.taken[s]; n++ {
		s = fmt.Sprintf("%s_%d", base, n)
	}
	m.byID[id] = s
	m.taken[s] = true
	return s
}

func sanitizeMermaidID(id string) string {
	s := unsafeChars.ReplaceAllString(id, "_")
	switch s {
	case "", "end", "graph", "subgraph", "class", "classDef", "style":
		// Mermaid keywords cannot be node ids.
		s = "n_" + s
	}
	return s
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
