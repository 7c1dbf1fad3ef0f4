package analysis

import (
	"fmt"

	"github.com/aretw0/storyloom/pkg/domain"
)

// Validate runs every structural check and groups the findings.
func Validate(g *domain.AuthoringGraph) *Report {
	r := &Report{Errors: []Issue{}, Warnings: []Issue{}}
	if g == nil {
		return r
	}
	r.add(MissingIDs(g))
	r.add(DuplicateIDs(g))
	r.add(CheckStart(g))
	r.add(InvalidTargets(g))
	r.add(UnresolvedTargets(g))
	r.add(Unreachable(g))
	r.add(DeadEnds(g))
	return r
}

// MissingIDs reports nodes whose id is empty.
func MissingIDs(g *domain.AuthoringGraph) []Issue {
	var out []Issue
	for i, n := range g.Nodes {
		if n.ID == "" {
			out = append(out, Issue{
				Severity: SeverityError,
				Code:     CodeMissingID,
				Index:    i,
				Choice:   -1,
				Message:  fmt.Sprintf("node at index %d has no id", i),
			})
		}
	}
	return out
}

// DuplicateIDs reports every occurrence of an id after the first.
func DuplicateIDs(g *domain.AuthoringGraph) []Issue {
	var out []Issue
	first := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if at, seen := first[n.ID]; seen {
			out = append(out, Issue{
				Severity: SeverityError,
				Code:     CodeDuplicateID,
				NodeID:   n.ID,
				Index:    i,
				Choice:   -1,
				Message:  fmt.Sprintf("duplicate node id %q at index %d (first defined at index %d)", n.ID, i, at),
			})
			continue
		}
		first[n.ID] = i
	}
	return out
}

// CheckStart reports a start id that names no node, or a missing start on a
// non-empty graph. An empty graph with a start set is unplayable too.
func CheckStart(g *domain.AuthoringGraph) []Issue {
	start := g.Meta.Start
	if start == "" {
		if len(g.Nodes) == 0 {
			return nil
		}
		return []Issue{{
			Severity: SeverityError,
			Code:     CodeMissingStart,
			Index:    -1,
			Choice:   -1,
			Message:  "start node is not set",
		}}
	}
	if index(g).has(start) {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Code:     CodeMissingStart,
		NodeID:   start,
		Index:    -1,
		Choice:   -1,
		Message:  fmt.Sprintf("start node %q does not exist", start),
	}}
}

// InvalidTargets reports choices whose target was not a string.
func InvalidTargets(g *domain.AuthoringGraph) []Issue {
	var out []Issue
	for i, n := range g.Nodes {
		for j, c := range n.Choices {
			if c.InvalidTarget {
				out = append(out, Issue{
					Severity: SeverityError,
					Code:     CodeInvalidTarget,
					NodeID:   n.ID,
					Index:    i,
					Choice:   j,
					Message:  fmt.Sprintf("node %q choice %d has a non-string target", n.ID, j),
				})
			}
		}
	}
	return out
}

// UnresolvedTargets warns about choices pointing at ids that do not exist.
func UnresolvedTargets(g *domain.AuthoringGraph) []Issue {
	idx := index(g)
	var out []Issue
	for i, n := range g.Nodes {
		for j, c := range n.Choices {
			if c.InvalidTarget || idx.has(c.Target) {
				continue
			}
			msg := fmt.Sprintf("node %q choice %d points to missing node %q", n.ID, j, c.Target)
			if c.Target == "" {
				msg = fmt.Sprintf("node %q choice %d has no target", n.ID, j)
			}
			out = append(out, Issue{
				Severity: SeverityWarning,
				Code:     CodeUnresolvedTarget,
				NodeID:   n.ID,
				Index:    i,
				Choice:   j,
				Message:  msg,
			})
		}
	}
	return out
}

// Unreachable warns about every node id that cannot be reached from start.
// When start does not exist every node is unreachable.
func Unreachable(g *domain.AuthoringGraph) []Issue {
	reached := Reachable(g, g.Meta.Start)
	var out []Issue
	reported := make(map[string]bool)
	for i, n := range g.Nodes {
		if n.ID == "" || reached[n.ID] || reported[n.ID] {
			continue
		}
		reported[n.ID] = true
		out = append(out, Issue{
			Severity: SeverityWarning,
			Code:     CodeUnreachable,
			NodeID:   n.ID,
			Index:    i,
			Choice:   -1,
			Message:  fmt.Sprintf("node %q is unreachable from start", n.ID),
		})
	}
	return out
}

// DeadEnds warns about nodes without outgoing choices. An ending is a
// legitimate dead end, hence a warning.
func DeadEnds(g *domain.AuthoringGraph) []Issue {
	var out []Issue
	for i, n := range g.Nodes {
		if len(n.Choices) == 0 {
			out = append(out, Issue{
				Severity: SeverityWarning,
				Code:     CodeDeadEnd,
				NodeID:   n.ID,
				Index:    i,
				Choice:   -1,
				Message:  fmt.Sprintf("node %q has no choices", n.ID),
			})
		}
	}
	return out
}
