package analysis_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/aretw0/storyloom/pkg/analysis"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, targets ...string) domain.AuthoringNode {
	n := domain.AuthoringNode{ID: id, Choices: []domain.AuthoringChoice{}}
	for _, t := range targets {
		n.Choices = append(n.Choices, domain.AuthoringChoice{Label: "to " + t, Target: t})
	}
	return n
}

func graph(start string, nodes ...domain.AuthoringNode) *domain.AuthoringGraph {
	return &domain.AuthoringGraph{Meta: domain.Meta{Start: start}, Nodes: nodes}
}

func codes(issues []analysis.Issue) []analysis.Code {
	out := []analysis.Code{}
	for _, is := range issues {
		out = append(out, is.Code)
	}
	return out
}

func ids(issues []analysis.Issue) []string {
	out := []string{}
	for _, is := range issues {
		out = append(out, is.NodeID)
	}
	sort.Strings(out)
	return out
}

func TestTwoNodeStory(t *testing.T) {
	g := graph("a", node("a", "b"), node("b"))

	assert.Empty(t, analysis.Unreachable(g))
	assert.Equal(t, []string{"b"}, ids(analysis.DeadEnds(g)))

	r := analysis.Validate(g)
	assert.True(t, r.OK())
	assert.NoError(t, r.Err())
}

func TestDuplicateIDs(t *testing.T) {
	g := graph("x", node("x"), node("x"), node("y"), node("x"))

	issues := analysis.DuplicateIDs(g)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Index)
	assert.Equal(t, 3, issues[1].Index)
	assert.Equal(t, analysis.SeverityError, issues[0].Severity)

	r := analysis.Validate(g)
	assert.False(t, r.OK())
	assert.ErrorIs(t, r.Err(), analysis.ErrInvalidGraph)
}

func TestCheckStart(t *testing.T) {
	assert.Empty(t, analysis.CheckStart(graph("a", node("a"))))
	assert.Equal(t, []analysis.Code{analysis.CodeMissingStart}, codes(analysis.CheckStart(graph("zzz", node("a")))))
	assert.Equal(t, []analysis.Code{analysis.CodeMissingStart}, codes(analysis.CheckStart(graph("", node("a")))))
	assert.Empty(t, analysis.CheckStart(graph("")))
}

func TestTargets(t *testing.T) {
	g := graph("a", node("a", "b", "ghost", ""), node("b"))
	g.Nodes[1].Choices = append(g.Nodes[1].Choices, domain.AuthoringChoice{InvalidTarget: true})

	unresolved := analysis.UnresolvedTargets(g)
	require.Len(t, unresolved, 2)
	assert.Equal(t, 1, unresolved[0].Choice)
	assert.Equal(t, analysis.SeverityWarning, unresolved[0].Severity)
	assert.Equal(t, 2, unresolved[1].Choice)

	invalid := analysis.InvalidTargets(g)
	require.Len(t, invalid, 1)
	assert.Equal(t, "b", invalid[0].NodeID)

	r := analysis.Validate(g)
	assert.Equal(t, []analysis.Code{analysis.CodeInvalidTarget}, codes(r.Errors))
}

func TestUnreachable(t *testing.T) {
	// a -> b -> a (cycle), c -> a, d isolated
	g := graph("a", node("a", "b"), node("b", "a"), node("c", "a"), node("d"))

	assert.Equal(t, []string{"c", "d"}, ids(analysis.Unreachable(g)))

	reach := analysis.Reachable(g, "c")
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, reach)
	assert.Empty(t, analysis.Reachable(g, "missing"))
}

// naiveReach computes reachability as a fixed point, independent of BFS.
func naiveReach(g *domain.AuthoringGraph, start string) map[string]bool {
	exists := map[string]bool{}
	for _, n := range g.Nodes {
		exists[n.ID] = true
	}
	reach := map[string]bool{}
	if !exists[start] {
		return reach
	}
	reach[start] = true
	for changed := true; changed; {
		changed = false
		for _, n := range g.Nodes {
			if !reach[n.ID] {
				continue
			}
			for _, c := range n.Choices {
				if exists[c.Target] && !reach[c.Target] {
					reach[c.Target] = true
					changed = true
				}
			}
		}
	}
	return reach
}

func TestReachable_MatchesFixedPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	for round := 0; round < 200; round++ {
		var nodes []domain.AuthoringNode
		for _, id := range names[:2+rng.Intn(len(names)-2)] {
			var targets []string
			for k := rng.Intn(3); k > 0; k-- {
				target := names[rng.Intn(len(names))]
				if rng.Intn(5) == 0 {
					target += "-missing"
				}
				targets = append(targets, target)
			}
			nodes = append(nodes, node(id, targets...))
		}
		g := graph("a", nodes...)

		want := naiveReach(g, "a")
		got := analysis.Reachable(g, "a")
		assert.Equal(t, want, got, "round %d", round)

		var expectUnreachable []string
		for _, n := range g.Nodes {
			if !want[n.ID] {
				expectUnreachable = append(expectUnreachable, n.ID)
			}
		}
		sort.Strings(expectUnreachable)
		if expectUnreachable == nil {
			expectUnreachable = []string{}
		}
		assert.Equal(t, expectUnreachable, ids(analysis.Unreachable(g)), "round %d", round)
	}
}

func TestSubgraph(t *testing.T) {
	g := graph("a", node("a", "b"), node("b", "c"), node("c"), node("x", "c"), node("y"))
	g.Meta.Title = "T"

	sub := analysis.Subgraph(g, "x")
	assert.Equal(t, "x", sub.Meta.Start)
	assert.Equal(t, "T", sub.Meta.Title)
	assert.Equal(t, []string{"c", "x"}, sub.NodeIDs())

	multi := analysis.Subgraph(g, "missing", "b", "y")
	assert.Equal(t, "b", multi.Meta.Start)
	assert.Equal(t, []string{"b", "c", "y"}, multi.NodeIDs())

	fromStart := analysis.Subgraph(g)
	assert.Equal(t, "a", fromStart.Meta.Start)
	assert.Equal(t, []string{"a", "b", "c"}, fromStart.NodeIDs())

	g.Meta.Start = "gone"
	whole := analysis.Subgraph(g, "nope")
	assert.Equal(t, "a", whole.Meta.Start)
	assert.Len(t, whole.Nodes, 5)

	whole.Nodes[0].Choices[0].Target = "mutated"
	assert.Equal(t, "b", g.Nodes[0].Choices[0].Target)
}

func TestShortestPath(t *testing.T) {
	// a -> b -> c -> d and a shortcut a -> c
	g := graph("a", node("a", "b", "c"), node("b", "c"), node("c", "d"), node("d"), node("z"))

	p, err := analysis.ShortestPath(g, "a", "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, p.Nodes)
	require.Len(t, p.Edges, 2)
	assert.Equal(t, analysis.Edge{From: "a", To: "c", Choice: 1, Label: "to c"}, p.Edges[0])

	trivial, err := analysis.ShortestPath(g, "b", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, trivial.Nodes)
	assert.Empty(t, trivial.Edges)

	_, err = analysis.ShortestPath(g, "d", "a")
	assert.ErrorIs(t, err, analysis.ErrNoPath)
	_, err = analysis.ShortestPath(g, "a", "z")
	assert.ErrorIs(t, err, analysis.ErrNoPath)
	_, err = analysis.ShortestPath(g, "a", "missing")
	assert.ErrorIs(t, err, analysis.ErrNoPath)
}
