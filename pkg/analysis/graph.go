package analysis

import (
	"errors"

	"github.com/aretw0/storyloom/pkg/domain"
)

// ErrNoPath is returned by ShortestPath when the goal cannot be reached.
var ErrNoPath = errors.New("no path between nodes")

// nodeIndex maps ids to their first position in the authoring array.
type nodeIndex map[string]int

func index(g *domain.AuthoringGraph) nodeIndex {
	idx := make(nodeIndex, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := idx[n.ID]; !dup {
			idx[n.ID] = i
		}
	}
	return idx
}

func (idx nodeIndex) has(id string) bool {
	_, ok := idx[id]
	return ok
}

// Reachable returns the set of node ids reachable from start by following
// choice targets forward. Targets naming missing nodes are not traversed.
// A start that does not exist yields an empty set.
func Reachable(g *domain.AuthoringGraph, start string) map[string]bool {
	return closure(g, index(g), []string{start})
}

func closure(g *domain.AuthoringGraph, idx nodeIndex, seeds []string) map[string]bool {
	visited := make(map[string]bool)
	queue := make([]string, 0, len(seeds))
	for _, s := range seeds {
		if idx.has(s) && !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, c := range g.Nodes[idx[current]].Choices {
			if c.InvalidTarget || visited[c.Target] || !idx.has(c.Target) {
				continue
			}
			visited[c.Target] = true
			queue = append(queue, c.Target)
		}
	}
	return visited
}

// Subgraph extracts the forward closure of the seed ids as a new graph.
// Seeds that do not exist are ignored. The new start is the first existing
// seed; without one, the closure of the original start is taken when that
// node exists, otherwise the whole graph is kept and its first node becomes
// the start.
func Subgraph(g *domain.AuthoringGraph, seeds ...string) *domain.AuthoringGraph {
	out := &domain.AuthoringGraph{
		Version: g.Version,
		Meta:    g.Meta,
		Nodes:   []domain.AuthoringNode{},
	}
	idx := index(g)

	var valid []string
	for _, s := range seeds {
		if idx.has(s) {
			valid = append(valid, s)
		}
	}

	var keep map[string]bool
	switch {
	case len(valid) > 0:
		keep = closure(g, idx, valid)
		out.Meta.Start = valid[0]
	case idx.has(g.Meta.Start):
		keep = closure(g, idx, []string{g.Meta.Start})
	default:
		keep = make(map[string]bool, len(idx))
		for id := range idx {
			keep[id] = true
		}
		out.Meta.Start = ""
	}

	for i, n := range g.Nodes {
		if keep[n.ID] && idx[n.ID] == i {
			n.Choices = append([]domain.AuthoringChoice{}, n.Choices...)
			out.Nodes = append(out.Nodes, n)
		}
	}
	if out.Meta.Start == "" && len(out.Nodes) > 0 {
		out.Meta.Start = out.Nodes[0].ID
	}
	return out
}

// Edge is one traversed choice on a path.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Choice int    `json:"choice"`
	Label  string `json:"label"`
}

// Path is a node sequence with the edges connecting consecutive nodes.
type Path struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// ShortestPath finds a fewest-choices path from one node to another.
// from == to yields a single-node path with no edges.
func ShortestPath(g *domain.AuthoringGraph, from, to string) (*Path, error) {
	idx := index(g)
	if !idx.has(from) || !idx.has(to) {
		return nil, ErrNoPath
	}
	if from == to {
		return &Path{Nodes: []string{from}, Edges: []Edge{}}, nil
	}

	parent := map[string]Edge{}
	visited := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for j, c := range g.Nodes[idx[current]].Choices {
			if c.InvalidTarget || visited[c.Target] || !idx.has(c.Target) {
				continue
			}
			visited[c.Target] = true
			parent[c.Target] = Edge{From: current, To: c.Target, Choice: j, Label: c.Label}
			if c.Target == to {
				return backtrack(parent, from, to), nil
			}
			queue = append(queue, c.Target)
		}
	}
	return nil, ErrNoPath
}

func backtrack(parent map[string]Edge, from, to string) *Path {
	var edges []Edge
	for at := to; at != from; {
		e := parent[at]
		edges = append(edges, e)
		at = e.From
	}

	p := &Path{Nodes: []string{from}, Edges: make([]Edge, 0, len(edges))}
	for i := len(edges) - 1; i >= 0; i-- {
		p.Edges = append(p.Edges, edges[i])
		p.Nodes = append(p.Nodes, edges[i].To)
	}
	return p
}
