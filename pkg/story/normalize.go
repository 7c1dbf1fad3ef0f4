package story

import (
	"fmt"
	"sort"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Default returns the minimal valid story.
func Default() *domain.AuthoringGraph {
	return &domain.AuthoringGraph{
		Version: domain.DefaultVersion,
		Meta: domain.Meta{
			Title: domain.DefaultTitle,
			Start: domain.DefaultStart,
		},
		Nodes: []domain.AuthoringNode{},
	}
}

// NormalizeSpec coerces arbitrary input into an AuthoringGraph.
// Accepted inputs are an AuthoringGraph (value or pointer) or the generic
// map produced by decoding JSON/YAML. Anything else yields Default().
// A "nodes" mapping (runtime shape) is coerced to an array ordered by id.
func NormalizeSpec(input any) *domain.AuthoringGraph {
	switch v := input.(type) {
	case *domain.AuthoringGraph:
		if v == nil {
			return Default()
		}
		return applyDefaults(cloneGraph(v))
	case domain.AuthoringGraph:
		return applyDefaults(cloneGraph(&v))
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		m, _ := asMap(v)
		return normalizeMap(m)
	default:
		return Default()
	}
}

func normalizeMap(raw map[string]any) *domain.AuthoringGraph {
	g := Default()
	g.Version = ""
	g.Meta = domain.Meta{}

	if v, ok := raw["version"]; ok && v != nil {
		g.Version = fmt.Sprint(v)
	}
	if meta, ok := asMap(raw["meta"]); ok {
		_ = weakDecode(meta, &g.Meta)
	}
	// Runtime-shaped input carries title/start at the top level.
	if g.Meta.Title == "" {
		if s, ok := raw["title"].(string); ok {
			g.Meta.Title = s
		}
	}
	if g.Meta.Start == "" {
		if s, ok := raw["start"].(string); ok {
			g.Meta.Start = s
		}
	}

	if list, ok := raw["nodes"].([]any); ok {
		for _, item := range list {
			m, ok := asMap(item)
			if !ok {
				continue
			}
			g.Nodes = append(g.Nodes, normalizeNode(m))
		}
	} else if nodes, ok := asMap(raw["nodes"]); ok {
		keys := make([]string, 0, len(nodes))
		for k := range nodes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m, ok := asMap(nodes[k])
			if !ok {
				m = map[string]any{}
			}
			n := normalizeNode(m)
			if n.ID == "" {
				n.ID = k
			}
			g.Nodes = append(g.Nodes, n)
		}
	}

	return applyDefaults(g)
}

func normalizeNode(raw map[string]any) domain.AuthoringNode {
	var n domain.AuthoringNode
	n.ID = stringOf(raw["id"])
	n.Title = stringOf(raw["title"])
	n.Text = stringOf(raw["text"])
	n.Image = stringOf(raw["image"])
	n.Actions = mapsOf(raw["actions"])

	if list, ok := raw["choices"].([]any); ok {
		for _, item := range list {
			m, ok := asMap(item)
			if !ok {
				continue
			}
			n.Choices = append(n.Choices, normalizeChoice(m))
		}
	}
	if n.Choices == nil {
		n.Choices = []domain.AuthoringChoice{}
	}
	return n
}

func normalizeChoice(raw map[string]any) domain.AuthoringChoice {
	c := domain.AuthoringChoice{
		ID:         stringOf(raw["id"]),
		Label:      stringOf(raw["label"]),
		Conditions: mapsOf(raw["conditions"]),
		Actions:    mapsOf(raw["actions"]),
	}
	if c.Label == "" {
		c.Label = stringOf(raw["text"])
	}

	target, present := raw["target"]
	if !present || target == nil {
		target = raw["to"]
	}
	switch t := target.(type) {
	case nil:
	case string:
		c.Target = t
	default:
		// Kept visible to analysis instead of being coerced.
		c.InvalidTarget = true
	}
	return c
}

func applyDefaults(g *domain.AuthoringGraph) *domain.AuthoringGraph {
	if g.Version == "" {
		g.Version = domain.DefaultVersion
	}
	if g.Meta.Title == "" {
		g.Meta.Title = domain.DefaultTitle
	}
	if g.Meta.Start == "" {
		g.Meta.Start = domain.DefaultStart
	}
	if g.Nodes == nil {
		g.Nodes = []domain.AuthoringNode{}
	}
	for i := range g.Nodes {
		if g.Nodes[i].Choices == nil {
			g.Nodes[i].Choices = []domain.AuthoringChoice{}
		}
	}
	return g
}

func cloneGraph(g *domain.AuthoringGraph) *domain.AuthoringGraph {
	c := *g
	c.Nodes = make([]domain.AuthoringNode, len(g.Nodes))
	for i, n := range g.Nodes {
		n.Choices = append([]domain.AuthoringChoice(nil), n.Choices...)
		c.Nodes[i] = n
	}
	return &c
}

func weakDecode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// asMap accepts both JSON-style and YAML-style generic maps.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64, int, int64, bool:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

func mapsOf(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
