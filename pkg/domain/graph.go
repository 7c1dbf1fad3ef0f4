package domain

import "sort"

// Defaults applied by normalization when a story omits them.
const (
	DefaultTitle   = "Adventure"
	DefaultStart   = "start"
	DefaultVersion = "1.0"
)

// Meta holds the descriptive header of an authoring story.
type Meta struct {
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	UpdatedAt string `json:"updatedAt" yaml:"updatedAt"`
	Start     string `json:"start" yaml:"start"`
}

// AuthoringChoice is a labeled edge as authors write it.
type AuthoringChoice struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Target string `json:"target" yaml:"target"`

	// InvalidTarget is set by normalization when the source carried a
	// target that was not a string. Target is left empty in that case.
	InvalidTarget bool `json:"-" yaml:"-"`

	Conditions []map[string]any `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Actions    []map[string]any `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// AuthoringNode is a scene as authors write it.
type AuthoringNode struct {
	ID      string            `json:"id" yaml:"id"`
	Title   string            `json:"title" yaml:"title"`
	Text    string            `json:"text" yaml:"text"`
	Image   string            `json:"image,omitempty" yaml:"image,omitempty"`
	Choices []AuthoringChoice `json:"choices" yaml:"choices"`
	Actions []map[string]any  `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// AuthoringGraph is the import/export shape: an ordered array of nodes.
// Duplicate ids are representable here; analysis flags them.
type AuthoringGraph struct {
	Version string          `json:"version" yaml:"version"`
	Meta    Meta            `json:"meta" yaml:"meta"`
	Nodes   []AuthoringNode `json:"nodes" yaml:"nodes"`
}

// NodeIDs returns the ids of all nodes in authoring order, duplicates included.
func (g *AuthoringGraph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// RuntimeChoice is a choice in the engine shape.
type RuntimeChoice struct {
	Text       string           `json:"text" yaml:"text"`
	To         string           `json:"to" yaml:"to"`
	Conditions []map[string]any `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Actions    []map[string]any `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// RuntimeNode is a scene in the engine shape. Its id is the map key.
type RuntimeNode struct {
	Title   string           `json:"title" yaml:"title"`
	Text    string           `json:"text" yaml:"text"`
	Image   string           `json:"image,omitempty" yaml:"image,omitempty"`
	Choices []RuntimeChoice  `json:"choices" yaml:"choices"`
	Actions []map[string]any `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// RuntimeGraph is the shape consumed by the traversal engine.
type RuntimeGraph struct {
	Title string                 `json:"title" yaml:"title"`
	Start string                 `json:"start" yaml:"start"`
	Nodes map[string]RuntimeNode `json:"nodes" yaml:"nodes"`
}

// Has reports whether a node with the given id exists.
func (g *RuntimeGraph) Has(id string) bool {
	if g == nil || id == "" {
		return false
	}
	_, ok := g.Nodes[id]
	return ok
}

// Node returns the node with the given id.
func (g *RuntimeGraph) Node(id string) (RuntimeNode, bool) {
	if g == nil {
		return RuntimeNode{}, false
	}
	n, ok := g.Nodes[id]
	return n, ok
}

// IDs returns all node ids in lexical order.
func (g *RuntimeGraph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
