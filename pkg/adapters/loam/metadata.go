package loam

// SceneMetadata is the frontmatter of one scene file.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type SceneMetadata struct {
	ID    string `json:"id" mapstructure:"id" yaml:"id,omitempty"`
	Title string `json:"title" mapstructure:"title" yaml:"title,omitempty"`
	Image string `json:"image,omitempty" mapstructure:"image" yaml:"image,omitempty"`

	// Start marks the scene where play begins. At most one scene may set it.
	Start bool `json:"start,omitempty" mapstructure:"start" yaml:"start,omitempty"`

	Choices []SceneChoice    `json:"choices" mapstructure:"choices" yaml:"choices,omitempty"`
	Actions []map[string]any `json:"actions,omitempty" mapstructure:"actions" yaml:"actions,omitempty"`
}

// SceneChoice is one outgoing edge as written in frontmatter.
// "label"/"text" and "target"/"to" are accepted interchangeably.
type SceneChoice struct {
	ID     string `json:"id" mapstructure:"id" yaml:"id,omitempty"`
	Label  string `json:"label" mapstructure:"label" yaml:"label,omitempty"`
	Text   string `json:"text" mapstructure:"text" yaml:"text,omitempty"`
	Target string `json:"target" mapstructure:"target" yaml:"target,omitempty"`
	To     string `json:"to" mapstructure:"to" yaml:"to,omitempty"`

	Conditions []map[string]any `json:"conditions,omitempty" mapstructure:"conditions" yaml:"conditions,omitempty"`
	Actions    []map[string]any `json:"actions,omitempty" mapstructure:"actions" yaml:"actions,omitempty"`
}
