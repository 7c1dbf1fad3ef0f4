package dsl

import (
	"fmt"

	"github.com/aretw0/storyloom/pkg/domain"
)

// SceneBuilder provides a fluent API for configuring a scene.
type SceneBuilder struct {
	node domain.AuthoringNode
}

// Title sets the heading of the scene.
func (s *SceneBuilder) Title(title string) *SceneBuilder {
	s.node.Title = title
	return s
}

// Text sets the markdown body of the scene.
func (s *SceneBuilder) Text(text string) *SceneBuilder {
	s.node.Text = text
	return s
}

// Image attaches an image reference to the scene.
func (s *SceneBuilder) Image(ref string) *SceneBuilder {
	s.node.Image = ref
	return s
}

// OnEnter adds actions applied every time the scene is entered.
func (s *SceneBuilder) OnEnter(actions ...map[string]any) *SceneBuilder {
	s.node.Actions = append(s.node.Actions, actions...)
	return s
}

// Choice adds an unconditional choice to the target scene.
func (s *SceneBuilder) Choice(label, target string) *SceneBuilder {
	s.addChoice(label, target)
	return s
}

// Branch adds a choice and returns it for conditions and actions.
func (s *SceneBuilder) Branch(label, target string) *ChoiceBuilder {
	return &ChoiceBuilder{scene: s, index: s.addChoice(label, target)}
}

// Ending removes all choices from the scene.
func (s *SceneBuilder) Ending() *SceneBuilder {
	s.node.Choices = nil
	return s
}

// Build returns the underlying domain.AuthoringNode.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *SceneBuilder) Build() domain.AuthoringNode {
	return s.node
}

func (s *SceneBuilder) addChoice(label, target string) int {
	s.node.Choices = append(s.node.Choices, domain.AuthoringChoice{
		ID:     fmt.Sprintf("%s-%d", s.node.ID, len(s.node.Choices)+1),
		Label:  label,
		Target: target,
	})
	return len(s.node.Choices) - 1
}

// ChoiceBuilder configures a single choice of a scene.
type ChoiceBuilder struct {
	scene *SceneBuilder
	index int
}

// ID overrides the generated choice id.
func (c *ChoiceBuilder) ID(id string) *ChoiceBuilder {
	c.choice().ID = id
	return c
}

// When adds conditions that must all hold for the choice to be shown.
func (c *ChoiceBuilder) When(conditions ...map[string]any) *ChoiceBuilder {
	ch := c.choice()
	ch.Conditions = append(ch.Conditions, conditions...)
	return c
}

// Do adds actions applied when the choice is taken.
func (c *ChoiceBuilder) Do(actions ...map[string]any) *ChoiceBuilder {
	ch := c.choice()
	ch.Actions = append(ch.Actions, actions...)
	return c
}

// Scene returns to the owning scene for further configuration.
func (c *ChoiceBuilder) Scene() *SceneBuilder {
	return c.scene
}

func (c *ChoiceBuilder) choice() *domain.AuthoringChoice {
	return &c.scene.node.Choices[c.index]
}
