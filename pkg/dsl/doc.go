/*
Package dsl provides a fluent Go builder for stories.

It is an alternative to writing JSON, YAML or markdown scenes by hand, useful
for generated stories, fixtures in tests and samples shipped with tools.

Example usage:

	b := dsl.New("The Cellar")

	b.Scene("start").
		Title("Hall").
		Text("A staircase leads down.").
		Choice("Go down", "cellar")

	b.Scene("cellar").
		Title("Cellar").
		Text("Dusty shelves.").
		OnEnter(dsl.AddItem("lamp", 1)).
		Choice("Climb back", "start")

	g := b.Build()          // *domain.AuthoringGraph
	loader := b.Loader()    // ports.StoryLoader for storyloom.Open
*/
package dsl
