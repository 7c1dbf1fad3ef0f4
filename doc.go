/*
Package storyloom plays branching interactive-fiction stories.

A story is a graph of scenes connected by labeled choices. storyloom
validates the graph, walks it with back/forward history, an inventory,
flags and variables, and keeps progress in any key-value store, with named
save slots and transparent migration of older save formats.

# Concept

Stories are authored as a JSON/YAML file or as a directory of markdown scene
files. The engine plays the runtime shape of the graph; a persistence layer
auto-saves after every mutation. Storage is a port: memory, files, Redis,
SQLite and Badger adapters ship with the module, and any of them can be
wrapped in encryption middleware.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/storyloom"
		"github.com/aretw0/storyloom/pkg/adapters/file"
	)

	func main() {
		ctx := context.Background()

		game, err := storyloom.Open(ctx, "./my-story.yaml",
			storyloom.WithStore(file.New(".storyloom/saves")),
		)
		if err != nil {
			log.Fatal(err)
		}

		view := game.Render(ctx)
		fmt.Println(view.Title)
		for _, c := range view.Choices {
			fmt.Printf("%d) %s\n", c.Index+1, c.Text)
		}

		if err := game.Choose(ctx, 0); err != nil {
			log.Fatal(err)
		}
	}
*/
package storyloom
