package storyloom_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/domain"
)

// ExampleOpen_memory plays a story defined in Go, without touching the file system.
func ExampleOpen_memory() {
	loader := memory.NewFromNodes("Crossroads",
		domain.AuthoringNode{
			ID:    "start",
			Title: "Crossroads",
			Text:  "Two roads diverge.",
			Choices: []domain.AuthoringChoice{
				{ID: "l", Label: "Go left", Target: "left"},
				{ID: "r", Label: "Go right", Target: "right"},
			},
		},
		domain.AuthoringNode{ID: "left", Title: "Forest", Text: "Trees everywhere."},
		domain.AuthoringNode{ID: "right", Title: "River", Text: "Water rushes by."},
	)

	ctx := context.Background()
	game, err := storyloom.Open(ctx, "", storyloom.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	view := game.Render(ctx)
	fmt.Println(view.Title)
	for _, c := range view.Choices {
		fmt.Printf("%d) %s\n", c.Index+1, c.Text)
	}

	if err := game.Choose(ctx, 1); err != nil {
		log.Fatal(err)
	}
	fmt.Println(game.Render(ctx).Title)

	if err := game.Back(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println(game.Render(ctx).Title, game.Render(ctx).CanGoForward)

	// Output:
	// Crossroads
	// 1) Go left
	// 2) Go right
	// River
	// Crossroads true
}
