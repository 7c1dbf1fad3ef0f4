package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	loamadapter "github.com/aretw0/storyloom/pkg/adapters/loam"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/dsl"
)

// ErrNotEmpty is returned by Init when the target directory has files.
var ErrNotEmpty = errors.New("directory is not empty")

// Sample is the story written by Init: a key, a locked door and two endings.
func Sample() *domain.AuthoringGraph {
	b := dsl.New("The Locked Door").Start("start")

	b.Scene("start").
		Title("Hallway").
		Text("A dim hallway. A **door** stands at the far end, and a desk sits by the wall.").
		Branch("Search the desk", "desk").ID("search").Scene().
		Branch("Open the door", "door").ID("open")

	b.Scene("desk").
		Title("Desk").
		Text("Under a pile of letters you find a small brass key.").
		OnEnter(dsl.AddItem("brass-key", 1)).
		Branch("Return to the hallway", "start").ID("back")

	b.Scene("door").
		Title("Door").
		Text("The door is locked.").
		Branch("Unlock it with the brass key", "garden").ID("unlock").
		When(dsl.HasItem("brass-key", 1)).
		Do(dsl.UseItem("brass-key", 1)).
		Scene().
		Branch("Give up and leave", "home").ID("leave")

	b.Scene("garden").Title("Garden").Text("Sunlight. You made it out.")
	b.Scene("home").Title("Home").Text("You go home and wonder what was behind the door.")

	return b.Build()
}

// Init writes the sample story as scene files into an empty or missing dir.
func (a *App) Init(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", ErrNotEmpty, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	g := Sample()
	if err := loamadapter.Export(ctx, dir, g); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Created %q with %d scenes in %s\n", g.Meta.Title, len(g.Nodes), dir)
	fmt.Fprintf(a.Out, "Try: storyloom play %s\n", dir)
	return nil
}
