package storyloom

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/storyloom/pkg/domain"
)

// Runner drives a Game from line-based input.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// Banner is printed once before the first scene unless Headless.
	Banner string
	// Padding is the number of blank lines printed before each new scene.
	Padding int
}

// ContentRenderer is a function that transforms scene text before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner over the given IO.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

const runnerHelp = `commands:
  <n>           follow choice n
  back          go to the previous scene
  forward       redo after back
  inv           show the inventory
  save <name>   save to a new slot
  load <slot>   load a slot by id or name
  slots         list save slots
  reset         start over
  quit          leave the game`

// Run plays until quit or end of input. Reaching an ending does not stop the
// loop, so the player can still go back, load or reset.
func (r *Runner) Run(ctx context.Context, game *Game) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)
	w := r.Output

	if !r.Headless && r.Banner != "" {
		fmt.Fprintln(w, r.Banner)
	}

	lastRendered := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		view := game.Render(ctx)
		if view.NodeID != lastRendered {
			r.printScene(view)
			lastRendered = view.NodeID
		}

		if !r.Headless {
			fmt.Fprint(w, "> ")
		}
		text, err := lines.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return fmt.Errorf("input error: %w", err)
		}
		if eof && strings.TrimSpace(text) == "" {
			return nil
		}

		quit, cmdErr := r.exec(ctx, game, view, strings.TrimSpace(text))
		if cmdErr != nil {
			var perr *domain.PersistError
			if errors.As(cmdErr, &perr) {
				fmt.Fprintf(w, "warning: progress not saved (%v)\n", perr.Err)
			} else {
				fmt.Fprintf(w, "! %v\n", cmdErr)
			}
		}
		if quit {
			fmt.Fprintln(w, "Bye!")
			return nil
		}
		if eof {
			return nil
		}
		if fields := strings.Fields(text); len(fields) > 0 && (fields[0] == "reset" || fields[0] == "load") {
			lastRendered = ""
		}
	}
}

func (r *Runner) exec(ctx context.Context, game *Game, view domain.View, input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(r.Output, runnerHelp)
	case "back", "b":
		return false, game.Back(ctx)
	case "forward", "f":
		return false, game.Forward(ctx)
	case "reset":
		return false, game.Reset(ctx)
	case "inv", "inventory", "i":
		r.printInventory(game.Engine().Inventory())
	case "slots":
		return false, r.printSlots(ctx, game)
	case "save":
		if arg == "" {
			return false, fmt.Errorf("usage: save <name>")
		}
		id, err := game.SaveSlot(ctx, arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.Output, "saved %q (%s)\n", arg, id)
	case "load":
		if arg == "" {
			return false, fmt.Errorf("usage: load <slot>")
		}
		id, err := resolveSlot(ctx, game, arg)
		if err != nil {
			return false, err
		}
		return false, game.LoadSlot(ctx, id)
	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return false, fmt.Errorf("unknown command %q (type help)", fields[0])
		}
		if n < 1 || n > len(view.Choices) {
			return false, fmt.Errorf("no choice %d", n)
		}
		return false, game.Choose(ctx, view.Choices[n-1].Index)
	}
	return false, nil
}

func resolveSlot(ctx context.Context, game *Game, ref string) (string, error) {
	slots, err := game.Slots(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range slots {
		if s.ID == ref {
			return s.ID, nil
		}
	}
	for _, s := range slots {
		if strings.EqualFold(s.Name, ref) {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrSlotNotFound, ref)
}

func (r *Runner) printScene(view domain.View) {
	w := r.Output
	for i := 0; i < r.Padding; i++ {
		fmt.Fprintln(w)
	}
	if view.Title != "" {
		fmt.Fprintf(w, "## %s\n", view.Title)
	}
	body := view.Text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(body); err == nil {
			body = rendered
		}
	}
	if body = strings.TrimSpace(body); body != "" {
		fmt.Fprintln(w, body)
	}
	for i, c := range view.Choices {
		suffix := ""
		if !c.Resolved {
			suffix = " (missing)"
		}
		fmt.Fprintf(w, "  %d) %s%s\n", i+1, c.Text, suffix)
	}
	if view.Terminal {
		fmt.Fprintln(w, "-- The End --")
	}
}

func (r *Runner) printInventory(items []domain.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(r.Output, "inventory is empty")
		return
	}
	for _, it := range items {
		fmt.Fprintf(r.Output, "  %s x%d\n", it.ID, it.Quantity)
	}
}

func (r *Runner) printSlots(ctx context.Context, game *Game) error {
	slots, err := game.Slots(ctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Fprintln(r.Output, "no saves")
		return nil
	}
	for _, s := range slots {
		fmt.Fprintf(r.Output, "  %s  %-20s %-16s %5.1f%%\n", s.ID, s.Name, s.Meta.CurrentLocation, s.Meta.Progress)
	}
	return nil
}
