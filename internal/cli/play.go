package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/config"
	"github.com/aretw0/storyloom/internal/presentation/tui"
	"github.com/aretw0/storyloom/pkg/observability"
	"golang.org/x/term"
)

// PlayOptions tune the interactive session.
type PlayOptions struct {
	// Headless disables the banner, prompts and markdown rendering.
	Headless bool
	// Plain prints scene text as written, without markdown rendering.
	Plain bool
	// Style is a glamour style name; empty detects the terminal background.
	Style string
	// Fresh starts over instead of resuming saved progress.
	Fresh bool
	// Slot loads a save slot before the first scene.
	Slot string
}

// Play runs the interactive text player until the user quits or input ends.
func (a *App) Play(ctx context.Context, source string, opts PlayOptions) error {
	return a.withBackend(ctx, func(b *config.Backend) error {
		gameOpts := append(a.gameOptions(b), storyloom.WithLifecycleHooks(observability.LogHooks(a.logger())))
		game, err := storyloom.Open(ctx, source, gameOpts...)
		if err != nil {
			return err
		}

		if opts.Fresh {
			if err := game.Reset(ctx); err != nil {
				return err
			}
		}
		if opts.Slot != "" {
			if err := game.LoadSlot(ctx, opts.Slot); err != nil {
				return fmt.Errorf("failed to load slot: %w", err)
			}
		}

		runner := storyloom.NewRunner(NewInterruptibleReader(a.In, ctx.Done()), a.Out)
		runner.Headless = opts.Headless
		if !opts.Headless {
			runner.Banner = tui.DefaultBanner()
			width, height := a.terminalSize()
			runner.Padding = tui.Padding(height, a.Config.AutoScrollRatio)
			if !opts.Plain {
				render, err := tui.NewRenderer(opts.Style, width)
				if err != nil {
					return err
				}
				runner.Renderer = render
			}
		}

		if err := runner.Run(ctx, game); err != nil && !isInterrupted(err) {
			return err
		}
		return nil
	})
}

// terminalSize reports the size of Out when it is a terminal, else zeros.
func (a *App) terminalSize() (width, height int) {
	f, ok := a.Out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, 0
	}
	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		a.logger().Debug("failed to read terminal size", "err", err)
		return 0, 0
	}
	return width, height
}
