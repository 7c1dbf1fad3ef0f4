// Package cli implements the storyloom commands on top of the library.
// Every command writes to the App's writers so it can be tested without a
// terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/config"
	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/pkg/convert"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/persistence"
	"github.com/aretw0/storyloom/pkg/ports"
)

// App carries the configuration and IO shared by all commands.
type App struct {
	Config config.Config
	Logger *slog.Logger
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// NewApp creates an App bound to the process standard streams.
func NewApp(cfg config.Config) *App {
	return &App{
		Config: cfg,
		Logger: logging.New(os.Stderr, cfg.SlogLevel(), cfg.LogFormat),
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return logging.NewNop()
	}
	return a.Logger
}

// loadStory reads a story from a scene directory or a story file.
func (a *App) loadStory(ctx context.Context, source string) (*domain.AuthoringGraph, ports.StoryLoader, error) {
	loader, err := storyloom.LoaderFor(source, a.logger())
	if err != nil {
		return nil, nil, err
	}
	g, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load story from %s: %w", source, err)
	}
	return g, loader, nil
}

// persistenceFor builds the persistence layer over an opened backend, using
// the configured keys and capacity.
func (a *App) persistenceFor(g *domain.AuthoringGraph, b *config.Backend) *persistence.Layer {
	opts := []persistence.Option{
		persistence.WithStorageKey(a.Config.StorageKey),
		persistence.WithMaxSlots(a.Config.MaxSlots),
		persistence.WithLogger(a.logger()),
	}
	if b.Locker != nil {
		opts = append(opts, persistence.WithLocker(b.Locker, 0))
	}
	return persistence.New(b.Store, convert.ToRuntime(g), opts...)
}

// gameOptions are the storyloom options derived from the configuration.
func (a *App) gameOptions(b *config.Backend) []storyloom.Option {
	opts := []storyloom.Option{
		storyloom.WithStore(b.Store),
		storyloom.WithStorageKey(a.Config.StorageKey),
		storyloom.WithMaxSlots(a.Config.MaxSlots),
		storyloom.WithLogger(a.logger()),
	}
	if b.Locker != nil {
		opts = append(opts, storyloom.WithLocker(b.Locker, 0))
	}
	return opts
}

func (a *App) withBackend(ctx context.Context, fn func(*config.Backend) error) error {
	b, err := a.Config.OpenBackend(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			a.logger().Warn("failed to close backend", "err", err)
		}
	}()
	return fn(b)
}
