package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/storyloom/internal/config"
	"github.com/aretw0/storyloom/internal/presentation/tui"
	"github.com/aretw0/storyloom/pkg/persistence"
)

// withSlots opens the backend and the persistence layer for a story.
func (a *App) withSlots(ctx context.Context, source string, fn func(*persistence.Layer) error) error {
	g, _, err := a.loadStory(ctx, source)
	if err != nil {
		return err
	}
	return a.withBackend(ctx, func(b *config.Backend) error {
		return fn(a.persistenceFor(g, b))
	})
}

// ListSlots prints the save slots of a story, most recent first.
func (a *App) ListSlots(ctx context.Context, source string) error {
	return a.withSlots(ctx, source, func(l *persistence.Layer) error {
		slots, err := l.ListSlots(ctx)
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			fmt.Fprintln(a.Out, "no saves")
			return nil
		}
		rows := make([][]string, 0, len(slots))
		for _, s := range slots {
			rows = append(rows, []string{
				s.ID, s.Name, s.Meta.CurrentLocation,
				fmt.Sprintf("%.0f%%", s.Meta.Progress),
				s.Meta.Modified.Format(time.DateTime),
			})
		}
		fmt.Fprintln(a.Out, tui.Table([]string{"ID", "NAME", "LOCATION", "PROGRESS", "MODIFIED"}, rows))
		return nil
	})
}

// RenameSlot changes a slot's display name.
func (a *App) RenameSlot(ctx context.Context, source, id, name string) error {
	return a.withSlots(ctx, source, func(l *persistence.Layer) error {
		if err := l.RenameSlot(ctx, id, name); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "renamed %s to %q\n", id, name)
		return nil
	})
}

// DeleteSlot removes a slot.
func (a *App) DeleteSlot(ctx context.Context, source, id string) error {
	return a.withSlots(ctx, source, func(l *persistence.Layer) error {
		if err := l.DeleteSlot(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "deleted %s\n", id)
		return nil
	})
}

// CopySlot duplicates a slot under a new name.
func (a *App) CopySlot(ctx context.Context, source, id, name string) error {
	return a.withSlots(ctx, source, func(l *persistence.Layer) error {
		newID, err := l.CopySlot(ctx, id, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "copied %s to %s\n", id, newID)
		return nil
	})
}
