package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/storyloom/pkg/domain"
)

// CreateSlot stores state in a new save slot and returns the slot id.
func (l *Layer) CreateSlot(ctx context.Context, name string, state *domain.TraversalState) (string, error) {
	id := l.newID()
	err := l.withLock(ctx, l.slotIndexKey(), func(ctx context.Context) error {
		idx, err := l.readIndex(ctx)
		if err != nil {
			return err
		}
		if _, taken := idx[id]; taken {
			return fmt.Errorf("slot id %q already exists", id)
		}

		now := l.now()
		if err := l.writeSlot(ctx, id, state); err != nil {
			return err
		}
		idx[id] = domain.SlotEntry{Name: name, Meta: l.slotMeta(state, now, now)}
		return l.writeIndex(ctx, idx)
	})
	if err != nil {
		return "", err
	}
	l.logger.Info("save slot created", "slot", id, "name", name)
	return id, nil
}

// SaveToSlot overwrites an existing slot with state.
func (l *Layer) SaveToSlot(ctx context.Context, id string, state *domain.TraversalState) error {
	return l.withLock(ctx, l.slotIndexKey(), func(ctx context.Context) error {
		idx, err := l.readIndex(ctx)
		if err != nil {
			return err
		}
		entry, ok := idx[id]
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrSlotNotFound, id)
		}

		if err := l.writeSlot(ctx, id, state); err != nil {
			return err
		}
		entry.Meta = l.slotMeta(state, entry.Meta.Created, l.now())
		idx[id] = entry
		return l.writeIndex(ctx, idx)
	})
}

// LoadFromSlot returns the sanitized state stored in a slot. Slot payloads
// in an older format are migrated and written back like the main record; a
// failed write-back is logged and the slot still loads.
func (l *Layer) LoadFromSlot(ctx context.Context, id string) (*domain.TraversalState, error) {
	var state *domain.TraversalState
	err := l.withLock(ctx, l.slotIndexKey(), func(ctx context.Context) error {
		idx, err := l.readIndex(ctx)
		if err != nil {
			return err
		}
		if _, ok := idx[id]; !ok {
			return fmt.Errorf("%w: %q", domain.ErrSlotNotFound, id)
		}

		data, err := l.get(ctx, l.slotKey(id))
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: payload for %q is missing", domain.ErrSlotNotFound, id)
		}
		if err != nil {
			return err
		}

		rec, migrated, err := l.decodeRecord(data)
		if err != nil {
			return fmt.Errorf("failed to decode slot %q: %w", id, err)
		}
		if migrated {
			if err := l.writeMigrated(ctx, l.slotKey(id), rec, l.slotKey(id)); err != nil {
				l.logger.Warn("failed to write back migrated slot", "slot", id, "error", err)
			}
		}
		state = l.Sanitize(rec.State())
		return nil
	})
	return state, err
}

// RenameSlot changes the display name of a slot.
func (l *Layer) RenameSlot(ctx context.Context, id, name string) error {
	return l.withLock(ctx, l.slotIndexKey(), func(ctx context.Context) error {
		idx, err := l.readIndex(ctx)
		if err != nil {
			return err
		}
		entry, ok := idx[id]
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrSlotNotFound, id)
		}
		entry.Name = name
		idx[id] = entry
		return l.writeIndex(ctx, idx)
	})
}

// DeleteSlot removes a slot and its payload.
func (l *Layer) DeleteSlot(ctx context.Context, id string) error {
	return l.withLock(ctx, l.slotIndexKey(), func(ctx context.Context) error {
		idx, err := l.readIndex(ctx)
		if err != nil {
			return err
		}
		if _, ok := idx[id]; !ok {
			return fmt.Errorf("%w: %q", domain.ErrSlotNotFound, id)
		}
		delete(idx, id)
		if err := l.writeIndex(ctx, idx); err != nil {
			return err
		}
		return l.del(ctx, l.slotKey(id))
	})
}

// CopySlot duplicates a slot under a new id and name. The copy keeps the
// original creation time.
func (l *Layer) CopySlot(ctx context.Context, id, name string) (string, error) {
	newID := l.newID()
	err := l.withLock(ctx, l.slotIndexKey(), func(ctx context.Context) error {
		idx, err := l.readIndex(ctx)
		if err != nil {
			return err
		}
		entry, ok := idx[id]
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrSlotNotFound, id)
		}

		data, err := l.get(ctx, l.slotKey(id))
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: payload for %q is missing", domain.ErrSlotNotFound, id)
		}
		if err != nil {
			return err
		}
		if err := l.put(ctx, l.slotKey(newID), data); err != nil {
			return err
		}

		if name == "" {
			name = entry.Name + " (copy)"
		}
		entry.Name = name
		entry.Meta.Modified = l.now()
		idx[newID] = entry
		return l.writeIndex(ctx, idx)
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// ListSlots returns every slot, most recently modified first.
func (l *Layer) ListSlots(ctx context.Context) ([]domain.Slot, error) {
	idx, err := l.readIndex(ctx)
	if err != nil {
		return nil, err
	}

	slots := make([]domain.Slot, 0, len(idx))
	for id, e := range idx {
		slots = append(slots, domain.Slot{ID: id, Name: e.Name, Meta: e.Meta})
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Meta.Modified.Equal(slots[j].Meta.Modified) {
			return slots[i].Meta.Modified.After(slots[j].Meta.Modified)
		}
		return slots[i].ID < slots[j].ID
	})
	return slots, nil
}

// readIndex returns the slot index; a missing index is empty. A corrupt
// index is rebuilt from the slot payloads in the store and written back.
// Must be called with the index lock held.
func (l *Layer) readIndex(ctx context.Context) (domain.SlotIndex, error) {
	data, err := l.get(ctx, l.slotIndexKey())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SlotIndex{}, nil
	}
	if err != nil {
		return nil, err
	}

	idx := domain.SlotIndex{}
	err = json.Unmarshal(data, &idx)
	if err == nil {
		return idx, nil
	}
	l.logger.Error("slot index is corrupt, rebuilding it from slot payloads", "key", l.slotIndexKey(), "error", err)

	idx, err = l.rebuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.writeIndex(ctx, idx); err != nil {
		l.logger.Warn("failed to write rebuilt slot index", "key", l.slotIndexKey(), "error", err)
	}
	return idx, nil
}

// rebuildIndex recovers one entry per stored slot payload. Names are lost,
// so each slot is named after its id. Payloads that do not decode are kept
// with empty metadata.
func (l *Layer) rebuildIndex(ctx context.Context) (domain.SlotIndex, error) {
	keys, err := l.store.List(ctx)
	if err != nil {
		return nil, &domain.PersistError{Op: "list", Key: l.slotNS, Err: err}
	}

	prefix := l.slotKey("")
	now := l.now()
	idx := domain.SlotIndex{}
	for _, key := range keys {
		id, ok := strings.CutPrefix(key, prefix)
		if !ok || id == "" {
			continue
		}
		entry := domain.SlotEntry{Name: id, Meta: domain.SlotMeta{Created: now, Modified: now}}
		data, err := l.get(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if rec, _, err := l.decodeRecord(data); err == nil {
			entry.Meta = l.slotMeta(rec.State(), now, now)
		}
		idx[id] = entry
	}
	l.logger.Info("slot index rebuilt", "key", l.slotIndexKey(), "slots", len(idx))
	return idx, nil
}

func (l *Layer) writeIndex(ctx context.Context, idx domain.SlotIndex) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return &domain.PersistError{Op: "save", Key: l.slotIndexKey(), Err: err}
	}
	return l.put(ctx, l.slotIndexKey(), data)
}

func (l *Layer) writeSlot(ctx context.Context, id string, state *domain.TraversalState) error {
	data, err := json.Marshal(domain.NewProgressRecord(state))
	if err != nil {
		return &domain.PersistError{Op: "save", Key: l.slotKey(id), Err: err}
	}
	return l.put(ctx, l.slotKey(id), data)
}

func (l *Layer) slotMeta(state *domain.TraversalState, created, modified time.Time) domain.SlotMeta {
	location := state.NodeID
	if n, ok := l.graph.Node(state.NodeID); ok && n.Title != "" {
		location = n.Title
	}
	return domain.SlotMeta{
		Created:         created,
		Modified:        modified,
		PlayTime:        int64(state.Stats.PlayTime / time.Second),
		CurrentLocation: location,
		Progress:        l.progress(state),
		Version:         domain.FormatVersion,
	}
}

// progress is the share of story nodes visited, as a percentage rounded to
// two decimals.
func (l *Layer) progress(state *domain.TraversalState) float64 {
	total := len(l.graph.Nodes)
	if total == 0 {
		return 0
	}
	visited := 0
	seen := make(map[string]bool)
	for _, id := range state.Player.History {
		if !seen[id] && l.graph.Has(id) {
			seen[id] = true
			visited++
		}
	}
	return math.Round(float64(visited)/float64(total)*10000) / 100
}
