package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/storyloom/pkg/domain"
)

// SaveProgress writes state as the current progress record. It implements
// ports.ProgressSaver, so it can back the engine's auto-save directly.
func (l *Layer) SaveProgress(ctx context.Context, state *domain.TraversalState) error {
	data, err := json.Marshal(domain.NewProgressRecord(state))
	if err != nil {
		return &domain.PersistError{Op: "save", Key: l.ProgressKey(), Err: err}
	}
	return l.withLock(ctx, l.ProgressKey(), func(ctx context.Context) error {
		return l.put(ctx, l.ProgressKey(), data)
	})
}

// Load returns the saved progress, migrated and sanitized, or nil when there
// is nothing usable to resume. Store and decode failures are logged and
// reported as nil so callers start a fresh game.
func (l *Layer) Load(ctx context.Context) (*domain.TraversalState, error) {
	state, err := l.LoadProgress(ctx)
	if err != nil {
		return nil, nil
	}
	return state, nil
}

// LoadProgress is Load with failures reported. It returns (nil, nil) only
// when nothing is saved; a record that exists but cannot be read or decoded
// yields an error wrapping domain.ErrProgressUnreadable. Callers starting
// fresh after such an error must not overwrite the stored record.
func (l *Layer) LoadProgress(ctx context.Context) (*domain.TraversalState, error) {
	var state *domain.TraversalState
	err := l.withLock(ctx, l.ProgressKey(), func(ctx context.Context) error {
		var err error
		state, err = l.load(ctx)
		return err
	})
	if err != nil {
		l.logger.Error("failed to load progress, starting fresh", "key", l.ProgressKey(), "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrProgressUnreadable, err)
	}
	return state, nil
}

func (l *Layer) load(ctx context.Context) (*domain.TraversalState, error) {
	key := l.ProgressKey()
	data, err := l.get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		key = l.LegacyKey()
		data, err = l.get(ctx, key)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec, migrated, err := l.decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode progress at %q: %w", key, err)
	}
	if migrated {
		if err := l.writeMigrated(ctx, l.ProgressKey(), rec, key); err != nil {
			return nil, err
		}
	}
	return l.Sanitize(rec.State()), nil
}

func (l *Layer) writeMigrated(ctx context.Context, key string, rec *domain.ProgressRecord, from string) error {
	out, err := json.Marshal(rec)
	if err != nil {
		return &domain.PersistError{Op: "save", Key: key, Err: err}
	}
	if err := l.put(ctx, key, out); err != nil {
		return err
	}
	l.logger.Info("migrated progress record", "from", from, "to", key, "format_version", rec.FormatVersion)
	return nil
}

// ClearProgress removes the current progress record. Legacy data is left alone.
func (l *Layer) ClearProgress(ctx context.Context) error {
	return l.withLock(ctx, l.ProgressKey(), func(ctx context.Context) error {
		return l.del(ctx, l.ProgressKey())
	})
}

// shape is used to detect which format a payload is in.
type shape struct {
	FormatVersion *int            `json:"formatVersion"`
	PlayerState   json.RawMessage `json:"playerState"`
}

// decodeRecord parses a payload in any known format. migrated is true when
// the payload was not already in the current format.
func (l *Layer) decodeRecord(data []byte) (*domain.ProgressRecord, bool, error) {
	var probe shape
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false, err
	}

	hasPlayer := len(probe.PlayerState) > 0 && string(probe.PlayerState) != "null"
	if hasPlayer {
		var rec domain.ProgressRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, false, err
		}
		if probe.FormatVersion != nil && *probe.FormatVersion >= domain.FormatVersion {
			l.fillDefaults(&rec)
			return &rec, false, nil
		}
		rec.FormatVersion = domain.FormatVersion
		l.fillDefaults(&rec)
		return &rec, true, nil
	}

	var legacy domain.LegacyProgress
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, false, err
	}
	return l.migrateLegacy(&legacy), true, nil
}

// migrateLegacy wraps a flat pre-version record into the current shape.
func (l *Layer) migrateLegacy(old *domain.LegacyProgress) *domain.ProgressRecord {
	rec := &domain.ProgressRecord{
		FormatVersion: domain.FormatVersion,
		NodeID:        old.NodeID,
		History:       old.History,
		Forward:       old.Forward,
	}
	if old.Inventory != nil {
		rec.PlayerState.Inventory = *old.Inventory
	}
	visits := append([]string{}, old.History...)
	if old.NodeID != "" {
		visits = append(visits, old.NodeID)
	}
	rec.PlayerState.History = visits
	l.fillDefaults(rec)
	return rec
}

func (l *Layer) fillDefaults(rec *domain.ProgressRecord) {
	if rec.History == nil {
		rec.History = []string{}
	}
	if rec.Forward == nil {
		rec.Forward = []string{}
	}
	p := &rec.PlayerState
	if p.Inventory.Items == nil {
		p.Inventory.Items = []domain.InventoryItem{}
	}
	if p.Inventory.MaxSlots <= 0 {
		p.Inventory.MaxSlots = l.maxSlots
	}
	if p.Flags == nil {
		p.Flags = make(map[string]bool)
	}
	if p.Variables == nil {
		p.Variables = make(map[string]any)
	}
	if p.History == nil {
		p.History = []string{}
	}
}

// Sanitize checks a loaded state against the current graph. Node ids that
// no longer exist are dropped from the stacks and the visit log; an invalid
// position falls back to start. Inventory entries that break the positive
// quantity rule are dropped; unknown item ids are kept.
func (l *Layer) Sanitize(s *domain.TraversalState) *domain.TraversalState {
	if s == nil {
		return nil
	}
	out := s.Clone()

	out.History = l.known(out.History)
	out.Forward = l.known(out.Forward)
	out.Player.History = l.known(out.Player.History)
	if !l.graph.Has(out.NodeID) {
		if out.NodeID != "" {
			l.logger.Warn("saved position no longer exists, falling back to start", "node", out.NodeID, "start", l.graph.Start)
		}
		out.NodeID = l.graph.Start
	}
	if len(out.Player.History) == 0 && out.NodeID != "" {
		out.Player.History = []string{out.NodeID}
	}

	items := make([]domain.InventoryItem, 0, len(out.Player.Inventory.Items))
	for _, it := range out.Player.Inventory.Items {
		if it.ID != "" && it.Quantity > 0 {
			items = append(items, it)
		}
	}
	out.Player.Inventory.Items = items
	if out.Player.Inventory.MaxSlots <= 0 {
		out.Player.Inventory.MaxSlots = l.maxSlots
	}
	return out
}

func (l *Layer) known(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if l.graph.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
