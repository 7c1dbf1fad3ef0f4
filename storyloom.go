package storyloom

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/internal/runtime"
	loamAdapter "github.com/aretw0/storyloom/pkg/adapters/loam"
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/convert"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/persistence"
	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/aretw0/storyloom/pkg/story"
)

// Game is the high-level entry point: one story being played by one player,
// with auto-saved progress and save slots.
type Game struct {
	Name string

	story  *domain.AuthoringGraph
	engine *runtime.Engine
	layer  *persistence.Layer
	loader ports.StoryLoader
	logger *slog.Logger
}

type options struct {
	loader     ports.StoryLoader
	story      *domain.AuthoringGraph
	store      ports.KVStore
	storageKey string
	slotNS     string
	maxSlots   int
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	hooks      domain.LifecycleHooks
	evaluator  runtime.ConditionEvaluator
	logger     *slog.Logger
	now        func() time.Time
}

// Option defines a functional option for configuring a Game.
type Option func(*options)

// WithLoader injects a custom StoryLoader, bypassing path resolution.
func WithLoader(l ports.StoryLoader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithStory plays an already loaded story.
func WithStory(g *domain.AuthoringGraph) Option {
	return func(o *options) {
		o.story = g
	}
}

// WithStore sets where progress and slots are kept. Defaults to memory.
func WithStore(s ports.KVStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithStorageKey sets the key prefix progress is stored under.
func WithStorageKey(key string) Option {
	return func(o *options) {
		o.storageKey = key
	}
}

// WithSlotNamespace shares save slots between games with different storage keys.
func WithSlotNamespace(prefix string) Option {
	return func(o *options) {
		o.slotNS = prefix
	}
}

// WithMaxSlots sets the inventory capacity.
func WithMaxSlots(n int) Option {
	return func(o *options) {
		o.maxSlots = n
	}
}

// WithLocker serializes writes across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		o.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithConditionEvaluator sets a custom condition evaluator.
func WithConditionEvaluator(eval runtime.ConditionEvaluator) Option {
	return func(o *options) {
		o.evaluator = eval
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// LoaderFor picks a loader for a story source: a directory of scene files
// is read through Loam, anything else is decoded as a JSON/YAML story file.
func LoaderFor(path string, logger *slog.Logger) (ports.StoryLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("story source: %w", err)
	}
	if info.IsDir() {
		if logger == nil {
			logger = logging.NewNop()
		}
		return loamAdapter.Open(path, loamAdapter.WithLogger(logger))
	}
	return story.NewFileLoader(path), nil
}

// Open loads a story and resumes saved progress, or starts fresh when there
// is none. source is a story file or scene directory; it may be empty when
// WithLoader or WithStory is given.
func Open(ctx context.Context, source string, opts ...Option) (*Game, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	g := &Game{loader: o.loader}
	if source != "" {
		g.Name = filepath.Base(source)
	}

	switch {
	case o.story != nil:
		g.story = story.NormalizeSpec(o.story)
	default:
		if g.loader == nil {
			if source == "" {
				return nil, fmt.Errorf("a story source is required when no loader or story is provided")
			}
			l, err := LoaderFor(source, o.logger)
			if err != nil {
				return nil, err
			}
			g.loader = l
		}
		loaded, err := g.loader.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load story: %w", err)
		}
		g.story = loaded
	}
	if g.Name == "" {
		g.Name = g.story.Meta.Title
	}

	g.logger = o.logger.With("story", g.Name)
	rt := convert.ToRuntime(g.story)

	store := o.store
	if store == nil {
		store = memory.NewStore()
	}
	layerOpts := []persistence.Option{
		persistence.WithStorageKey(o.storageKey),
		persistence.WithSlotNamespace(o.slotNS),
		persistence.WithMaxSlots(o.maxSlots),
		persistence.WithLogger(g.logger),
		persistence.WithLifecycleHooks(o.hooks),
	}
	if o.locker != nil {
		layerOpts = append(layerOpts, persistence.WithLocker(o.locker, o.lockTTL))
	}
	if o.now != nil {
		layerOpts = append(layerOpts, persistence.WithClock(o.now))
	}
	g.layer = persistence.New(store, rt, layerOpts...)

	engineOpts := []runtime.EngineOption{
		runtime.WithSaver(g.layer),
		runtime.WithLogger(g.logger),
		runtime.WithLifecycleHooks(o.hooks),
		runtime.WithMaxSlots(o.maxSlots),
	}
	if o.evaluator != nil {
		engineOpts = append(engineOpts, runtime.WithConditionEvaluator(o.evaluator))
	}
	if o.now != nil {
		engineOpts = append(engineOpts, runtime.WithClock(o.now))
	}
	g.engine = runtime.NewEngine(rt, engineOpts...)

	saved, err := g.layer.LoadProgress(ctx)
	if err != nil {
		// Keep the stored record: the read may only have failed transiently.
		g.logger.Warn("saved progress unreadable, playing without overwriting it", "error", err)
		g.engine.StartUnsaved(ctx)
		return g, nil
	}
	if saved != nil {
		g.engine.Restore(saved)
		g.logger.Info("resumed progress", "node", saved.NodeID)
		return g, nil
	}
	if err := g.engine.Start(ctx); err != nil {
		// The session is playable; only the initial save failed.
		g.logger.Warn("initial save failed", "error", err)
	}
	return g, nil
}

// Story returns the normalized authoring graph being played.
func (g *Game) Story() *domain.AuthoringGraph { return g.story }

// Graph returns the runtime graph being played.
func (g *Game) Graph() *domain.RuntimeGraph { return g.engine.Graph() }

// Engine exposes the traversal engine for inventory, flags and variables.
func (g *Game) Engine() *runtime.Engine { return g.engine }

// Persistence exposes the persistence layer.
func (g *Game) Persistence() *persistence.Layer { return g.layer }

// Loader returns the loader the story came from, or nil for WithStory.
func (g *Game) Loader() ports.StoryLoader { return g.loader }

// Render returns the view of the current node.
func (g *Game) Render(ctx context.Context) domain.View { return g.engine.Render(ctx) }

// State returns a copy of the traversal state.
func (g *Game) State() *domain.TraversalState { return g.engine.State() }

// Choose follows the i-th visible choice.
func (g *Game) Choose(ctx context.Context, i int) error { return g.engine.Choose(ctx, i) }

// Back returns to the previous node.
func (g *Game) Back(ctx context.Context) error { return g.engine.GoBack(ctx) }

// Forward redoes the last Back.
func (g *Game) Forward(ctx context.Context) error { return g.engine.GoForward(ctx) }

// Reset restarts the story from the beginning.
func (g *Game) Reset(ctx context.Context) error { return g.engine.Reset(ctx) }

// Goto jumps to a node by id.
func (g *Game) Goto(ctx context.Context, id string) error { return g.engine.SetNode(ctx, id) }

// SaveSlot stores the current state in a new slot and returns its id.
func (g *Game) SaveSlot(ctx context.Context, name string) (string, error) {
	return g.layer.CreateSlot(ctx, name, g.engine.State())
}

// OverwriteSlot stores the current state in an existing slot.
func (g *Game) OverwriteSlot(ctx context.Context, id string) error {
	return g.layer.SaveToSlot(ctx, id, g.engine.State())
}

// LoadSlot replaces the current state with a slot's and saves it as progress.
func (g *Game) LoadSlot(ctx context.Context, id string) error {
	st, err := g.layer.LoadFromSlot(ctx, id)
	if err != nil {
		return err
	}
	g.engine.Restore(st)
	return g.layer.SaveProgress(ctx, g.engine.State())
}

// Slots lists save slots, most recently modified first.
func (g *Game) Slots(ctx context.Context) ([]domain.Slot, error) {
	return g.layer.ListSlots(ctx)
}
