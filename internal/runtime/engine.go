package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/ports"
)

// Engine is the traversal state machine for one play session.
// It owns the session state; callers observe it through State and Render.
// Every successful mutation is handed to the configured ProgressSaver.
type Engine struct {
	mu    sync.Mutex
	graph *domain.RuntimeGraph
	state *domain.TraversalState

	saver     ports.ProgressSaver
	evaluator ConditionEvaluator
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	maxSlots  int

	// play time accumulated before the current session started
	playBase  time.Duration
	playSince time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithSaver sets the auto-save target. Without one, mutations are in-memory only.
func WithSaver(s ports.ProgressSaver) EngineOption {
	return func(e *Engine) {
		e.saver = s
	}
}

// WithConditionEvaluator replaces the built-in condition semantics.
func WithConditionEvaluator(eval ConditionEvaluator) EngineOption {
	return func(e *Engine) {
		e.evaluator = eval
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMaxSlots sets the inventory capacity of fresh sessions.
func WithMaxSlots(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSlots = n
		}
	}
}

// NewEngine creates an engine positioned at the graph's start node.
func NewEngine(graph *domain.RuntimeGraph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:     graph,
		evaluator: DefaultEvaluator,
		logger:    logging.NewNop(),
		now:       time.Now,
		maxSlots:  domain.DefaultMaxSlots,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.graph == nil {
		e.graph = &domain.RuntimeGraph{Nodes: map[string]domain.RuntimeNode{}}
	}
	e.state = domain.NewTraversalState(e.graph.Start, e.maxSlots)
	e.playSince = e.now()
	return e
}

// Graph returns the story graph the engine plays.
func (e *Engine) Graph() *domain.RuntimeGraph {
	return e.graph
}

// State returns a deep copy of the current traversal state.
func (e *Engine) State() *domain.TraversalState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Restore replaces the session state, e.g. after loading a save.
// The state is expected to be sanitized against the graph already.
// Restoring does not persist.
func (e *Engine) Restore(s *domain.TraversalState) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = s.Clone()
	if e.state.Player.Inventory.MaxSlots <= 0 {
		e.state.Player.Inventory.MaxSlots = e.maxSlots
	}
	if e.state.Player.Flags == nil {
		e.state.Player.Flags = make(map[string]bool)
	}
	if e.state.Player.Variables == nil {
		e.state.Player.Variables = make(map[string]any)
	}
	e.playBase = e.state.Stats.PlayTime
	e.playSince = e.now()
}

// CurrentNode returns the id of the node the player is at.
func (e *Engine) CurrentNode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.NodeID
}

// CanGoBack reports whether GoBack has anything to return to.
func (e *Engine) CanGoBack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CanGoBack()
}

// CanGoForward reports whether GoForward has anything to redo.
func (e *Engine) CanGoForward() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CanGoForward()
}

// snapshot must be called with e.mu held.
func (e *Engine) snapshot() *domain.TraversalState {
	s := e.state.Clone()
	s.Stats.PlayTime = e.playBase + e.now().Sub(e.playSince)
	s.Stats.NodesVisited = s.UniqueVisited()
	return s
}

// persist hands the current state to the saver. The in-memory state has
// already changed; a failure is reported but never rolled back.
// Must be called with e.mu held.
func (e *Engine) persist(ctx context.Context) error {
	if e.saver == nil {
		return nil
	}
	err := e.saver.SaveProgress(ctx, e.snapshot())
	if err == nil {
		return nil
	}

	var perr *domain.PersistError
	if !errors.As(err, &perr) {
		err = &domain.PersistError{Op: "save", Key: "progress", Err: err}
	}
	e.logger.Error("auto-save failed", "node", e.state.NodeID, "error", err)
	return err
}

func (e *Engine) emitNodeEnter(ctx context.Context, from, to string, via domain.NavigationKind) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventNodeEnter},
		From:      from,
		To:        to,
		Via:       via,
	})
}

func (e *Engine) emitInventory(ctx context.Context, item string, delta int) {
	if e.hooks.OnInventory == nil {
		return
	}
	e.hooks.OnInventory(ctx, &domain.InventoryEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventInventory},
		ItemID:    item,
		Delta:     delta,
	})
}
