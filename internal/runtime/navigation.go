package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/storyloom/pkg/domain"
)

// SetNode performs a normal navigation to id. The current node is pushed
// onto the back stack when id differs from it, and the forward stack is
// always cleared. Entering a different node runs its entry actions.
// An unknown id leaves the state untouched and returns ErrUnknownNode.
func (e *Engine) SetNode(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.graph.Has(id) {
		e.logger.Warn("navigation to unknown node ignored", "node", id)
		return fmt.Errorf("%w: %q", domain.ErrUnknownNode, id)
	}
	e.enter(ctx, id)
	return e.persist(ctx)
}

// Choose follows the i-th visible choice of the current node: the choice's
// actions are applied and then the engine moves to its target.
func (e *Engine) Choose(ctx context.Context, i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	visible := e.visibleChoices(ctx)
	if i < 0 || i >= len(visible) {
		e.logger.Warn("choice not available", "node", e.state.NodeID, "index", i)
		return fmt.Errorf("%w: index %d at node %q", domain.ErrChoiceUnavailable, i, e.state.NodeID)
	}
	choice := visible[i]
	if !e.graph.Has(choice.To) {
		e.logger.Warn("choice points to unknown node", "node", e.state.NodeID, "target", choice.To)
		return fmt.Errorf("%w: %q", domain.ErrUnknownNode, choice.To)
	}

	e.apply(ctx, ParseActions(choice.Actions))
	e.state.Stats.ChoicesMade++
	e.enter(ctx, choice.To)
	return e.persist(ctx)
}

// enter moves to id as a normal navigation. Must be called with e.mu held.
func (e *Engine) enter(ctx context.Context, id string) {
	from := e.state.NodeID
	e.state.Forward = []string{}
	if id == from {
		return
	}

	if from != "" {
		e.state.History = append(e.state.History, from)
	}
	e.state.NodeID = id
	e.state.Player.History = append(e.state.Player.History, id)
	e.emitNodeEnter(ctx, from, id, domain.NavSet)

	e.applyEntry(ctx, id)
}

func (e *Engine) applyEntry(ctx context.Context, id string) {
	if node, ok := e.graph.Node(id); ok {
		e.apply(ctx, ParseActions(node.Actions))
	}
}

// GoBack returns to the most recent node of the back stack and makes the
// node being left available to GoForward. It fails without changing state
// when the stack is empty or its top is no longer in the graph.
func (e *Engine) GoBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.History) == 0 {
		return domain.ErrNoHistory
	}
	target := e.state.History[len(e.state.History)-1]
	if !e.graph.Has(target) {
		e.logger.Warn("back stack references a missing node", "node", target)
		return fmt.Errorf("%w: %q", domain.ErrStaleHistory, target)
	}

	from := e.state.NodeID
	e.state.History = e.state.History[:len(e.state.History)-1]
	e.state.Forward = append(e.state.Forward, from)
	e.state.NodeID = target
	e.emitNodeEnter(ctx, from, target, domain.NavBack)
	return e.persist(ctx)
}

// GoForward redoes the most recent GoBack.
func (e *Engine) GoForward(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.Forward) == 0 {
		return domain.ErrNoForward
	}
	target := e.state.Forward[len(e.state.Forward)-1]
	if !e.graph.Has(target) {
		e.logger.Warn("forward stack references a missing node", "node", target)
		return fmt.Errorf("%w: %q", domain.ErrStaleHistory, target)
	}

	from := e.state.NodeID
	e.state.Forward = e.state.Forward[:len(e.state.Forward)-1]
	e.state.History = append(e.state.History, from)
	e.state.NodeID = target
	e.emitNodeEnter(ctx, from, target, domain.NavForward)
	return e.persist(ctx)
}

// Reset returns to the start node with empty stacks, an empty inventory and
// no flags or variables. It always succeeds in memory and always persists.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.state.NodeID
	maxSlots := e.state.Player.Inventory.MaxSlots
	e.state = domain.NewTraversalState(e.graph.Start, maxSlots)
	e.playBase = 0
	e.playSince = e.now()
	e.emitNodeEnter(ctx, from, e.graph.Start, domain.NavReset)
	e.applyEntry(ctx, e.graph.Start)
	return e.persist(ctx)
}

// Start begins a fresh session: the start node's entry actions run and the
// initial state is persisted. Resumed sessions use Restore instead.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.begin(ctx)
	return e.persist(ctx)
}

// StartUnsaved is Start without the initial save. The stored record is left
// as it is until the first successful navigation.
func (e *Engine) StartUnsaved(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.begin(ctx)
}

// begin must be called with e.mu held.
func (e *Engine) begin(ctx context.Context) {
	e.emitNodeEnter(ctx, "", e.state.NodeID, domain.NavSet)
	e.applyEntry(ctx, e.state.NodeID)
}
