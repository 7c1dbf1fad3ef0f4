package runtime

import (
	"context"

	"github.com/aretw0/storyloom/pkg/domain"
)

// Render projects the current state onto the graph. It does not mutate
// anything, so repeated calls with an unchanged state return equal views.
func (e *Engine) Render(ctx context.Context) domain.View {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, _ := e.graph.Node(e.state.NodeID)
	view := domain.View{
		NodeID:       e.state.NodeID,
		Title:        node.Title,
		Text:         node.Text,
		Image:        node.Image,
		Choices:      []domain.ViewChoice{},
		CanGoBack:    e.state.CanGoBack(),
		CanGoForward: e.state.CanGoForward(),
		Inventory:    append([]domain.InventoryItem{}, e.state.Player.Inventory.Items...),
		Terminal:     len(node.Choices) == 0,
	}
	for i, c := range e.visibleChoices(ctx) {
		view.Choices = append(view.Choices, domain.ViewChoice{
			Index:    i,
			Text:     c.Text,
			To:       c.To,
			Resolved: e.graph.Has(c.To),
		})
	}
	return view
}

// visibleChoices filters the current node's choices through the condition
// evaluator, keeping authoring order. Must be called with e.mu held.
func (e *Engine) visibleChoices(ctx context.Context) []domain.RuntimeChoice {
	node, ok := e.graph.Node(e.state.NodeID)
	if !ok {
		return nil
	}

	out := make([]domain.RuntimeChoice, 0, len(node.Choices))
	for _, c := range node.Choices {
		if len(c.Conditions) == 0 {
			out = append(out, c)
			continue
		}
		conds := ParseConditions(c.Conditions)
		for _, cond := range conds {
			if u, unknown := cond.(domain.UnknownCondition); unknown {
				e.logger.Warn("unknown condition treated as satisfied", "type", u.Type, "node", e.state.NodeID)
			}
		}
		if e.evaluator(ctx, conds, e.state) {
			out = append(out, c)
		}
	}
	return out
}
