package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ConditionEvaluator decides whether a choice gated by conds is visible in
// the given state. An empty list must always be visible; the engine never
// calls the evaluator with one.
type ConditionEvaluator func(ctx context.Context, conds []domain.Condition, state *domain.TraversalState) bool

// DefaultEvaluator holds when every condition holds. Conditions of unknown
// kind hold.
func DefaultEvaluator(_ context.Context, conds []domain.Condition, state *domain.TraversalState) bool {
	for _, c := range conds {
		if !holds(c, state) {
			return false
		}
	}
	return true
}

func holds(c domain.Condition, s *domain.TraversalState) bool {
	inv := &s.Player.Inventory
	switch c := c.(type) {
	case domain.HasItem:
		return itemCount(inv, c.Item) >= max(c.Quantity, 1)
	case domain.MissingItem:
		return itemCount(inv, c.Item) == 0
	case domain.InventoryEmpty:
		return len(inv.Items) == 0
	case domain.FlagIs:
		return s.Player.Flags[c.Flag] == c.Value
	case domain.VariableEquals:
		v, ok := s.Player.Variables[c.Name]
		return ok && sameValue(v, c.Value)
	case domain.Visited:
		return slices.Contains(s.Player.History, c.Node)
	}
	return true
}

// sameValue compares variables numerically when both sides are numbers,
// since persisted integers come back as float64.
func sameValue(a, b any) bool {
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum && bNum {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ParseConditions turns loosely typed condition records into typed values.
// Records are selected by their "type" key; anything unrecognized or
// malformed becomes an UnknownCondition.
func ParseConditions(raw []map[string]any) []domain.Condition {
	out := make([]domain.Condition, 0, len(raw))
	for _, r := range raw {
		kind := domain.ConditionKind(fmt.Sprint(r["type"]))
		var (
			c   domain.Condition
			err error
		)
		switch kind {
		case domain.CondHasItem:
			c, err = decode[domain.HasItem](r)
		case domain.CondMissingItem:
			c, err = decode[domain.MissingItem](r)
		case domain.CondInventoryEmpty:
			c = domain.InventoryEmpty{}
		case domain.CondFlag:
			c, err = decode[domain.FlagIs](r)
		case domain.CondVariableEquals:
			c, err = decode[domain.VariableEquals](r)
		case domain.CondVisited:
			c, err = decode[domain.Visited](r)
		default:
			c = domain.UnknownCondition{Type: string(kind), Raw: r}
		}
		if err != nil {
			c = domain.UnknownCondition{Type: string(kind), Raw: r}
		}
		out = append(out, c)
	}
	return out
}

// ParseActions turns loosely typed action records into typed values.
func ParseActions(raw []map[string]any) []domain.Action {
	out := make([]domain.Action, 0, len(raw))
	for _, r := range raw {
		kind := domain.ActionKind(fmt.Sprint(r["type"]))
		var (
			a   domain.Action
			err error
		)
		switch kind {
		case domain.ActAddItem:
			a, err = decode[domain.AddItem](r)
		case domain.ActUseItem:
			a, err = decode[domain.UseItem](r)
		case domain.ActClearInventory:
			a = domain.ClearInventory{}
		case domain.ActSetFlag:
			a, err = decode[domain.SetFlag](r)
		case domain.ActSetVariable:
			a, err = decode[domain.SetVariable](r)
		default:
			a = domain.UnknownAction{Type: string(kind), Raw: r}
		}
		if err != nil {
			a = domain.UnknownAction{Type: string(kind), Raw: r}
		}
		out = append(out, a)
	}
	return out
}

func decode[T any](raw map[string]any) (T, error) {
	var out T
	err := mapstructure.WeakDecode(raw, &out)
	return out, err
}

// apply runs actions in order. A failing action is logged and skipped; the
// remaining actions still run. Must be called with e.mu held.
func (e *Engine) apply(ctx context.Context, actions []domain.Action) {
	for _, a := range actions {
		var err error
		switch a := a.(type) {
		case domain.AddItem:
			err = e.addItem(ctx, a.Item, max(a.Quantity, 1))
		case domain.UseItem:
			err = e.removeItem(ctx, a.Item, max(a.Quantity, 1))
		case domain.ClearInventory:
			e.clearInventory(ctx)
		case domain.SetFlag:
			e.state.Player.Flags[a.Flag] = a.Value
		case domain.SetVariable:
			err = e.setVariable(a.Name, a.Value)
		default:
			e.logger.Warn("unknown action ignored", "type", a.Kind(), "node", e.state.NodeID)
		}
		if err != nil {
			e.logger.Warn("action failed", "type", a.Kind(), "node", e.state.NodeID, "error", err)
		}
	}
}
