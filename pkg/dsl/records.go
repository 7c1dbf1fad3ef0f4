package dsl

import "github.com/aretw0/storyloom/pkg/domain"

// Condition records for ChoiceBuilder.When.

func HasItem(item string, quantity int) map[string]any {
	r := map[string]any{"type": string(domain.CondHasItem), "item": item}
	if quantity > 1 {
		r["quantity"] = quantity
	}
	return r
}

func MissingItem(item string) map[string]any {
	return map[string]any{"type": string(domain.CondMissingItem), "item": item}
}

func InventoryEmpty() map[string]any {
	return map[string]any{"type": string(domain.CondInventoryEmpty)}
}

func Flag(flag string, value bool) map[string]any {
	return map[string]any{"type": string(domain.CondFlag), "flag": flag, "value": value}
}

func VariableEquals(name string, value any) map[string]any {
	return map[string]any{"type": string(domain.CondVariableEquals), "name": name, "value": value}
}

func Visited(node string) map[string]any {
	return map[string]any{"type": string(domain.CondVisited), "node": node}
}

// Action records for SceneBuilder.OnEnter and ChoiceBuilder.Do.

func AddItem(item string, quantity int) map[string]any {
	return map[string]any{"type": string(domain.ActAddItem), "item": item, "quantity": max(quantity, 1)}
}

func UseItem(item string, quantity int) map[string]any {
	return map[string]any{"type": string(domain.ActUseItem), "item": item, "quantity": max(quantity, 1)}
}

func ClearInventory() map[string]any {
	return map[string]any{"type": string(domain.ActClearInventory)}
}

func SetFlag(flag string, value bool) map[string]any {
	return map[string]any{"type": string(domain.ActSetFlag), "flag": flag, "value": value}
}

func SetVariable(name string, value any) map[string]any {
	return map[string]any{"type": string(domain.ActSetVariable), "name": name, "value": value}
}
