package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/storyloom/pkg/domain"
)

// AddItem adds quantity of item to the inventory. A new item id needs a free
// slot; adding to an item already carried never fails on capacity.
func (e *Engine) AddItem(ctx context.Context, item string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.addItem(ctx, item, quantity); err != nil {
		e.logger.Warn("add item rejected", "item", item, "quantity", quantity, "error", err)
		return err
	}
	return e.persist(ctx)
}

// RemoveItem takes quantity of item out of the inventory. Reaching zero or
// less removes the entry.
func (e *Engine) RemoveItem(ctx context.Context, item string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.removeItem(ctx, item, quantity); err != nil {
		e.logger.Warn("remove item rejected", "item", item, "quantity", quantity, "error", err)
		return err
	}
	return e.persist(ctx)
}

// ClearInventory drops every item.
func (e *Engine) ClearInventory(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearInventory(ctx)
	return e.persist(ctx)
}

// HasItem reports whether item is carried.
func (e *Engine) HasItem(item string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return itemCount(&e.state.Player.Inventory, item) > 0
}

// ItemCount returns the carried quantity of item, zero when absent.
func (e *Engine) ItemCount(item string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return itemCount(&e.state.Player.Inventory, item)
}

// Inventory returns a copy of the carried items in acquisition order.
func (e *Engine) Inventory() []domain.InventoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.InventoryItem{}, e.state.Player.Inventory.Items...)
}

func (e *Engine) addItem(ctx context.Context, item string, quantity int) error {
	if strings.TrimSpace(item) == "" {
		return domain.ErrInvalidItem
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	inv := &e.state.Player.Inventory
	if i := itemIndex(inv, item); i >= 0 {
		inv.Items[i].Quantity += quantity
		e.emitInventory(ctx, item, quantity)
		return nil
	}
	if len(inv.Items) >= inv.MaxSlots {
		return fmt.Errorf("%w: %d/%d slots used", domain.ErrInventoryFull, len(inv.Items), inv.MaxSlots)
	}
	inv.Items = append(inv.Items, domain.InventoryItem{
		ID:       item,
		Quantity: quantity,
		AddedAt:  e.now().UnixMilli(),
	})
	e.emitInventory(ctx, item, quantity)
	return nil
}

func (e *Engine) removeItem(ctx context.Context, item string, quantity int) error {
	if strings.TrimSpace(item) == "" {
		return domain.ErrInvalidItem
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	inv := &e.state.Player.Inventory
	i := itemIndex(inv, item)
	if i < 0 {
		return fmt.Errorf("%w: %q", domain.ErrItemNotFound, item)
	}

	held := inv.Items[i].Quantity
	if held <= quantity {
		inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
		e.emitInventory(ctx, item, -held)
		return nil
	}
	inv.Items[i].Quantity = held - quantity
	e.emitInventory(ctx, item, -quantity)
	return nil
}

func (e *Engine) clearInventory(ctx context.Context) {
	for _, it := range e.state.Player.Inventory.Items {
		e.emitInventory(ctx, it.ID, -it.Quantity)
	}
	e.state.Player.Inventory.Items = []domain.InventoryItem{}
}

func itemIndex(inv *domain.Inventory, item string) int {
	for i, it := range inv.Items {
		if it.ID == item {
			return i
		}
	}
	return -1
}

func itemCount(inv *domain.Inventory, item string) int {
	if i := itemIndex(inv, item); i >= 0 {
		return inv.Items[i].Quantity
	}
	return 0
}
