package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventInventory EventType = "inventory"
	EventPersist   EventType = "persist"
)

// NavigationKind tells how a node was entered.
type NavigationKind string

const (
	NavSet     NavigationKind = "set"
	NavBack    NavigationKind = "back"
	NavForward NavigationKind = "forward"
	NavReset   NavigationKind = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent is emitted after the engine moves to a node.
type NodeEvent struct {
	EventBase
	From string         `json:"from"`
	To   string         `json:"to"`
	Via  NavigationKind `json:"via"`
}

// InventoryEvent is emitted after a successful inventory mutation.
type InventoryEvent struct {
	EventBase
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta"`
}

// PersistEvent is emitted after every storage write attempt.
type PersistEvent struct {
	EventBase
	Op       string        `json:"op"`
	Key      string        `json:"key"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnInventory func(context.Context, *InventoryEvent)
	OnPersist   func(context.Context, *PersistEvent)
}
