package domain

import "time"

// DefaultMaxSlots is the inventory capacity used when none is configured.
const DefaultMaxSlots = 20

// InventoryItem is one stack of an item. Quantity is always positive;
// entries whose quantity would drop to zero are removed instead.
type InventoryItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	// AddedAt is a unix timestamp in milliseconds.
	AddedAt int64 `json:"addedAt,omitempty"`
}

// Inventory is an ordered, capacity-bounded list of item stacks.
type Inventory struct {
	Items    []InventoryItem `json:"items"`
	MaxSlots int             `json:"maxSlots"`
}

// PlayerState holds the player-owned data that is independent of position.
type PlayerState struct {
	Inventory Inventory       `json:"inventory"`
	Flags     map[string]bool `json:"flags"`
	// Variables hold string or numeric values only.
	Variables map[string]any `json:"variables"`
	// History is the append-only log of entered nodes, used for
	// "visited" conditions and progress, not for back navigation.
	History []string `json:"history"`
}

// Stats are counters accumulated over a play session.
type Stats struct {
	NodesVisited int           `json:"nodesVisited"`
	ChoicesMade  int           `json:"choicesMade"`
	PlayTime     time.Duration `json:"playTime"`
}

// TraversalState is the mutable session data of one player.
type TraversalState struct {
	NodeID  string      `json:"nodeId"`
	History []string    `json:"history"`
	Forward []string    `json:"forward"`
	Player  PlayerState `json:"playerState"`
	Stats   Stats       `json:"stats"`
}

// NewTraversalState creates a clean state positioned at start.
func NewTraversalState(start string, maxSlots int) *TraversalState {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &TraversalState{
		NodeID:  start,
		History: []string{},
		Forward: []string{},
		Player: PlayerState{
			Inventory: Inventory{Items: []InventoryItem{}, MaxSlots: maxSlots},
			Flags:     make(map[string]bool),
			Variables: make(map[string]any),
			History:   []string{start},
		},
	}
}

// CanGoBack reports whether the back stack is non-empty.
func (s *TraversalState) CanGoBack() bool { return len(s.History) > 0 }

// CanGoForward reports whether the forward stack is non-empty.
func (s *TraversalState) CanGoForward() bool { return len(s.Forward) > 0 }

// Clone returns a deep copy so callers cannot mutate the original by reference.
func (s *TraversalState) Clone() *TraversalState {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]string{}, s.History...)
	c.Forward = append([]string{}, s.Forward...)
	c.Player.Inventory.Items = append([]InventoryItem{}, s.Player.Inventory.Items...)
	c.Player.History = append([]string{}, s.Player.History...)
	c.Player.Flags = make(map[string]bool, len(s.Player.Flags))
	for k, v := range s.Player.Flags {
		c.Player.Flags[k] = v
	}
	c.Player.Variables = make(map[string]any, len(s.Player.Variables))
	for k, v := range s.Player.Variables {
		c.Player.Variables[k] = v
	}
	return &c
}

// UniqueVisited counts distinct node ids in the visit log.
func (s *TraversalState) UniqueVisited() int {
	seen := make(map[string]struct{}, len(s.Player.History))
	for _, id := range s.Player.History {
		seen[id] = struct{}{}
	}
	return len(seen)
}
