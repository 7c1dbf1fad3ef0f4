package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a key does not exist.
var ErrNotFound = errors.New("not found")

// ErrProgressUnreadable is returned when saved progress exists but could not
// be read or decoded.
var ErrProgressUnreadable = errors.New("saved progress unreadable")

// ErrSlotNotFound is returned when a save slot id is not in the slot index.
var ErrSlotNotFound = errors.New("slot not found")

// Engine-operation failures. These are expected, recoverable outcomes:
// the engine state is unchanged when one of them is returned.
var (
	ErrUnknownNode       = errors.New("unknown node")
	ErrNoHistory         = errors.New("no history to go back to")
	ErrNoForward         = errors.New("nothing to go forward to")
	ErrStaleHistory      = errors.New("history references a node missing from the graph")
	ErrInvalidItem       = errors.New("invalid item id")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInventoryFull     = errors.New("inventory is full")
	ErrItemNotFound      = errors.New("item not in inventory")
	ErrInvalidVariable   = errors.New("variables must be strings or numbers")
	ErrChoiceUnavailable = errors.New("choice is not available")
)

// ErrPersistence marks failures of the storage layer.
var ErrPersistence = errors.New("persistence failure")

// PersistError reports a storage failure for a given operation and key.
// It matches both ErrPersistence and the underlying cause with errors.Is.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
