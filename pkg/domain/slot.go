package domain

import "time"

// SlotMeta describes a save slot without loading its payload.
type SlotMeta struct {
	Created         time.Time `json:"created"`
	Modified        time.Time `json:"modified"`
	PlayTime        int64     `json:"playTime"` // seconds
	CurrentLocation string    `json:"currentLocation"`
	Progress        float64   `json:"progress"` // percentage of nodes visited
	Version         int       `json:"version"`
}

// SlotEntry is the value stored per slot id in the slot index.
type SlotEntry struct {
	Name string   `json:"name"`
	Meta SlotMeta `json:"meta"`
}

// SlotIndex maps slot ids to their metadata.
type SlotIndex map[string]SlotEntry

// Slot is a listed save slot.
type Slot struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Meta SlotMeta `json:"meta"`
}
