package domain

import "time"

// FormatVersion is the current on-disk progress format.
const FormatVersion = 2

// ProgressMetadata carries optional statistics alongside a progress record.
type ProgressMetadata struct {
	NodesVisited int   `json:"nodesVisited"`
	ChoicesMade  int   `json:"choicesMade"`
	Version      int   `json:"version"`
	PlayTimeSec  int64 `json:"playTime,omitempty"`
}

// ProgressRecord is the versioned persisted form of a TraversalState.
type ProgressRecord struct {
	FormatVersion int               `json:"formatVersion"`
	NodeID        string            `json:"nodeId"`
	History       []string          `json:"history"`
	Forward       []string          `json:"forward"`
	PlayerState   PlayerState       `json:"playerState"`
	Metadata      *ProgressMetadata `json:"metadata,omitempty"`
}

// LegacyProgress is the pre-versioning record: flat position fields and an
// optional inventory, without a playerState wrapper.
type LegacyProgress struct {
	Title     string     `json:"title"`
	NodeID    string     `json:"nodeId"`
	History   []string   `json:"history"`
	Forward   []string   `json:"forward"`
	Inventory *Inventory `json:"inventory,omitempty"`
}

// NewProgressRecord snapshots a traversal state into the current format.
func NewProgressRecord(s *TraversalState) *ProgressRecord {
	c := s.Clone()
	return &ProgressRecord{
		FormatVersion: FormatVersion,
		NodeID:        c.NodeID,
		History:       c.History,
		Forward:       c.Forward,
		PlayerState:   c.Player,
		Metadata: &ProgressMetadata{
			NodesVisited: c.Stats.NodesVisited,
			ChoicesMade:  c.Stats.ChoicesMade,
			Version:      FormatVersion,
			PlayTimeSec:  int64(c.Stats.PlayTime / time.Second),
		},
	}
}

// State expands the record back into a traversal state.
func (r *ProgressRecord) State() *TraversalState {
	s := &TraversalState{
		NodeID:  r.NodeID,
		History: r.History,
		Forward: r.Forward,
		Player:  r.PlayerState,
	}
	if r.Metadata != nil {
		s.Stats = Stats{
			NodesVisited: r.Metadata.NodesVisited,
			ChoicesMade:  r.Metadata.ChoicesMade,
			PlayTime:     time.Duration(r.Metadata.PlayTimeSec) * time.Second,
		}
	}
	return s.Clone()
}
