package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraversalState(t *testing.T) {
	s := domain.NewTraversalState("start", 0)
	assert.Equal(t, "start", s.NodeID)
	assert.Equal(t, domain.DefaultMaxSlots, s.Player.Inventory.MaxSlots)
	assert.Equal(t, []string{"start"}, s.Player.History)
	assert.False(t, s.CanGoBack())
	assert.False(t, s.CanGoForward())
}

func TestTraversalState_Clone(t *testing.T) {
	s := domain.NewTraversalState("a", 3)
	s.History = []string{"x"}
	s.Player.Flags["door"] = true
	s.Player.Variables["gold"] = 5
	s.Player.Inventory.Items = append(s.Player.Inventory.Items, domain.InventoryItem{ID: "key", Quantity: 1})

	c := s.Clone()
	c.History[0] = "changed"
	c.Player.Flags["door"] = false
	c.Player.Variables["gold"] = 0
	c.Player.Inventory.Items[0].Quantity = 9
	c.Player.History = append(c.Player.History, "b")

	assert.Equal(t, []string{"x"}, s.History)
	assert.True(t, s.Player.Flags["door"])
	assert.Equal(t, 5, s.Player.Variables["gold"])
	assert.Equal(t, 1, s.Player.Inventory.Items[0].Quantity)
	assert.Equal(t, []string{"a"}, s.Player.History)

	var nilState *domain.TraversalState
	assert.Nil(t, nilState.Clone())
}

func TestTraversalState_UniqueVisited(t *testing.T) {
	s := domain.NewTraversalState("a", 0)
	s.Player.History = append(s.Player.History, "b", "a", "c", "b")
	assert.Equal(t, 3, s.UniqueVisited())
}

func TestProgressRecord_RoundTrip(t *testing.T) {
	s := domain.NewTraversalState("a", 5)
	s.NodeID = "c"
	s.History = []string{"a", "b"}
	s.Forward = []string{"d"}
	s.Player.Flags["lit"] = true
	s.Player.Variables["name"] = "ana"
	s.Player.Inventory.Items = []domain.InventoryItem{{ID: "torch", Quantity: 2, AddedAt: 1700000000000}}
	s.Player.History = []string{"a", "b", "c"}
	s.Stats = domain.Stats{NodesVisited: 3, ChoicesMade: 2, PlayTime: 90 * time.Second}

	rec := domain.NewProgressRecord(s)
	assert.Equal(t, domain.FormatVersion, rec.FormatVersion)
	require.NotNil(t, rec.Metadata)
	assert.Equal(t, int64(90), rec.Metadata.PlayTimeSec)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"formatVersion":2`)
	assert.Contains(t, string(data), `"playerState"`)

	var back domain.ProgressRecord
	require.NoError(t, json.Unmarshal(data, &back))
	got := back.State()

	assert.Equal(t, s.NodeID, got.NodeID)
	assert.Equal(t, s.History, got.History)
	assert.Equal(t, s.Forward, got.Forward)
	assert.Equal(t, s.Player.Inventory, got.Player.Inventory)
	assert.Equal(t, s.Player.Flags, got.Player.Flags)
	assert.Equal(t, "ana", got.Player.Variables["name"])
	assert.Equal(t, s.Player.History, got.Player.History)
	assert.Equal(t, s.Stats, got.Stats)
}

func TestPersistError(t *testing.T) {
	cause := assert.AnError
	err := error(&domain.PersistError{Op: "set", Key: "k", Err: cause})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `set "k"`)
}
