package storyloom_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/testutils"
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SceneDirectory(t *testing.T) {
	ctx := context.Background()
	dir := testutils.SceneDir(t)

	game, err := storyloom.Open(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), game.Name)

	view := game.Render(ctx)
	assert.Equal(t, "start", view.NodeID)
	assert.Equal(t, "Gate", view.Title)
	require.Len(t, view.Choices, 2, "start grants the key, so the tower is visible")
	assert.True(t, game.Engine().HasItem("key"))

	require.NoError(t, game.Choose(ctx, 0))
	assert.Equal(t, "tower", game.Render(ctx).NodeID)
	assert.True(t, game.Render(ctx).Terminal)
}

func TestOpen_StoryFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: Tiny
start: a
nodes:
  a:
    title: A
    choices:
      - text: on
        to: b
  b:
    title: B
`), 0o644))

	game, err := storyloom.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "Tiny", game.Story().Meta.Title)
	require.NoError(t, game.Choose(ctx, 0))
	assert.Equal(t, "b", game.State().NodeID)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := storyloom.Open(ctx, "")
	assert.Error(t, err, "no source, loader or story")

	_, err = storyloom.Open(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOpen_ResumesProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	g := keep()

	first, err := storyloom.Open(ctx, "", storyloom.WithStory(g), storyloom.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, first.Choose(ctx, 0))
	require.NoError(t, first.Engine().AddItem(ctx, "torch", 2))

	second, err := storyloom.Open(ctx, "", storyloom.WithStory(g), storyloom.WithStore(store))
	require.NoError(t, err)
	st := second.State()
	assert.Equal(t, "hall", st.NodeID)
	assert.Equal(t, []string{"gate"}, st.History)
	assert.Equal(t, 2, second.Engine().ItemCount("torch"))
	assert.True(t, second.Render(ctx).CanGoBack)
}

func TestGame_Slots(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	game, err := storyloom.Open(ctx, "",
		storyloom.WithStory(keep()),
		storyloom.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	require.NoError(t, game.Choose(ctx, 0))
	id, err := game.SaveSlot(ctx, "in the hall")
	require.NoError(t, err)

	require.NoError(t, game.Reset(ctx))
	assert.Equal(t, "gate", game.State().NodeID)

	require.NoError(t, game.LoadSlot(ctx, id))
	assert.Equal(t, "hall", game.State().NodeID)

	require.NoError(t, game.Choose(ctx, 0))
	require.NoError(t, game.OverwriteSlot(ctx, id))

	slots, err := game.Slots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Throne", slots[0].Meta.CurrentLocation)
	assert.Equal(t, 100.0, slots[0].Meta.Progress)

	err = game.LoadSlot(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
}

func TestGame_Hooks(t *testing.T) {
	ctx := context.Background()
	var entered []string
	var persisted int
	game, err := storyloom.Open(ctx, "",
		storyloom.WithStory(keep()),
		storyloom.WithLifecycleHooks(domain.LifecycleHooks{
			OnNodeEnter: func(_ context.Context, ev *domain.NodeEvent) { entered = append(entered, ev.To) },
			OnPersist:   func(_ context.Context, _ *domain.PersistEvent) { persisted++ },
		}),
	)
	require.NoError(t, err)
	require.NoError(t, game.Goto(ctx, "throne"))

	assert.Equal(t, []string{"gate", "throne"}, entered)
	assert.Equal(t, 2, persisted, "initial save and one navigation")
}

// flakyStore fails the next failGets reads.
type flakyStore struct {
	*memory.Store
	failGets int
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGets > 0 {
		s.failGets--
		return nil, errors.New("connection reset")
	}
	return s.Store.Get(ctx, key)
}

func TestOpen_UnreadableProgressIsKept(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.NewStore()}
	g := keep()

	first, err := storyloom.Open(ctx, "", storyloom.WithStory(g), storyloom.WithStore(store))
	require.NoError(t, err)
	require.NoError(t, first.Choose(ctx, 0))

	store.failGets = 1
	blip, err := storyloom.Open(ctx, "", storyloom.WithStory(g), storyloom.WithStore(store))
	require.NoError(t, err, "the game stays playable")
	assert.Equal(t, "gate", blip.State().NodeID)

	again, err := storyloom.Open(ctx, "", storyloom.WithStory(g), storyloom.WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, "hall", again.State().NodeID, "the saved position survived the failed read")
	assert.Equal(t, []string{"gate"}, again.State().History)

	_, err = blip.Persistence().LoadProgress(ctx)
	require.NoError(t, err)
	store.failGets = 1
	_, err = blip.Persistence().LoadProgress(ctx)
	assert.ErrorIs(t, err, domain.ErrProgressUnreadable)
}

func keep() *domain.AuthoringGraph {
	return &domain.AuthoringGraph{
		Meta: domain.Meta{Title: "Keep", Start: "gate"},
		Nodes: []domain.AuthoringNode{
			{ID: "gate", Title: "Gate", Choices: []domain.AuthoringChoice{{ID: "g1", Label: "Enter", Target: "hall"}}},
			{ID: "hall", Title: "Hall", Choices: []domain.AuthoringChoice{{ID: "h1", Label: "Approach", Target: "throne"}}},
			{ID: "throne", Title: "Throne"},
		},
	}
}
