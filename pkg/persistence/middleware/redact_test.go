package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/storyloom/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	// Mask keys containing "password" or "email"
	store := middleware.NewRedactionMiddleware([]string{"password", "email"})(underlyingStore)
	ctx := context.Background()

	payload := []byte(`{"nodeId":"start","playerState":{"variables":{` +
		`"name":"jdoe","player_email":"j@doe.dev","nested":{"password":"secret123"}},"history":["start"]}}`)
	require.NoError(t, store.Set(ctx, "progress", payload))

	stored, err := underlyingStore.Get(ctx, "progress")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(stored, &doc))
	vars := doc["playerState"].(map[string]any)["variables"].(map[string]any)
	assert.Equal(t, "jdoe", vars["name"])
	assert.Equal(t, middleware.Mask, vars["player_email"])
	assert.Equal(t, middleware.Mask, vars["nested"].(map[string]any)["password"])
	assert.Equal(t, "start", doc["nodeId"])
}

func TestRedactionMiddleware_PassThrough(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewRedactionMiddleware([]string{"password"})(underlyingStore)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "blob", []byte("not json")))
	got, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, "not json", string(got))
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlyingStore,
		middleware.NewRedactionMiddleware([]string{"secret"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte(`{"secret":"x","open":"y"}`)))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"secret":"***","open":"y"}`, string(got), "redacted before encryption")
}
