package config_test

import (
	"context"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storyloom/internal/config"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.MaxSlots)
	assert.Equal(t, "storyloom.progress", cfg.StorageKey)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 0.33, cfg.AutoScrollRatio)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, filepath.Join(".storyloom", "saves.db"), cfg.SQLiteFile())
	assert.Equal(t, cfg, config.Default())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STORYLOOM_MAX_SLOTS", "5")
	t.Setenv("STORYLOOM_BACKEND", "sqlite")
	t.Setenv("STORYLOOM_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("STORYLOOM_LOG_LEVEL", "debug")
	t.Setenv("STORYLOOM_REDACT_KEYS", "secret,token")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxSlots)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLiteFile())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"secret", "token"}, cfg.RedactKeys)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("STORYLOOM_MAX_SLOTS", "many")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"zero slots", func(c *config.Config) { c.MaxSlots = 0 }, "MaxSlots"},
		{"unknown backend", func(c *config.Config) { c.Backend = "mongo" }, "Backend"},
		{"redis without addr", func(c *config.Config) { c.Backend = "redis"; c.RedisAddr = "" }, "RedisAddr"},
		{"ratio above one", func(c *config.Config) { c.AutoScrollRatio = 1.5 }, "AutoScrollRatio"},
		{"bad key", func(c *config.Config) { c.EncryptionKey = "short" }, "EncryptionKey"},
		{"bad fallback key", func(c *config.Config) { c.EncryptionFallbackKeys = []string{"nope"} }, "EncryptionFallbackKeys"},
		{"log level", func(c *config.Config) { c.LogLevel = "trace" }, "LogLevel"},
		{"log format", func(c *config.Config) { c.LogFormat = "xml" }, "LogFormat"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}

	cfg := config.Default()
	cfg.EncryptionKey = "short"
	assert.NotContains(t, cfg.Validate().Error(), "short", "secrets are not echoed")

	cfg = config.Default()
	cfg.EncryptionKey = testKey
	assert.NoError(t, cfg.Validate())
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	for _, backend := range []string{"memory", "file", "sqlite", "badger", "redis"} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Backend = backend
			cfg.DataDir = filepath.Join(dir, backend)
			cfg.RedisAddr = mr.Addr()

			b, err := cfg.OpenBackend(ctx)
			require.NoError(t, err)
			defer b.Close()

			require.NoError(t, b.Store.Set(ctx, "k", []byte("v")))
			got, err := b.Store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))
			assert.Equal(t, backend == "redis", b.Locker != nil)
		})
	}
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "redis"
	cfg.RedisAddr = "127.0.0.1:1"
	_, err := cfg.OpenBackend(context.Background())
	assert.Error(t, err)
}

func TestOpenBackend_Middleware(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Backend = "file"
	cfg.DataDir = dir
	cfg.EncryptionKey = testKey
	cfg.RedactKeys = []string{"password"}

	b, err := cfg.OpenBackend(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Store.Set(ctx, "k", []byte(`{"password":"hunter2","nodeId":"a"}`)))

	got, err := b.Store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"password":"***","nodeId":"a"}`, string(got))

	plain := config.Default()
	plain.Backend = "file"
	plain.DataDir = dir
	raw, err := plain.OpenBackend(ctx)
	require.NoError(t, err)
	onDisk, err := raw.Store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(onDisk), "__encrypted__"))
	assert.NotContains(t, string(onDisk), "nodeId")

	_, err = raw.Store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
