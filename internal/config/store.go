package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/aretw0/storyloom/pkg/adapters/badger"
	"github.com/aretw0/storyloom/pkg/adapters/file"
	"github.com/aretw0/storyloom/pkg/adapters/memory"
	redisadapter "github.com/aretw0/storyloom/pkg/adapters/redis"
	"github.com/aretw0/storyloom/pkg/adapters/sqlite"
	"github.com/aretw0/storyloom/pkg/persistence/middleware"
	"github.com/aretw0/storyloom/pkg/ports"
)

// Backend is an opened storage backend.
type Backend struct {
	Store ports.KVStore
	// Locker is set for backends shared between processes (redis).
	Locker ports.DistributedLocker
	closers []func() error
}

// Close releases every resource held by the backend.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBackend builds the configured store, wrapped in redaction and
// encryption middleware when those are configured.
func (c Config) OpenBackend(ctx context.Context) (*Backend, error) {
	b := &Backend{}

	switch c.Backend {
	case "", "memory":
		b.Store = memory.NewStore()
	case "file":
		b.Store = file.New(filepath.Join(c.DataDir, "saves"))
	case "redis":
		rs := redisadapter.New(c.RedisAddr, c.RedisPassword, c.RedisDB, redisadapter.WithPrefix(c.RedisPrefix))
		if err := rs.Client().Ping(ctx).Err(); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("connect redis %s: %w", c.RedisAddr, err)
		}
		b.Store = rs
		b.Locker = redisadapter.NewLocker(rs.Client(), c.RedisPrefix)
		b.closers = append(b.closers, rs.Close)
	case "sqlite":
		ss, err := sqlite.Open(c.SQLiteFile())
		if err != nil {
			return nil, err
		}
		b.Store = ss
		b.closers = append(b.closers, ss.Close)
	case "badger":
		bs, err := badger.Open(badger.Config{Path: filepath.Join(c.DataDir, "badger"), SyncWrites: true})
		if err != nil {
			return nil, err
		}
		b.Store = bs
		b.closers = append(b.closers, bs.Close)
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}

	var mws []middleware.Middleware
	if len(c.RedactKeys) > 0 {
		mws = append(mws, middleware.NewRedactionMiddleware(c.RedactKeys))
	}
	if c.EncryptionKey != "" {
		enc, err := c.encryption()
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

func (c Config) encryption() (middleware.EncryptionConfig, error) {
	active, err := middleware.ParseKey(c.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, fmt.Errorf("encryption key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, s := range c.EncryptionFallbackKeys {
		k, err := middleware.ParseKey(s)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("fallback key %d: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, nil
}
