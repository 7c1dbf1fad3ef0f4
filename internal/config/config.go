// Package config holds the process configuration. A Config is a plain value
// loaded once from the environment, optionally overridden by CLI flags, and
// validated before any component is built from it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/storyloom/pkg/persistence/middleware"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config is the full set of tunables.
type Config struct {
	MaxSlots   int    `env:"STORYLOOM_MAX_SLOTS" envDefault:"20" validate:"gte=1,lte=10000"`
	StorageKey string `env:"STORYLOOM_STORAGE_KEY" envDefault:"storyloom.progress" validate:"required"`

	Backend       string `env:"STORYLOOM_BACKEND" envDefault:"memory" validate:"oneof=memory file redis sqlite badger"`
	DataDir       string `env:"STORYLOOM_DATA_DIR" envDefault:".storyloom" validate:"required_if=Backend file,required_if=Backend badger"`
	RedisAddr     string `env:"STORYLOOM_REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=Backend redis"`
	RedisPassword string `env:"STORYLOOM_REDIS_PASSWORD"`
	RedisDB       int    `env:"STORYLOOM_REDIS_DB" envDefault:"0" validate:"gte=0,lte=15"`
	RedisPrefix   string `env:"STORYLOOM_REDIS_PREFIX" envDefault:"storyloom:"`
	SQLitePath    string `env:"STORYLOOM_SQLITE_PATH"`

	EncryptionKey          string   `env:"STORYLOOM_ENCRYPTION_KEY" validate:"omitempty,aeskey"`
	EncryptionFallbackKeys []string `env:"STORYLOOM_ENCRYPTION_FALLBACK_KEYS" envSeparator:"," validate:"dive,aeskey"`
	RedactKeys             []string `env:"STORYLOOM_REDACT_KEYS" envSeparator:","`

	AutoScrollRatio float64 `env:"STORYLOOM_AUTO_SCROLL_RATIO" envDefault:"0.33" validate:"gte=0,lte=1"`
	LogLevel        string  `env:"STORYLOOM_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat       string  `env:"STORYLOOM_LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	HTTPAddr        string  `env:"STORYLOOM_HTTP_ADDR" envDefault:":8080" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("aeskey", func(fl validator.FieldLevel) bool {
		_, err := middleware.ParseKey(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no
// environment consulted.
func Default() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), redacted(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func redacted(fe validator.FieldError) any {
	switch fe.StructField() {
	case "EncryptionKey", "EncryptionFallbackKeys", "RedisPassword":
		return "***"
	}
	return fe.Value()
}

// SlogLevel maps LogLevel to a slog level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SQLiteFile is SQLitePath, or saves.db inside DataDir.
func (c Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "saves.db")
}
