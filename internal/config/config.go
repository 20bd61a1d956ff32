package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/eaglerock1337/tomeclicker-sub000/internal/engine"
	"github.com/eaglerock1337/tomeclicker-sub000/internal/logger"
)

// Save backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is read from TOME_* environment variables.
type Config struct {
	// Storage
	DBPath        string `envconfig:"TOME_DB_PATH"`
	SaveBackend   string `envconfig:"TOME_SAVE_BACKEND" default:"sqlite" validate:"oneof=sqlite file memory redis"`
	SaveDir       string `envconfig:"TOME_SAVE_DIR" validate:"required_if=SaveBackend file"`
	RedisAddr     string `envconfig:"TOME_REDIS_ADDR" validate:"required_if=SaveBackend redis"`
	RedisPassword string `envconfig:"TOME_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"TOME_REDIS_DB" default:"0" validate:"gte=0"`

	// Logging
	LogLevel    string `envconfig:"TOME_LOG_LEVEL" default:"warn"`
	LogEncoding string `envconfig:"TOME_LOG_ENCODING" default:"console" validate:"oneof=json console"`
	LogOutput   string `envconfig:"TOME_LOG_OUTPUT" default:"stderr"`

	// Game loop
	TickInterval     time.Duration `envconfig:"TOME_TICK_INTERVAL" default:"1s" validate:"gt=0"`
	AutosaveInterval time.Duration `envconfig:"TOME_AUTOSAVE_INTERVAL" default:"30s" validate:"gt=0"`
	OfflineCatchUp   int           `envconfig:"TOME_OFFLINE_CATCHUP" default:"1" validate:"gte=1"`
	HistoryKeep      int           `envconfig:"TOME_HISTORY_KEEP" default:"50" validate:"gte=1"`

	// Content overrides; empty means the embedded catalogs.
	UpgradeCatalog string `envconfig:"TOME_UPGRADE_CATALOG" validate:"omitempty,file"`
	StoryCatalog   string `envconfig:"TOME_STORY_CATALOG" validate:"omitempty,file"`

	MetricsAddr string `envconfig:"TOME_METRICS_ADDR"`
	PlayerName  string `envconfig:"TOME_PLAYER_NAME" default:"A Stranger" validate:"required"`
}

var validate = validator.New()

// Load reads envFiles (default .env) if present, then the environment.
// A missing env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.PlayerName == "" {
		cfg.PlayerName = engine.DefaultPlayerName
	}
	return &cfg, nil
}

// Logger returns the logger settings.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Encoding:   c.LogEncoding,
		OutputPath: c.LogOutput,
	}
}
