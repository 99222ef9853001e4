// Package config loads the Quest Guild configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/questguild/questguild/internal/advisor"
	"github.com/questguild/questguild/internal/challenge"
	"github.com/questguild/questguild/internal/model"
	"github.com/questguild/questguild/internal/notify"
	"github.com/questguild/questguild/internal/storage/redis"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Storage       StorageConfig   `yaml:"storage"`
	Scores        ScoresConfig    `yaml:"scores"`
	Advisor       advisor.Config  `yaml:"advisor"`
	Notifications notify.Config   `yaml:"notifications"`
	Logging       LoggingConfig   `yaml:"logging"`
	Challenge     ChallengeConfig `yaml:"challenge"`
}

// StorageConfig selects where heroes and quests are kept.
type StorageConfig struct {
	Backend    string       `yaml:"backend"`
	SQLitePath string       `yaml:"sqlite_path"`
	Redis      redis.Config `yaml:"redis"`
}

type ScoresConfig struct {
	// Path of the score history file. Empty means the default location.
	Path string `yaml:"path"`
}

// LoggingConfig controls the zap logger. The terminal belongs to the UI, so
// logs only go to a file; an empty File disables logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ChallengeConfig struct {
	DefaultTargetLevel int `yaml:"default_target_level"`
	// Seed makes piece order reproducible; 0 uses a random source.
	Seed      uint64 `yaml:"seed"`
	AltScreen bool   `yaml:"alt_screen"`
}

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(base, "questguild"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			SQLitePath: filepath.Join(dir, "questguild.db"),
			Redis:      redis.DefaultConfig(),
		},
		Advisor:       advisor.DefaultConfig(),
		Notifications: notify.DefaultConfig(),
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dir, "questguild.log"),
		},
		Challenge: ChallengeConfig{
			DefaultTargetLevel: model.DefaultRequiredLevel,
			AltScreen:          true,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if backend := os.Getenv("QUESTGUILD_STORAGE"); backend != "" {
		c.Storage.Backend = backend
	}
	if path := os.Getenv("QUESTGUILD_DB"); path != "" {
		c.Storage.SQLitePath = path
	}
	if url := os.Getenv("QUESTGUILD_REDIS_URL"); url != "" {
		c.Storage.Redis.URL = url
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Advisor.APIKey = key
		c.Advisor.Provider = advisor.ProviderGemini
	}
	if level := os.Getenv("QUESTGUILD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if seed := os.Getenv("QUESTGUILD_SEED"); seed != "" {
		if v, err := strconv.ParseUint(seed, 10, 64); err == nil {
			c.Challenge.Seed = v
		}
	}
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Storage.Redis.URL == "" {
			return fmt.Errorf("storage.redis.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	level := c.Challenge.DefaultTargetLevel
	if level < challenge.MinTargetLevel || level > challenge.MaxTargetLevel {
		return fmt.Errorf("%w: challenge.default_target_level %d", model.ErrInvalidGameTarget, level)
	}
	return nil
}
