package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no path is given and TASKBOARD_CONFIG is unset.
const DefaultPath = "taskboard.yaml"

// Config holds server, store and logging settings
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // listen address
}

type StoreConfig struct {
	Path           string        `yaml:"path"`            // SQLite file
	LogLevel       string        `yaml:"log_level"`       // gorm logger: silent, error, warn, info
	AdapterTimeout time.Duration `yaml:"adapter_timeout"` // per mutation bound
}

// RedisConfig enables the Redis change feed when Addr is set. Without it,
// change notification stays inside one process.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8008"},
		Store: StoreConfig{
			Path:           "task-board.db",
			LogLevel:       "warn",
			AdapterTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{ChannelPrefix: "taskboard:changes:"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path means TASKBOARD_CONFIG or
// DefaultPath; only an explicitly named file is required to exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("TASKBOARD_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("TASKBOARD_ADDR", c.Server.Addr)
	c.Store.Path = getEnv("TASKBOARD_DB", c.Store.Path)
	c.Redis.Addr = getEnv("TASKBOARD_REDIS_ADDR", c.Redis.Addr)
	c.Log.Level = getEnv("TASKBOARD_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("TASKBOARD_LOG_FORMAT", c.Log.Format)
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Store.AdapterTimeout < 0 {
		return fmt.Errorf("store.adapter_timeout must not be negative, got %s", c.Store.AdapterTimeout)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
