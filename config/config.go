// Package config loads firehose settings from YAML, .env and the environment
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/firehose/flow"
	"github.com/lixenwraith/firehose/logging"
)

// Config is the full application configuration
type Config struct {
	Engine   flow.Config `yaml:"engine"`
	Terminal Terminal    `yaml:"terminal"`
	Server   Server      `yaml:"server"`
	Feed     Feed        `yaml:"feed"`
	Log      Log         `yaml:"log"`
}

// Terminal configures the terminal host
type Terminal struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	Sound      bool    `yaml:"sound"`
}

// Server configures the HTTP host
type Server struct {
	Addr           string   `yaml:"addr"`
	APIKey         string   `yaml:"api_key"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Feed configures the entry store and poller
type Feed struct {
	DatabaseURL  string        `yaml:"database_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	LowWatermark int           `yaml:"low_watermark"`
	// Replay delivers every stored entry, otherwise polling starts after the newest entry
	Replay bool `yaml:"replay"`
}

// Log configures logging
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	ShowCaller bool   `yaml:"show_caller"`
}

// overrides are environment values applied over the file, empty values are ignored
type overrides struct {
	DatabaseURL string `env:"FIREHOSE_DATABASE_URL"`
	APIKey      string `env:"FIREHOSE_API_KEY"`
	LogLevel    string `env:"FIREHOSE_LOG_LEVEL"`
	Addr        string `env:"FIREHOSE_ADDR"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Engine: flow.DefaultConfig(),
		Terminal: Terminal{
			CellWidth:  10,
			CellHeight: 20,
		},
		Server: Server{
			Addr: ":8080",
		},
		Feed: Feed{
			DatabaseURL:  "sqlite://firehose.db",
			PollInterval: 5 * time.Second,
			BatchSize:    50,
			LowWatermark: 200,
		},
		Log: Log{
			Level: "info",
			File:  "logs/firehose.log",
		},
	}
}

// Load reads path (optional), then .env files (missing files are skipped), then the environment
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := Decode(f, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, name := range envFiles {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}

	var ov overrides
	if err := env.Load(&ov, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg.apply(ov)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Engine = cfg.Engine.Normalized()
	return &cfg, nil
}

// Decode strictly unmarshals YAML into cfg, keeping existing values for absent keys
func Decode(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func (c *Config) apply(ov overrides) {
	if ov.DatabaseURL != "" {
		c.Feed.DatabaseURL = ov.DatabaseURL
	}
	if ov.APIKey != "" {
		c.Server.APIKey = ov.APIKey
	}
	if ov.LogLevel != "" {
		c.Log.Level = ov.LogLevel
	}
	if ov.Addr != "" {
		c.Server.Addr = ov.Addr
	}
}

// Validate checks values that cannot be clamped
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Feed.PollInterval <= 0 {
		return fmt.Errorf("feed.poll_interval must be positive, got %s", c.Feed.PollInterval)
	}
	if c.Feed.BatchSize <= 0 {
		return fmt.Errorf("feed.batch_size must be positive, got %d", c.Feed.BatchSize)
	}
	if c.Feed.LowWatermark < 0 {
		return fmt.Errorf("feed.low_watermark must not be negative, got %d", c.Feed.LowWatermark)
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return errors.New("terminal cell size must be positive")
	}
	return nil
}
