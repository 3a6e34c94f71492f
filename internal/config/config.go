package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/starwire/internal/logging"
	"github.com/danmuck/starwire/internal/protocol/frame"
	"github.com/danmuck/starwire/internal/protocol/schema"
)

const (
	OutputJSON   = "json"
	OutputPretty = "pretty"
)

// Config drives the starwirectl tool.
type Config struct {
	LogLevel        string
	MaxPayloadBytes uint64
	Compressed      bool
	DefaultSchema   string
	Output          string
}

type fileConfig struct {
	LogLevel        string `toml:"log_level"`
	MaxPayloadBytes int64  `toml:"max_payload_bytes"`
	Compressed      bool   `toml:"compressed"`
	DefaultSchema   string `toml:"default_schema"`
	Output          string `toml:"output"`
}

func Default() Config {
	return Config{
		LogLevel:        "info",
		MaxPayloadBytes: frame.DefaultLimits().MaxPayloadBytes,
		Output:          OutputJSON,
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_payload_bytes") {
		if raw.MaxPayloadBytes <= 0 {
			return Config{}, fmt.Errorf("parse max_payload_bytes: must be positive, got %d", raw.MaxPayloadBytes)
		}
		cfg.MaxPayloadBytes = uint64(raw.MaxPayloadBytes)
	}
	if meta.IsDefined("compressed") {
		cfg.Compressed = raw.Compressed
	}
	if meta.IsDefined("default_schema") {
		cfg.DefaultSchema = strings.TrimSpace(raw.DefaultSchema)
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.ToLower(strings.TrimSpace(raw.Output))
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("config invalid log_level %q", cfg.LogLevel)
	}
	if cfg.MaxPayloadBytes == 0 {
		return fmt.Errorf("config missing max_payload_bytes")
	}
	if cfg.DefaultSchema != "" {
		if _, ok := schema.Lookup(cfg.DefaultSchema); !ok {
			return fmt.Errorf("config unknown default_schema %q", cfg.DefaultSchema)
		}
	}
	switch cfg.Output {
	case OutputJSON, OutputPretty:
	default:
		return fmt.Errorf("config invalid output %q", cfg.Output)
	}
	return nil
}

// Limits returns the frame limits derived from cfg.
func (c Config) Limits() frame.Limits {
	return frame.Limits{MaxPayloadBytes: c.MaxPayloadBytes}
}
