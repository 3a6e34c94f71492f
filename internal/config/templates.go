package config

import (
	"fmt"
	"os"

	gotoml "github.com/pelletier/go-toml/v2"
)

// templateConfig is the file layout written by init, one comment per key.
type templateConfig struct {
	LogLevel        string `toml:"log_level" comment:"trace, debug, info, warn, error or off. STARWIRE_LOG_LEVEL overrides it."`
	MaxPayloadBytes int64  `toml:"max_payload_bytes" comment:"Largest envelope payload unwrap accepts, in bytes."`
	Compressed      bool   `toml:"compressed" comment:"Mark envelope payloads as compressed unless --compressed is given."`
	DefaultSchema   string `toml:"default_schema" comment:"Message used when --schema is omitted. See starwirectl list."`
	Output          string `toml:"output" comment:"json for one line per value, pretty for indented output."`
}

// Template renders the default config file.
func Template() (string, error) {
	def := Default()
	b, err := gotoml.Marshal(templateConfig{
		LogLevel:        def.LogLevel,
		MaxPayloadBytes: int64(def.MaxPayloadBytes),
		Compressed:      def.Compressed,
		DefaultSchema:   "ConnectFailure",
		Output:          def.Output,
	})
	if err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return string(b), nil
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	body, err := Template()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o600)
}
