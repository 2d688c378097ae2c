// internal/config/load.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file and applies FINCH_* environment overrides.
// It does not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML and applies environment overrides.
// Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}

	if len(bytes.TrimSpace(raw)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose env variable is set.
// Unset variables leave the YAML value in place.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}
