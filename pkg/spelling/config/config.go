// Package config loads the spelling subsystem's startup configuration:
// the fixed algorithm widths and the set of prefix-group aliases to
// register before the database starts serving. Grounded on the
// teacher's pkg/config/config.go: a plain struct, yaml.v3 unmarshal,
// then SPELLD_* env overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GroupAlias names a prefix to enable and, optionally, an enabled
// prefix whose group it shares (see group.Registry.Enable). Load only
// parses the list; no code in this module enables the listed prefixes.
type GroupAlias struct {
	Prefix  string `yaml:"prefix"`
	AliasOf string `yaml:"alias_of,omitempty"`
}

// Config holds the spelling subsystem's tunables. Limit, MaxDistance,
// and PrefixLength are spec.md hard invariants, not meant to vary per
// deployment; they are still exposed here so a config dump makes the
// active build's assumptions explicit rather than implicit.
type Config struct {
	Limit        int          `yaml:"limit"`
	MaxDistance  int          `yaml:"max_distance"`
	PrefixLength int          `yaml:"prefix_length"`
	TrigramWidth int          `yaml:"trigram_width"`
	Groups       []GroupAlias `yaml:"groups"`
}

func defaults() Config {
	return Config{
		Limit:        8,
		MaxDistance:  2,
		PrefixLength: 4,
		TrigramWidth: 3,
	}
}

// Load reads and unmarshals path, applying defaults for any zero-value
// field left unset by the file, then layers SPELLD_* env overrides on
// top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	d := defaults()
	if cfg.Limit == 0 {
		cfg.Limit = d.Limit
	}
	if cfg.MaxDistance == 0 {
		cfg.MaxDistance = d.MaxDistance
	}
	if cfg.PrefixLength == 0 {
		cfg.PrefixLength = d.PrefixLength
	}
	if cfg.TrigramWidth == 0 {
		cfg.TrigramWidth = d.TrigramWidth
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPELLD_MAX_DISTANCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDistance = n
		}
	}
	if v := os.Getenv("SPELLD_PREFIX_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PrefixLength = n
		}
	}
}
