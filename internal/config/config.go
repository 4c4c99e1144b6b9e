// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

// Package config loads runtime configuration. Sources layer in order:
// built-in defaults, a YAML config file, the DATABASE_URL environment
// variable, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/phrasehub/phrasehub/internal/xdg"
)

// Config is the resolved runtime configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`
	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`
	// MetricsAddr is the observability listen address.
	MetricsAddr string `koanf:"metrics_addr"`
	// ConnectTimeout bounds the initial database connection wait.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	// RedactionMaxChars is the redaction length threshold for audit reads.
	RedactionMaxChars int `koanf:"redaction_max_chars"`
}

func defaults() Config {
	return Config{
		LogFormat:         "json",
		MetricsAddr:       "127.0.0.1:9090",
		ConnectTimeout:    30 * time.Second,
		RedactionMaxChars: 100,
	}
}

// DefaultFile returns the discovered config file path, or "" when none
// exists.
func DefaultFile() string {
	path := filepath.Join(xdg.ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load resolves configuration. path may be empty, in which case the XDG
// config file is used if present. flags may be nil; changed flags override
// file values, with dashes mapped to underscores ("log-format" sets
// "log_format").
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := k.Set("database_url", url); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrap(err)
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return &cfg, nil
}

// RequireDatabaseURL fails when no database URL was configured.
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database URL is required: set DATABASE_URL, database_url in the config file, or --database-url")
	}
	return nil
}
