// Package config holds the runtime configuration: loader search paths,
// the import worker pool, and the issue threshold that fails a run.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the aria runtime configuration, loadable from aria.yaml.
type Config struct {
	// SearchPaths are extra roots relative imports resolve against.
	SearchPaths []string `mapstructure:"search_paths" yaml:"search_paths"`

	// ImportWorkers bounds the concurrent import pool.
	ImportWorkers int `mapstructure:"import_workers" yaml:"import_workers"`

	// ImportTimeout bounds each import's load-read-present cycle.
	ImportTimeout time.Duration `mapstructure:"import_timeout" yaml:"import_timeout"`

	// Threshold is the issue level at or above which a run fails.
	Threshold string `mapstructure:"threshold" yaml:"threshold"`

	// LegacyGroupMembers lists contained members in groups too; nested
	// groups still flatten one level.
	LegacyGroupMembers bool `mapstructure:"legacy_group_members" yaml:"legacy_group_members"`
}

// DefaultConfig returns the defaults used when no aria.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		ImportWorkers: 10,
		ImportTimeout: 10 * time.Second,
		Threshold:     "syntax",
	}
}

// Load reads aria.yaml from the given path (or the working directory when
// empty), overlaying the defaults. With an empty path, a failure to read
// aria.yaml leaves the defaults in place; a file named by path must be
// readable.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigName("aria")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("ARIA")
	v.AutomaticEnv()
	v.SetDefault("import_workers", cfg.ImportWorkers)
	v.SetDefault("import_timeout", cfg.ImportTimeout)
	v.SetDefault("threshold", cfg.Threshold)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && path != "" {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.ImportWorkers <= 0 {
		cfg.ImportWorkers = 10
	}
	return cfg, nil
}
