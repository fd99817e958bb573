// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Cache    CacheConfig    `toml:"cache"`
	Organize OrganizeConfig `toml:"organize"`
	FileOps  FileOpsConfig  `toml:"fileops"`
	Metadata MetadataConfig `toml:"metadata"`
	Log      LogConfig      `toml:"log"`
}

type TMDBConfig struct {
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
}

type CacheConfig struct {
	Path     string        `toml:"path"`
	TTL      time.Duration `toml:"ttl"`
	MaxItems int           `toml:"max_items"`
}

type OrganizeConfig struct {
	TargetRoot       string `toml:"target_root"`
	FolderTemplate   string `toml:"folder_template"`
	KeepOriginalName bool   `toml:"keep_original_name"`
	Overwrite        bool   `toml:"overwrite"`
	MaxConcurrent    int    `toml:"max_concurrent"`
	WriteSidecars    bool   `toml:"write_sidecars"`
}

type FileOpsConfig struct {
	MaxAttempts int           `toml:"max_attempts"`
	Backoff     time.Duration `toml:"backoff"`
}

type MetadataConfig struct {
	SearchPages int                       `toml:"search_pages"`
	DetailLimit int                       `toml:"detail_limit"`
	MinInterval time.Duration             `toml:"min_interval"`
	Overrides   map[string]OverrideConfig `toml:"overrides"`
}

// OverrideConfig pins a title to a provider id, bypassing search.
type OverrideConfig struct {
	ID        int    `toml:"id"`
	MediaType string `toml:"media_type"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.TMDB.Language == "" {
		cfg.TMDB.Language = "en-US"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "./data/sortarr.db"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 30 * 24 * time.Hour
	}
	if cfg.Cache.MaxItems == 0 {
		cfg.Cache.MaxItems = 2000
	}
	if cfg.Organize.FolderTemplate == "" {
		cfg.Organize.FolderTemplate = "{title} ({year})"
	}
	if cfg.Organize.MaxConcurrent == 0 {
		cfg.Organize.MaxConcurrent = 4
	}
	if cfg.FileOps.MaxAttempts == 0 {
		cfg.FileOps.MaxAttempts = 3
	}
	if cfg.FileOps.Backoff == 0 {
		cfg.FileOps.Backoff = 500 * time.Millisecond
	}
	if cfg.Metadata.SearchPages == 0 {
		cfg.Metadata.SearchPages = 2
	}
	if cfg.Metadata.DetailLimit == 0 {
		cfg.Metadata.DetailLimit = 3
	}
	if cfg.Metadata.MinInterval == 0 {
		cfg.Metadata.MinInterval = 250 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return &cfg, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
// and reports the names that could not be resolved. ${VAR:-fallback} uses
// the fallback when the variable is unset or empty.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		expr := match[2 : len(match)-1] // Strip ${ and }

		name, fallback, hasFallback := strings.Cut(expr, ":-")
		value, ok := os.LookupEnv(name)
		if hasFallback {
			if value == "" {
				return fallback
			}
			return value
		}
		if ok {
			return value
		}
		missing = append(missing, name)
		return match
	})
	return out, missing
}
