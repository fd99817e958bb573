package config

import (
	"fmt"
	"os"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validMediaTypes = map[string]bool{
	"tv": true, "movie": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.Organize.TargetRoot == "" {
		errs = append(errs, "organize.target_root: required")
	}
	if c.Organize.MaxConcurrent < 0 {
		errs = append(errs, fmt.Sprintf("organize.max_concurrent: must be positive, got %d", c.Organize.MaxConcurrent))
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl: must not be negative")
	}
	if c.Cache.MaxItems < 0 {
		errs = append(errs, "cache.max_items: must not be negative")
	}

	if c.FileOps.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("fileops.max_attempts: must be at least 1, got %d", c.FileOps.MaxAttempts))
	}

	for title, ov := range c.Metadata.Overrides {
		if ov.ID <= 0 {
			errs = append(errs, fmt.Sprintf("metadata.overrides.%q.id: must be a positive provider id", title))
		}
		if !validMediaTypes[ov.MediaType] {
			errs = append(errs, fmt.Sprintf("metadata.overrides.%q.media_type: must be tv or movie; got %q", title, ov.MediaType))
		}
	}

	// Target root warning (non-fatal in spirit, reported with the rest)
	if c.Organize.TargetRoot != "" {
		if _, err := os.Stat(c.Organize.TargetRoot); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("organize.target_root: warning: directory %q does not exist", c.Organize.TargetRoot))
		}
	}

	return errs
}
