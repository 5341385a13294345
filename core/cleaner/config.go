package cleaner

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds the defaults used when a caller does not name a destination,
// keep patterns or source explicitly.
type Config struct {
	// Destination is the build-output directory to reconcile.
	Destination string `mapstructure:"destination" default:"_site"`
	// KeepFiles is a comma-separated list of keep patterns.
	KeepFiles string `mapstructure:"keep_files" default:".git,.svn"`
	// Source names the manifest source (file, object, storage, database).
	Source string `mapstructure:"source" default:"file"`
	// Manifest is the manifest file path, or object key for the object source.
	Manifest string `mapstructure:"manifest" default:".site-manifest.json"`
	// StoragePrefix is the bucket prefix listed by the storage source.
	StoragePrefix string `mapstructure:"storage_prefix" default:""`
	// Site selects the rows of the database source.
	Site string `mapstructure:"site" default:"default"`
	// AllowedRoots is a comma-separated list of absolute directories below which API
	// callers may name a destination. The configured Destination is always allowed.
	AllowedRoots string `mapstructure:"allowed_roots" default:""`
	// CacheTTLSeconds controls how long loaded file lists are reused. Zero disables it.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
}

// KeepPatterns splits KeepFiles into patterns, dropping blanks.
func (c Config) KeepPatterns() []string {
	var out []string
	for _, p := range strings.Split(c.KeepFiles, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AllowedRootList splits AllowedRoots into cleaned paths, dropping blanks.
func (c Config) AllowedRootList() []string {
	var out []string
	for _, p := range strings.Split(c.AllowedRoots, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, filepath.Clean(p))
		}
	}
	return out
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
