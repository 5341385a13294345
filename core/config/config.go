package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/database"
	"site-cleaner/core/logger"
	"site-cleaner/core/server"
	"site-cleaner/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete process configuration, one section per subsystem.
type Config struct {
	// Server configures the HTTP API.
	Server server.Config `mapstructure:"server"`
	// Storage configures the bucket read by the object and storage manifest sources.
	Storage storage.Config `mapstructure:"storage"`
	// Log configures the zap logger.
	Log logger.Config `mapstructure:"log"`
	// Database configures run history and the database manifest source.
	Database database.Config `mapstructure:"database"`
	// Cleaner holds the default destination, keep patterns and manifest source.
	Cleaner cleaner.Config `mapstructure:"cleaner"`
}

// LoadConfig reads dir/.env when present, then the environment, and falls back to
// the `default` struct tags. The result is validated before it is returned.
func LoadConfig(dir string) (*Config, error) {
	// A missing .env is normal in production
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	registerKeys(v, reflect.TypeOf(Config{}), "")

	// CLEANER_KEEP_FILES -> cleaner.keep_files
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings that would otherwise only fail on first use.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "", database.DriverMySQL, database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}

	for _, root := range c.Cleaner.AllowedRootList() {
		if !filepath.IsAbs(root) {
			errs = append(errs, fmt.Errorf("cleaner.allowed_roots entry %q is not absolute", root))
		}
	}

	if c.Cleaner.CacheTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cleaner.cache_ttl_seconds must not be negative"))
	}

	return errors.Join(errs...)
}

// registerKeys walks t and sets a viper default for every mapstructure key, so that
// AutomaticEnv can resolve it. Nested structs become dotted prefixes.
func registerKeys(v *viper.Viper, t reflect.Type, prefix string) {
	for _, field := range reflect.VisibleFields(t) {
		name := field.Tag.Get("mapstructure")
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		if field.Type.Kind() == reflect.Struct {
			registerKeys(v, field.Type, name)
			continue
		}
		v.SetDefault(name, field.Tag.Get("default"))
	}
}
