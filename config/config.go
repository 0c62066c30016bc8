// Package config loads webstore settings from YAML, .env files and
// WEBSTORE_* environment variables, and opens a Store from them.
package config

import (
	"fmt"
	"slices"

	"code.byted.org/khicago/webstore"
	"code.byted.org/khicago/webstore/logging"
	"code.byted.org/khicago/webstore/redisdriver"
	"code.byted.org/khicago/webstore/sqlitedriver"
)

// Backend driver names.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the complete webstore configuration.
type Config struct {
	// Namespace is the initial ambient namespace.
	Namespace string `mapstructure:"namespace"`

	// DefaultKind is "primary" or "session".
	DefaultKind string `mapstructure:"default_kind"`

	// StrictNamespace makes namespace clears match by prefix only.
	StrictNamespace bool `mapstructure:"strict_namespace"`

	// LogTag prefixes every store log message.
	LogTag string `mapstructure:"log_tag"`

	Primary BackendConfig  `mapstructure:"primary"`
	Session BackendConfig  `mapstructure:"session"`
	Log     logging.Config `mapstructure:"log"`
}

// BackendConfig selects and configures the driver behind one store kind.
type BackendConfig struct {
	// Driver is memory, redis or sqlite.
	Driver string              `mapstructure:"driver"`
	Redis  redisdriver.Config  `mapstructure:"redis"`
	SQLite sqlitedriver.Config `mapstructure:"sqlite"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.DefaultKind == "" {
		c.DefaultKind = webstore.Primary.String()
	}
	c.Primary.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Log.ApplyDefaults()
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if _, err := webstore.ParseKind(c.DefaultKind); err != nil {
		return fmt.Errorf("default_kind: %w", err)
	}
	if err := c.Primary.Validate(); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

// ApplyDefaults defaults the driver to memory and fills the selected
// driver's settings.
func (b *BackendConfig) ApplyDefaults() {
	if b.Driver == "" {
		b.Driver = DriverMemory
	}
	switch b.Driver {
	case DriverRedis:
		b.Redis.ApplyDefaults()
	case DriverSQLite:
		b.SQLite.ApplyDefaults()
	}
}

// Validate checks the driver name and the selected driver's settings.
func (b *BackendConfig) Validate() error {
	valid := []string{DriverMemory, DriverRedis, DriverSQLite}
	if !slices.Contains(valid, b.Driver) {
		return fmt.Errorf("driver must be one of %v (got: %s)", valid, b.Driver)
	}
	switch b.Driver {
	case DriverRedis:
		return b.Redis.Validate()
	case DriverSQLite:
		return b.SQLite.Validate()
	}
	return nil
}
