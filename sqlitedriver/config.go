package sqlitedriver

import (
	"fmt"
	"time"
)

// Config holds SQLite connection configuration for a webstore driver.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string `mapstructure:"path"`

	// Table overrides the entries table name.
	Table string `mapstructure:"table"`

	// BusyTimeout is how long a writer waits on a locked database (e.g. "5s").
	BusyTimeout string `mapstructure:"busy_timeout"`

	// AutoMigrate controls whether the entries table is created on Open.
	AutoMigrate *bool `mapstructure:"auto_migrate"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "webstore.db"
	}
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.BusyTimeout == "" {
		c.BusyTimeout = "5s"
	}
	if c.AutoMigrate == nil {
		migrate := true
		c.AutoMigrate = &migrate
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite path is required")
	}
	if _, err := time.ParseDuration(c.BusyTimeout); err != nil {
		return fmt.Errorf("invalid busy_timeout %q: %w", c.BusyTimeout, err)
	}
	return nil
}

func (c *Config) dsn() string {
	timeout, _ := time.ParseDuration(c.BusyTimeout)
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", c.Path, timeout.Milliseconds())
}
