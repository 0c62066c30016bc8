package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load, e.g.
// WEBSTORE_PRIMARY_REDIS_ADDR for primary.redis.addr.
const EnvPrefix = "WEBSTORE"

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	ConfigFile string // YAML config file path (optional)
	EnvFile    string // .env file path (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// keys lists every setting so that AutomaticEnv can resolve it during
// Unmarshal even when neither the file nor a default mentions it.
var keys = []string{
	"namespace", "default_kind", "strict_namespace", "log_tag",
	"log.level", "log.format", "log.output", "log.no_color", "log.timestamp",
}

var backendKeys = []string{
	"driver",
	"redis.addr", "redis.password", "redis.db", "redis.prefix", "redis.pool_size",
	"redis.scan_count", "redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"sqlite.path", "sqlite.table", "sqlite.busy_timeout", "sqlite.auto_migrate",
}

// Load reads configuration in increasing precedence: built-in defaults, the
// YAML file, the .env file and the process environment. The result has
// defaults applied and is validated.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	// godotenv never overrides variables that are already set.
	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if lc.ConfigFile != "" {
		if _, err := os.Stat(lc.ConfigFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", lc.ConfigFile, err)
		}
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", lc.ConfigFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func bindKeys(v *viper.Viper) {
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	for _, kind := range []string{"primary", "session"} {
		for _, k := range backendKeys {
			_ = v.BindEnv(kind + "." + k)
		}
	}
}
