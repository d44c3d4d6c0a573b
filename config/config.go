// Package config loads bqlab settings from flags, BQLAB_* environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Konsultn-Engineering/bqlab/connector"
	"github.com/Konsultn-Engineering/bqlab/dialect"
	"github.com/Konsultn-Engineering/bqlab/query"
)

// EnvPrefix is prepended to environment variable names, so that
// "postgres.host" is read from BQLAB_POSTGRES_HOST.
const EnvPrefix = "BQLAB"

// Config is the full set of settings.
type Config struct {
	Project           string           `mapstructure:"project"`
	Dialect           string           `mapstructure:"dialect"`
	PageSize          int              `mapstructure:"page_size"`
	TemplateCacheSize int              `mapstructure:"template_cache_size"`
	Log               LogConfig        `mapstructure:"log"`
	Retry             RetryConfig      `mapstructure:"retry"`
	Postgres          connector.Config `mapstructure:"postgres"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RetryConfig applies to page fetches against remote services.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
}

// Every key needs a default so that AutomaticEnv can see it during Unmarshal.
var defaults = map[string]any{
	"project":             "",
	"dialect":             "bigquery",
	"page_size":           100,
	"template_cache_size": query.DefaultCacheSize,
	"log.level":           "info",
	"log.format":          "text",
	"retry.max_retries":   3,
	"retry.base_delay":    200 * time.Millisecond,
	"retry.max_delay":     5 * time.Second,
	"postgres.host":       "localhost",
	"postgres.port":       5432,
	"postgres.database":   "",
	"postgres.username":   "",
	"postgres.password":   "",
	"postgres.ssl_mode":   "prefer",
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// FlagKeys maps command line flag names onto config keys.
var FlagKeys = map[string]string{
	"project":             "project",
	"dialect":             "dialect",
	"page-size":           "page_size",
	"template-cache-size": "template_cache_size",
	"log-level":           "log.level",
	"log-format":          "log.format",
	"max-retries":         "retry.max_retries",
}

// BindFlags binds the flags of fs named in FlagKeys. A bound flag only
// takes effect when it is set on the command line.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := FlagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// Load reads the config file, if one is given, and decodes all settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		slog.Debug("config file loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.TemplateCacheSize <= 0 {
		return fmt.Errorf("template_cache_size must be positive, got %d", c.TemplateCacheSize)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must not be negative")
	}
	return nil
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
