// Package config loads quotesync settings.
//
// Values are resolved by viper in this order: built-in defaults, a config
// file, QUOTES_* environment variables, command-line flags bound by the CLI.
// Nested keys map to environment variables with "." replaced by "_", so
// remote.timeout is read from QUOTES_REMOTE_TIMEOUT.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quotesync/quotesync/internal/logging"
	"github.com/quotesync/quotesync/internal/remote"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "QUOTES"

// FileName is the config file base name searched for without --config.
const FileName = "quotesync"

// DBFile is the durable store file inside the data directory.
const DBFile = "quotes.db"

// Config is the effective configuration.
type Config struct {
	DataDir string `mapstructure:"data_dir"`

	// Session names the CLI session whose browsing state is shared between
	// invocations. Empty means the parent process id.
	Session string `mapstructure:"session"`

	Remote    RemoteConfig    `mapstructure:"remote"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       logging.Config  `mapstructure:"log"`
}

// RemoteConfig configures the remote adapter.
type RemoteConfig struct {
	ReadURL         string        `mapstructure:"read_url"`
	WriteURL        string        `mapstructure:"write_url"`
	Category        string        `mapstructure:"category"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// DaemonConfig configures the background daemon.
type DaemonConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	InboxDir string        `mapstructure:"inbox_dir"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// DashboardConfig configures the dashboard server run by the daemon.
type DashboardConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// DefaultDataDir returns ~/.quotesync, or .quotesync when the home directory
// cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quotesync"
	}
	return filepath.Join(home, ".quotesync")
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	rd := remote.DefaultConfig()
	ld := logging.DefaultConfig()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("session", "")

	v.SetDefault("remote.read_url", rd.ReadURL)
	v.SetDefault("remote.write_url", rd.WriteURL)
	v.SetDefault("remote.category", rd.Category)
	v.SetDefault("remote.timeout", rd.Timeout)
	v.SetDefault("remote.breaker_failures", rd.BreakerFailures)
	v.SetDefault("remote.breaker_cooldown", rd.BreakerCooldown)

	v.SetDefault("daemon.interval", 30*time.Second)
	v.SetDefault("daemon.inbox_dir", "")
	v.SetDefault("daemon.debounce", 100*time.Millisecond)

	v.SetDefault("dashboard.enabled", false)
	v.SetDefault("dashboard.host", "127.0.0.1")
	v.SetDefault("dashboard.port", 8080)

	v.SetDefault("log.level", ld.Level)
	v.SetDefault("log.json", ld.JSON)
	v.SetDefault("log.file", ld.File)
	v.SetDefault("log.max_size_mb", ld.MaxSizeMB)
	v.SetDefault("log.max_backups", ld.MaxBackups)
	v.SetDefault("log.max_age_days", ld.MaxAgeDays)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and returns the effective config.
//
// With an explicit file, a missing or unreadable file is an error. Otherwise
// quotesync.{yaml,toml,...} is searched in the data directory and in
// $HOME/.config/quotesync, and not finding one is fine.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(v.GetString("data_dir"))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, fmt.Errorf("data_dir cannot be empty"))
	}
	if c.Remote.ReadURL == "" {
		errs = append(errs, fmt.Errorf("remote.read_url cannot be empty"))
	}
	if c.Remote.WriteURL == "" {
		errs = append(errs, fmt.Errorf("remote.write_url cannot be empty"))
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("remote.timeout must be positive, got %s", c.Remote.Timeout))
	}
	if c.Remote.BreakerCooldown < 0 {
		errs = append(errs, fmt.Errorf("remote.breaker_cooldown cannot be negative"))
	}
	if c.Daemon.Interval <= 0 {
		errs = append(errs, fmt.Errorf("daemon.interval must be positive, got %s", c.Daemon.Interval))
	}
	if c.Daemon.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("daemon.debounce must be positive, got %s", c.Daemon.Debounce))
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Errorf("dashboard.port out of range: %d", c.Dashboard.Port))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// DBPath returns the durable store path.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFile)
}

// InboxPath returns the inbox directory, <data_dir>/inbox unless configured.
func (c *Config) InboxPath() string {
	if c.Daemon.InboxDir != "" {
		return c.Daemon.InboxDir
	}
	return filepath.Join(c.DataDir, "inbox")
}

// RemoteAdapterConfig converts the remote settings for remote.New.
func (c *Config) RemoteAdapterConfig() *remote.Config {
	rc := remote.DefaultConfig()
	rc.ReadURL = c.Remote.ReadURL
	rc.WriteURL = c.Remote.WriteURL
	rc.Category = c.Remote.Category
	rc.Timeout = c.Remote.Timeout
	rc.BreakerFailures = c.Remote.BreakerFailures
	rc.BreakerCooldown = c.Remote.BreakerCooldown
	return rc
}
