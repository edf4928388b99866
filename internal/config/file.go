package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of Config. Durations are written as Go
// duration strings, which viper decodes back into time.Duration.
type fileConfig struct {
	DataDir   string        `toml:"data_dir" yaml:"data_dir"`
	Session   string        `toml:"session,omitempty" yaml:"session,omitempty"`
	Remote    fileRemote    `toml:"remote" yaml:"remote"`
	Daemon    fileDaemon    `toml:"daemon" yaml:"daemon"`
	Dashboard fileDashboard `toml:"dashboard" yaml:"dashboard"`
	Log       fileLog       `toml:"log" yaml:"log"`
}

type fileRemote struct {
	ReadURL         string `toml:"read_url" yaml:"read_url"`
	WriteURL        string `toml:"write_url" yaml:"write_url"`
	Category        string `toml:"category" yaml:"category"`
	Timeout         string `toml:"timeout" yaml:"timeout"`
	BreakerFailures uint32 `toml:"breaker_failures" yaml:"breaker_failures"`
	BreakerCooldown string `toml:"breaker_cooldown" yaml:"breaker_cooldown"`
}

type fileDaemon struct {
	Interval string `toml:"interval" yaml:"interval"`
	InboxDir string `toml:"inbox_dir" yaml:"inbox_dir"`
	Debounce string `toml:"debounce" yaml:"debounce"`
}

type fileDashboard struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Host    string `toml:"host" yaml:"host"`
	Port    int    `toml:"port" yaml:"port"`
}

type fileLog struct {
	Level      string `toml:"level" yaml:"level"`
	JSON       bool   `toml:"json" yaml:"json"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
}

func (c *Config) toFile() fileConfig {
	return fileConfig{
		DataDir: c.DataDir,
		Session: c.Session,
		Remote: fileRemote{
			ReadURL:         c.Remote.ReadURL,
			WriteURL:        c.Remote.WriteURL,
			Category:        c.Remote.Category,
			Timeout:         c.Remote.Timeout.String(),
			BreakerFailures: c.Remote.BreakerFailures,
			BreakerCooldown: c.Remote.BreakerCooldown.String(),
		},
		Daemon: fileDaemon{
			Interval: c.Daemon.Interval.String(),
			InboxDir: c.Daemon.InboxDir,
			Debounce: c.Daemon.Debounce.String(),
		},
		Dashboard: fileDashboard(c.Dashboard),
		Log: fileLog{
			Level:      c.Log.Level,
			JSON:       c.Log.JSON,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
		},
	}
}

// WriteTOML writes c to path. An existing file is only replaced when force
// is set.
func WriteTOML(path string, c *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c.toFile()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}

// WriteYAML writes c to w as YAML.
func WriteYAML(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.toFile()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
