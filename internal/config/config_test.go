package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	v := NewViper()
	v.Set("data_dir", t.TempDir())
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadDefaults(t)

	if cfg.Daemon.Interval != 30*time.Second {
		t.Errorf("Daemon.Interval = %s, want 30s", cfg.Daemon.Interval)
	}
	if cfg.Daemon.Debounce != 100*time.Millisecond {
		t.Errorf("Daemon.Debounce = %s, want 100ms", cfg.Daemon.Debounce)
	}
	if cfg.Remote.Timeout != 10*time.Second {
		t.Errorf("Remote.Timeout = %s, want 10s", cfg.Remote.Timeout)
	}
	if cfg.Remote.Category != "server-sync" {
		t.Errorf("Remote.Category = %q", cfg.Remote.Category)
	}
	if !strings.Contains(cfg.Remote.ReadURL, "jsonplaceholder") {
		t.Errorf("Remote.ReadURL = %q", cfg.Remote.ReadURL)
	}
	if cfg.Dashboard.Port != 8080 || cfg.Dashboard.Enabled {
		t.Errorf("Dashboard = %+v", cfg.Dashboard)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if filepath.Base(cfg.DBPath()) != DBFile {
		t.Errorf("DBPath() = %s", cfg.DBPath())
	}
	if cfg.InboxPath() != filepath.Join(cfg.DataDir, "inbox") {
		t.Errorf("InboxPath() = %s", cfg.InboxPath())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QUOTES_DATA_DIR", t.TempDir())
	t.Setenv("QUOTES_REMOTE_TIMEOUT", "2s")
	t.Setenv("QUOTES_DAEMON_INTERVAL", "1m")
	t.Setenv("QUOTES_SESSION", "tty7")
	t.Setenv("QUOTES_LOG_JSON", "true")

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Remote.Timeout != 2*time.Second {
		t.Errorf("Remote.Timeout = %s, want 2s", cfg.Remote.Timeout)
	}
	if cfg.Daemon.Interval != time.Minute {
		t.Errorf("Daemon.Interval = %s, want 1m", cfg.Daemon.Interval)
	}
	if cfg.Session != "tty7" {
		t.Errorf("Session = %q, want tty7", cfg.Session)
	}
	if !cfg.Log.JSON {
		t.Error("Log.JSON not read from env")
	}
}

func TestLoad_ConfigFileInDataDir(t *testing.T) {
	dir := t.TempDir()
	content := `
[remote]
category = "upstream"

[daemon]
interval = "45s"

[dashboard]
enabled = true
port = 9090
`
	if err := os.WriteFile(filepath.Join(dir, "quotesync.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewViper()
	v.Set("data_dir", dir)
	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Remote.Category != "upstream" || cfg.Daemon.Interval != 45*time.Second {
		t.Errorf("file values not applied: %+v %+v", cfg.Remote, cfg.Daemon)
	}
	if !cfg.Dashboard.Enabled || cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard = %+v", cfg.Dashboard)
	}
	// Unset keys keep their defaults.
	if cfg.Remote.Timeout != 10*time.Second {
		t.Errorf("Remote.Timeout = %s, want default", cfg.Remote.Timeout)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	if _, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = " " }},
		{"empty read url", func(c *Config) { c.Remote.ReadURL = "" }},
		{"empty write url", func(c *Config) { c.Remote.WriteURL = "" }},
		{"zero timeout", func(c *Config) { c.Remote.Timeout = 0 }},
		{"negative cooldown", func(c *Config) { c.Remote.BreakerCooldown = -time.Second }},
		{"zero interval", func(c *Config) { c.Daemon.Interval = 0 }},
		{"zero debounce", func(c *Config) { c.Daemon.Debounce = 0 }},
		{"port too high", func(c *Config) { c.Dashboard.Port = 70000 }},
		{"negative port", func(c *Config) { c.Dashboard.Port = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "shout" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}

	if err := loadDefaults(t).Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestWriteTOML_RoundTrip(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.Daemon.Interval = 90 * time.Second
	cfg.Remote.Category = "mirror"

	path := filepath.Join(t.TempDir(), "conf", "quotesync.toml")
	if err := WriteTOML(path, cfg, false); err != nil {
		t.Fatalf("WriteTOML() failed: %v", err)
	}
	if err := WriteTOML(path, cfg, false); err == nil {
		t.Error("WriteTOML() should refuse to overwrite without force")
	}
	if err := WriteTOML(path, cfg, true); err != nil {
		t.Errorf("WriteTOML(force) failed: %v", err)
	}

	back, err := Load(NewViper(), path)
	if err != nil {
		t.Fatalf("Load() of written file failed: %v", err)
	}
	if back.Daemon.Interval != 90*time.Second || back.Remote.Category != "mirror" {
		t.Errorf("round trip lost values: %+v %+v", back.Daemon, back.Remote)
	}
	if back.DataDir != cfg.DataDir {
		t.Errorf("DataDir = %q, want %q", back.DataDir, cfg.DataDir)
	}
}

func TestWriteYAML(t *testing.T) {
	cfg := loadDefaults(t)

	var buf bytes.Buffer
	if err := WriteYAML(&buf, cfg); err != nil {
		t.Fatalf("WriteYAML() failed: %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if doc["data_dir"] != cfg.DataDir {
		t.Errorf("data_dir = %v, want %s", doc["data_dir"], cfg.DataDir)
	}
	if !strings.Contains(buf.String(), "interval: 30s") {
		t.Errorf("durations should be written as strings:\n%s", buf.String())
	}
}
