package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"roster/internal/config"
)

func TestLoadDefaultConfigUsesEnvURLAndExpandsPaths(t *testing.T) {
	t.Setenv("ROSTER_UPSTREAM_URL", "https://register.test/export.xml")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCacheDir := filepath.Join(tempHome, ".local", "share", "roster")
	if cfg.Cache.Dir != wantCacheDir {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Cache.Dir, wantCacheDir)
	}
	if cfg.Server.Bind != "127.0.0.1:8390" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Upstream.URL != "https://register.test/export.xml" {
		t.Fatalf("expected upstream URL from env, got %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.AuthMode != "header" {
		t.Fatalf("expected default auth mode, got %q", cfg.Upstream.AuthMode)
	}
	if cfg.Upstream.TimeoutSeconds != 300 {
		t.Fatalf("unexpected upstream timeout: %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Fatalf("unexpected ttl: %d", cfg.Cache.TTLHours)
	}
	if cfg.Refresh.At != "03:00" {
		t.Fatalf("unexpected refresh time: %q", cfg.Refresh.At)
	}
	if cfg.SnapshotPath() != filepath.Join(wantCacheDir, "snapshot.json") {
		t.Fatalf("unexpected snapshot path: %q", cfg.SnapshotPath())
	}
	if cfg.JournalPath() != filepath.Join(wantCacheDir, "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Cache.Dir, cfg.LogDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "roster.toml")

	type payload struct {
		Upstream struct {
			URL            string `toml:"url"`
			APIKey         string `toml:"api_key"`
			AuthMode       string `toml:"auth_mode"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"upstream"`
		Cache struct {
			TTLHours int `toml:"ttl_hours"`
		} `toml:"cache"`
		Refresh struct {
			At string `toml:"at"`
		} `toml:"refresh"`
	}
	custom := payload{}
	custom.Upstream.URL = "https://example.com/export.xml"
	custom.Upstream.APIKey = "abc123"
	custom.Upstream.AuthMode = "QUERY"
	custom.Upstream.TimeoutSeconds = 120
	custom.Cache.TTLHours = 6
	custom.Refresh.At = "04:30"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Upstream.URL != "https://example.com/export.xml" {
		t.Fatalf("expected upstream URL from file, got %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.AuthMode != "query" {
		t.Fatalf("expected auth mode lowered, got %q", cfg.Upstream.AuthMode)
	}
	if cfg.Upstream.TimeoutSeconds != 120 {
		t.Fatalf("expected upstream timeout 120, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.Cache.TTLHours != 6 {
		t.Fatalf("expected ttl 6, got %d", cfg.Cache.TTLHours)
	}
	hour, minute, err := cfg.RefreshClock()
	if err != nil {
		t.Fatalf("RefreshClock returned error: %v", err)
	}
	if hour != 4 || minute != 30 {
		t.Fatalf("unexpected refresh clock: %02d:%02d", hour, minute)
	}
}

func TestEnvVarFillsMissingCredentials(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "roster.toml")

	type payload struct {
		Upstream struct {
			URL string `toml:"url"`
		} `toml:"upstream"`
	}
	custom := payload{}
	custom.Upstream.URL = "https://example.com/export.xml"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("ROSTER_UPSTREAM_API_KEY", "env-key")
	t.Setenv("ROSTER_API_TOKEN", "env-token")
	t.Setenv("ROSTER_NTFY_TOPIC", "env-topic")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Upstream.APIKey != "env-key" {
		t.Errorf("expected upstream key from env, got %q", cfg.Upstream.APIKey)
	}
	if cfg.Server.APIToken != "env-token" {
		t.Errorf("expected API token from env, got %q", cfg.Server.APIToken)
	}
	if cfg.Notifications.NtfyTopic != "env-topic" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_register_api_key_here") {
		t.Fatalf("sample config missing placeholder API key: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:8390" {
		t.Fatalf("unexpected bind in sample: %q", cfg.Server.Bind)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Upstream.URL = "https://example.com/export.xml"
		return cfg
	}

	cfg := config.Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing upstream URL")
	}

	cfg = base()
	cfg.Upstream.AuthMode = "digest"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}

	cfg = base()
	cfg.Upstream.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = base()
	cfg.Cache.TTLHours = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}

	cfg = base()
	cfg.Refresh.At = "25:99"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid refresh time")
	}

	cfg = base()
	cfg.Refresh.At = "3pm"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed refresh time")
	}
}
