package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"roster/internal/cache"
	"roster/internal/config"
	"roster/internal/daemon"
	"roster/internal/journal"
	"roster/internal/logging"
	"roster/internal/refresh"
	"roster/internal/registry"
)

type staticFetcher struct {
	records []registry.Record
	err     error
}

func (f *staticFetcher) Fetch(context.Context) ([]registry.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	fetcher    *staticFetcher
	addr       string
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := config.Default()
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Upstream.URL = "https://register.example.test/export"
	cfg.Cache.Dir = filepath.Join(base, "cache")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "roster", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, &cfg)

	logger := logging.NewNop()
	store := cache.NewStore(logger)
	mirror := cache.NewMirror(cfg.SnapshotPath(), logger)
	jrnl, err := journal.Open(cfg.JournalPath())
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}

	fetcher := &staticFetcher{records: []registry.Record{
		{RegistrationNumber: "PT-100", CompanyName: "Example Packaging d.o.o.", VATNumber: "SI10000001", City: "Ljubljana"},
		{RegistrationNumber: "PT-200", CompanyName: "Sample Recycling d.o.o."},
	}}
	coordinator := refresh.NewCoordinator(store, mirror, fetcher, jrnl, nil, cfg.CacheTTL(), logger)

	d, err := daemon.New(&cfg, store, mirror, jrnl, coordinator, nil, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("daemon.Close: %v", err)
		}
	})

	return &cliTestEnv{
		cfg:        &cfg,
		daemon:     d,
		fetcher:    fetcher,
		addr:       d.Addr(),
		configPath: configPath,
		baseDir:    base,
	}
}

// primeCache runs one synchronous refresh so tests start from a loaded cache.
func primeCache(t *testing.T, env *cliTestEnv) {
	t.Helper()
	result := env.daemon.Refresh(context.Background(), refresh.TriggerForced)
	if result.Err != nil {
		t.Fatalf("prime cache: %v", result.Err)
	}
}

func runCLI(t *testing.T, args []string, addr, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--addr", addr}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[server]\nbind = %q\n\n[upstream]\nurl = %q\n\n[cache]\ndir = %q\n",
		cfg.Server.Bind,
		cfg.Upstream.URL,
		cfg.Cache.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
