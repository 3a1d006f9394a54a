package main

import (
	"encoding/json"
	"testing"
)

func TestStatusCommandShowsSections(t *testing.T) {
	env := setupCLITestEnv(t)
	primeCache(t, env)

	out, _, err := runCLI(t, []string{"status"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Daemon ==")
	requireContains(t, out, "Running at "+env.addr)
	requireContains(t, out, "== Cache ==")
	requireContains(t, out, "== Last Refresh ==")
	requireContains(t, out, "success")
}

func TestStatusCommandEmptyCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "0 (cache empty)")
	requireContains(t, out, "Never loaded")
}

func TestStatusCommandDaemonDown(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, "127.0.0.1:9", env.configPath)
	if err != nil {
		t.Fatalf("status against closed port: %v", err)
	}
	requireContains(t, out, "Not running at 127.0.0.1:9")
}

func TestStatusCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	primeCache(t, env)

	out, _, err := runCLI(t, []string{"status", "--json"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode status JSON: %v", err)
	}
	for _, key := range []string{"health", "stats"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected %q in status JSON, got %s", key, out)
		}
	}
}
