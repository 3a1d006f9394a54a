package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"roster/internal/api"
	"roster/internal/journal"
	"roster/internal/refresh"
)

func TestHistoryCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No refreshes recorded")
}

func TestHistoryCommandListsRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	primeCache(t, env)
	env.fetcher.err = errors.New("export unavailable")
	if result := env.daemon.Refresh(context.Background(), refresh.TriggerForced); result.Err == nil {
		t.Fatal("expected second refresh to fail")
	}

	out, _, err := runCLI(t, []string{"history"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "forced")
	requireContains(t, out, "success")
	requireContains(t, out, "failure")
	requireContains(t, out, "export unavailable")
}

func TestHistoryCommandHonorsLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	primeCache(t, env)
	env.fetcher.err = errors.New("export unavailable")
	env.daemon.Refresh(context.Background(), refresh.TriggerForced)

	out, _, err := runCLI(t, []string{"history", "--limit", "1", "--json"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var resp api.RefreshListResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode history JSON: %v", err)
	}
	if len(resp.Refreshes) != 1 {
		t.Fatalf("expected 1 refresh, got %d", len(resp.Refreshes))
	}
	if resp.Refreshes[0].Outcome != journal.OutcomeFailure {
		t.Fatalf("expected newest row first, got %+v", resp.Refreshes[0])
	}
}
