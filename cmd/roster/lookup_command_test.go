package main

import (
	"encoding/json"
	"testing"

	"roster/internal/api"
)

func TestLookupCommandLazyLoadsAndFinds(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"lookup", "pt-100"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "pt-100 is registered")
	requireContains(t, out, "Example Packaging d.o.o.")
	requireContains(t, out, "SI10000001")
}

func TestLookupCommandNotFound(t *testing.T) {
	env := setupCLITestEnv(t)
	primeCache(t, env)

	out, _, err := runCLI(t, []string{"lookup", "PT-999"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	requireContains(t, out, "PT-999 is not in the register")
}

func TestLookupCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	primeCache(t, env)

	out, _, err := runCLI(t, []string{"lookup", "PT-200", "--json"}, env.addr, env.configPath)
	if err != nil {
		t.Fatalf("lookup --json: %v", err)
	}
	var resp api.LookupResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode lookup JSON: %v", err)
	}
	if !resp.Registered || resp.Status != api.StatusRegistered {
		t.Fatalf("expected registered result, got %+v", resp)
	}
	if resp.Company == nil || *resp.Company != "Sample Recycling d.o.o." {
		t.Fatalf("unexpected company: %v", resp.Company)
	}
}

func TestLookupCommandRejectsBlankArgument(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"lookup", "   "}, env.addr, env.configPath)
	if err == nil {
		t.Fatal("expected error for blank registration number")
	}
}
