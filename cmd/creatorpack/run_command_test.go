package main

import (
	"strings"
	"testing"
)

func TestRunRejectsDisallowedSource(t *testing.T) {
	base := setupCLITestEnv(t)
	cfg := base.cfg
	cfg.Sources.Allowed = []string{"local"}
	writeTestConfig(t, base.configPath, cfg)

	_, _, err := runCLI(t,
		[]string{"run", "https://commons.wikimedia.org/wiki/File:Example.webm"},
		base.configPath)
	if err == nil {
		t.Fatal("expected allow-list rejection")
	}
	if !strings.Contains(err.Error(), "allow-list") {
		t.Fatalf("error = %v, want allow-list rejection", err)
	}
}

func TestRunRequiresArguments(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected usage error without assets")
	}
}

func TestRunFailsPreflightForMissingLocalAsset(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--dry-run", "/nonexistent/talk.mp4"}, env.configPath)
	if err == nil {
		t.Fatal("expected failure for missing input file")
	}
}

func TestPlanCommandSharesPipeline(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"plan", "/nonexistent/talk.mp4"}, env.configPath); err == nil {
		t.Fatal("expected failure for missing input file")
	}
}

func TestRunRejectsInvalidPolicyOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--minutes", "0", "/nonexistent/talk.mp4"}, env.configPath)
	if err == nil {
		t.Fatal("expected policy validation error")
	}
	if !strings.Contains(err.Error(), "target_seconds") {
		t.Fatalf("error = %v, want chapter policy rejection", err)
	}
}

func TestRunUnknownLocalizeOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--localize", "not a language", "/nonexistent/talk.mp4"}, env.configPath)
	if err == nil {
		t.Fatal("expected localize validation error")
	}
}
