package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file")
	}
	if resolved == "" {
		t.Error("resolved path empty")
	}
	if cfg.Chapters.TargetMinutes != defaultTargetMinutes {
		t.Errorf("TargetMinutes = %d, want default %d", cfg.Chapters.TargetMinutes, defaultTargetMinutes)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[chapters]
target_minutes = 15
alignment = "FIXED"

[sources]
allowed = ["Local", " NASA "]

[output]
localize = "Spanish"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Error("exists = false for present file")
	}
	if cfg.Chapters.TargetMinutes != 15 {
		t.Errorf("TargetMinutes = %d", cfg.Chapters.TargetMinutes)
	}
	if cfg.Chapters.Alignment != "fixed" {
		t.Errorf("Alignment = %q, want fixed", cfg.Chapters.Alignment)
	}
	if cfg.Output.Localize != "es" {
		t.Errorf("Localize = %q, want es", cfg.Output.Localize)
	}
	allowed := cfg.AllowedSources()
	if _, ok := allowed["nasa"]; !ok {
		t.Errorf("allowed sources missing nasa: %v", allowed)
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		fragment string
	}{
		{
			"zero chapter target",
			"[chapters]\ntarget_minutes = 0\n",
			"target_seconds",
		},
		{
			"max below min",
			"[highlights]\nmin_seconds = 60.0\nmax_seconds = 10.0\n",
			"max_seconds",
		},
		{
			"bad strategy",
			"[highlights]\nstrategy = \"vibes\"\n",
			"strategy",
		},
		{
			"bad localize",
			"[output]\nlocalize = \"klingon battle speech\"\n",
			"localize",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.contents), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.fragment) {
				t.Errorf("error %q missing %q", err, tt.fragment)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/exports")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "exports") {
		t.Errorf("expandPath = %q", got)
	}
}
