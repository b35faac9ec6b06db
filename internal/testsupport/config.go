package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"creatorpack/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.InboxDir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{builder.cfg.Paths.StagingDir, builder.cfg.Paths.ExportDir, builder.cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return builder.cfg
}

// WithInbox enables the watch-mode inbox directory on the test config.
func WithInbox() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.InboxDir = filepath.Join(b.baseDir, "inbox")
		if err := os.MkdirAll(b.cfg.Paths.InboxDir, 0o755); err != nil {
			b.t.Fatalf("mkdir inbox: %v", err)
		}
	}
}

// WithHighlightsDisabled turns off highlight planning on the test
// config.
func WithHighlightsDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Highlights.Enabled = false
	}
}
