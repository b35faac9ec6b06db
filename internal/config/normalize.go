package config

import (
	"fmt"
	"strings"

	"creatorpack/internal/language"
)

// Finalize re-normalizes and re-validates a config after its fields were
// changed programmatically, for example by CLI flag overrides.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSources()
	c.normalizeEnums()
	return c.normalizeLocalize()
}

func (c *Config) normalizePaths() error {
	fields := []*string{
		&c.Paths.StagingDir,
		&c.Paths.ExportDir,
		&c.Paths.LogDir,
		&c.Paths.InboxDir,
		&c.Output.BrandPath,
	}
	for _, field := range fields {
		if strings.TrimSpace(*field) == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeSources() {
	normalized := c.Sources.Allowed[:0]
	for _, name := range c.Sources.Allowed {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			normalized = append(normalized, name)
		}
	}
	c.Sources.Allowed = normalized
	if c.Sources.RequestTimeout <= 0 {
		c.Sources.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeEnums() {
	c.Chapters.Alignment = strings.ToLower(strings.TrimSpace(c.Chapters.Alignment))
	c.Highlights.Strategy = strings.ToLower(strings.TrimSpace(c.Highlights.Strategy))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Workflow.AssetParallelism <= 0 {
		c.Workflow.AssetParallelism = defaultParallelism
	}
}

func (c *Config) normalizeLocalize() error {
	raw := strings.TrimSpace(c.Output.Localize)
	if raw == "" {
		c.Output.Localize = ""
		return nil
	}
	normalized, ok := language.Normalize(raw)
	if !ok {
		return fmt.Errorf("output.localize: unrecognized language %q", raw)
	}
	c.Output.Localize = normalized
	return nil
}
