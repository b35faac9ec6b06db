package config

import (
	"errors"
	"fmt"
	"os"
)

// Validate ensures the configuration is usable. Planner policies are
// validated here so malformed values surface at parse time rather than
// deep inside planning.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.ChapterPolicy().Validate(); err != nil {
		return err
	}
	if err := c.HighlightPolicy().Validate(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.ExportDir == "" {
		return errors.New("paths.export_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSources() error {
	if len(c.Sources.Allowed) == 0 {
		return errors.New("sources.allowed must list at least one source")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Template == "" {
		return errors.New("output.template must be set")
	}
	if c.Output.BrandPath != "" {
		info, err := os.Stat(c.Output.BrandPath)
		if err != nil {
			return fmt.Errorf("output.brand_path: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("output.brand_path %q is a directory", c.Output.BrandPath)
		}
	}
	return nil
}
