// Package branding loads the optional YAML brand theme applied to
// exported clips. A theme names fonts, colors, and caption styling plus
// optional intro/outro media and a watermark.
package branding

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"creatorpack/internal/services"
)

// Watermark positions an overlay image on exported clips.
type Watermark struct {
	Path     string  `yaml:"path"`
	Position string  `yaml:"position"`
	Opacity  float64 `yaml:"opacity"`
}

// Theme is a parsed brand theme.
type Theme struct {
	Name      string            `yaml:"name"`
	Fonts     map[string]string `yaml:"fonts"`
	Colors    map[string]string `yaml:"colors"`
	Captions  map[string]any    `yaml:"captions"`
	Intro     string            `yaml:"intro"`
	Outro     string            `yaml:"outro"`
	Watermark *Watermark        `yaml:"watermark"`
	SafeAreas map[string]bool   `yaml:"safe_areas"`
}

// Load reads and validates a brand theme file. The name, fonts, colors,
// and captions fields are required.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "branding", "load",
			fmt.Sprintf("brand theme %s", path), err)
	}

	var theme Theme
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "branding", "load",
			fmt.Sprintf("parse brand theme %s", path), err)
	}
	if err := theme.validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "branding", "load", path, err)
	}
	return &theme, nil
}

func (t *Theme) validate() error {
	var missing []string
	if strings.TrimSpace(t.Name) == "" {
		missing = append(missing, "name")
	}
	if len(t.Fonts) == 0 {
		missing = append(missing, "fonts")
	}
	if len(t.Colors) == 0 {
		missing = append(missing, "colors")
	}
	if len(t.Captions) == 0 {
		missing = append(missing, "captions")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("brand theme missing fields: %s", strings.Join(missing, ", "))
	}
	if t.Watermark != nil {
		if t.Watermark.Opacity < 0 || t.Watermark.Opacity > 1 {
			return fmt.Errorf("watermark opacity %v outside [0, 1]", t.Watermark.Opacity)
		}
	}
	return nil
}
