package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"creatorpack/internal/chapters"
	"creatorpack/internal/highlights"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	ExportDir  string `toml:"export_dir"`
	LogDir     string `toml:"log_dir"`
	InboxDir   string `toml:"inbox_dir"`
}

// Sources contains source adapter and license gate configuration.
type Sources struct {
	Allowed        []string `toml:"allowed"`
	BlockNcNd      bool     `toml:"block_nc_nd"`
	RequestTimeout int      `toml:"request_timeout"`
}

// Chapters contains chapter planning configuration.
type Chapters struct {
	TargetMinutes int    `toml:"target_minutes"`
	Alignment     string `toml:"alignment"`
	AllowSmart    bool   `toml:"allow_smart"`
}

// Highlights contains highlight planning configuration.
type Highlights struct {
	Enabled        bool    `toml:"enabled"`
	TopK           int     `toml:"top_k"`
	MinSeconds     float64 `toml:"min_seconds"`
	MaxSeconds     float64 `toml:"max_seconds"`
	PaddingSeconds float64 `toml:"padding_seconds"`
	Strategy       string  `toml:"strategy"`
}

// Transcription contains speech-to-text configuration.
type Transcription struct {
	Binary   string `toml:"binary"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	Diarize  bool   `toml:"diarize"`
}

// Output contains export bundle configuration.
type Output struct {
	Template  string `toml:"template"`
	BrandPath string `toml:"brand_path"`
	Localize  string `toml:"localize"`
}

// Workflow contains pipeline execution configuration.
type Workflow struct {
	AssetParallelism int `toml:"asset_parallelism"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for creatorpack.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sources       Sources       `toml:"sources"`
	Chapters      Chapters      `toml:"chapters"`
	Highlights    Highlights    `toml:"highlights"`
	Transcription Transcription `toml:"transcription"`
	Output        Output        `toml:"output"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/creatorpack/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and enum fields normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("creatorpack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// ChapterPolicy converts the configured chapter section into the planner's
// policy struct.
func (c *Config) ChapterPolicy() chapters.Policy {
	return chapters.Policy{
		TargetSeconds: c.Chapters.TargetMinutes * 60,
		Alignment:     chapters.Alignment(c.Chapters.Alignment),
		AllowSmart:    c.Chapters.AllowSmart,
	}
}

// HighlightPolicy converts the configured highlight section into the
// planner's policy struct.
func (c *Config) HighlightPolicy() highlights.Policy {
	return highlights.Policy{
		TopK:           c.Highlights.TopK,
		MinSeconds:     c.Highlights.MinSeconds,
		MaxSeconds:     c.Highlights.MaxSeconds,
		PaddingSeconds: c.Highlights.PaddingSeconds,
		Strategy:       highlights.Strategy(c.Highlights.Strategy),
	}
}

// AllowedSources returns the configured source allow-list as a set.
func (c *Config) AllowedSources() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Sources.Allowed))
	for _, name := range c.Sources.Allowed {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// EnsureDirectories creates the directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.ExportDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.InboxDir) != "" {
		if err := os.MkdirAll(c.Paths.InboxDir, 0o755); err != nil {
			return fmt.Errorf("create inbox directory %q: %w", c.Paths.InboxDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string { return "ffmpeg" }

// FFprobeBinary returns the ffprobe executable name.
func (c *Config) FFprobeBinary() string { return "ffprobe" }

// WhisperBinary returns the transcription executable name.
func (c *Config) WhisperBinary() string {
	if strings.TrimSpace(c.Transcription.Binary) != "" {
		return c.Transcription.Binary
	}
	return "whisper"
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
