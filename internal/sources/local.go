package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"creatorpack/internal/services"
)

// SidecarSuffix is appended to a media path to locate its optional
// license declaration, e.g. talk.mp4 -> talk.mp4.license.toml.
const SidecarSuffix = ".license.toml"

// LocalAdapter accepts files already on disk. Assets are treated as
// user-provided unless a sidecar file declares a concrete license.
type LocalAdapter struct{}

// NewLocalAdapter returns the local file adapter.
func NewLocalAdapter() *LocalAdapter {
	return &LocalAdapter{}
}

// Supports always reports true; the registry routes every local
// reference here before consulting the remote adapters.
func (a *LocalAdapter) Supports(string) bool { return true }

// sidecar mirrors the TOML license declaration next to a local file.
type sidecar struct {
	Code    string `toml:"code"`
	Name    string `toml:"name"`
	URL     string `toml:"url"`
	Title   string `toml:"title"`
	Creator string `toml:"creator"`
}

// Probe verifies the file exists and builds user-provided metadata,
// overridden by the sidecar declaration when one is present.
func (a *LocalAdapter) Probe(ctx context.Context, raw string) (Metadata, error) {
	path := strings.TrimSpace(strings.TrimPrefix(raw, "file://"))
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrNotFound, "sources", "local",
			fmt.Sprintf("local file %s", path), err)
	}
	if info.IsDir() {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "local",
			fmt.Sprintf("%s is a directory", path), nil)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "local", "resolve path", err)
	}

	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	meta := Metadata{
		Value:       raw,
		Title:       strings.ReplaceAll(stem, "_", " "),
		Creator:     "User Provided",
		RawLicense:  "user-provided",
		LicenseName: "User Provided",
		LocalPath:   abs,
	}

	side, found, err := loadSidecar(abs + SidecarSuffix)
	if err != nil {
		return Metadata{}, err
	}
	if found {
		if side.Code != "" {
			meta.RawLicense = side.Code
		}
		if side.Name != "" {
			meta.LicenseName = side.Name
		}
		if side.URL != "" {
			meta.LicenseURL = side.URL
		}
		if side.Title != "" {
			meta.Title = side.Title
		}
		if side.Creator != "" {
			meta.Creator = side.Creator
		}
	}
	return meta, nil
}

func loadSidecar(path string) (sidecar, bool, error) {
	var side sidecar
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return side, false, nil
		}
		return side, false, services.Wrap(services.ErrConfiguration, "sources", "local",
			fmt.Sprintf("read sidecar %s", path), err)
	}
	if err := toml.Unmarshal(data, &side); err != nil {
		return side, false, services.Wrap(services.ErrConfiguration, "sources", "local",
			fmt.Sprintf("parse sidecar %s", path), err)
	}
	return side, true, nil
}
