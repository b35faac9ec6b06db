// Package ingest stages probed assets into the job's staging area. Local
// files are copied; remote assets are downloaded. Every staged file gets
// a SHA-256 checksum recorded for provenance.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"creatorpack/internal/services"
	"creatorpack/internal/sources"
	"creatorpack/internal/textutil"
)

// StagedAsset describes a media file placed in the staging area.
type StagedAsset struct {
	// Path is the absolute path to the staged copy.
	Path string
	// Checksum is the lowercase hex SHA-256 of the staged bytes.
	Checksum string
	// Size is the staged file size in bytes.
	Size int64
}

// Stager copies or downloads assets into a staging directory.
type Stager struct {
	client *http.Client
}

// NewStager returns a Stager. A nil client uses a default with a
// 10 minute timeout suited to large media downloads.
func NewStager(client *http.Client) *Stager {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Stager{client: client}
}

// Stage places the probed asset into stagingDir and returns the staged
// copy with its checksum. Local assets are copied; remote assets are
// fetched from their download URL.
func (s *Stager) Stage(ctx context.Context, meta sources.Metadata, stagingDir string) (StagedAsset, error) {
	var staged StagedAsset

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return staged, services.Wrap(services.ErrConfiguration, "ingest", "stage", "staging dir required", nil)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return staged, services.Wrap(services.ErrConfiguration, "ingest", "stage", "ensure staging dir", err)
	}

	switch {
	case meta.LocalPath != "":
		return s.stageLocal(meta.LocalPath, stagingDir)
	case meta.DownloadURL != "":
		return s.stageRemote(ctx, meta, stagingDir)
	default:
		return staged, services.Wrap(services.ErrValidation, "ingest", "stage",
			"asset has neither local path nor download URL", nil)
	}
}

func (s *Stager) stageLocal(source, stagingDir string) (StagedAsset, error) {
	var staged StagedAsset

	in, err := os.Open(source)
	if err != nil {
		return staged, services.Wrap(services.ErrNotFound, "ingest", "stage", source, err)
	}
	defer in.Close()

	dest := filepath.Join(stagingDir, textutil.SanitizeFileName(filepath.Base(source)))
	return writeStaged(in, dest)
}

func (s *Stager) stageRemote(ctx context.Context, meta sources.Metadata, stagingDir string) (StagedAsset, error) {
	var staged StagedAsset

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.DownloadURL, nil)
	if err != nil {
		return staged, services.Wrap(services.ErrTransient, "ingest", "download", "build request", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return staged, services.Wrap(services.ErrTransient, "ingest", "download", meta.DownloadURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return staged, services.Wrap(services.ErrExternalTool, "ingest", "download",
			fmt.Sprintf("%s returned status %d", meta.DownloadURL, resp.StatusCode), nil)
	}

	name := remoteFileName(meta)
	dest := filepath.Join(stagingDir, textutil.SanitizeFileName(name))
	return writeStaged(resp.Body, dest)
}

func writeStaged(r io.Reader, dest string) (StagedAsset, error) {
	var staged StagedAsset

	out, err := os.Create(dest)
	if err != nil {
		return staged, services.Wrap(services.ErrConfiguration, "ingest", "stage", dest, err)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, hasher), r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return staged, services.Wrap(services.ErrTransient, "ingest", "stage",
			fmt.Sprintf("write %s", dest), err)
	}

	staged.Path = dest
	staged.Checksum = hex.EncodeToString(hasher.Sum(nil))
	staged.Size = size
	return staged, nil
}

// ChecksumFile returns the lowercase hex SHA-256 of an existing file.
func ChecksumFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, in); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func remoteFileName(meta sources.Metadata) string {
	if base := urlBase(meta.DownloadURL); base != "" {
		return base
	}
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	return "asset"
}

func urlBase(raw string) string {
	trimmed := strings.Trim(raw, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	base := trimmed[idx+1:]
	if q := strings.IndexAny(base, "?#"); q >= 0 {
		base = base[:q]
	}
	return base
}
