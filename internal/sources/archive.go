package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"creatorpack/internal/services"
)

// ArchiveAPIBase is the Internet Archive item metadata endpoint.
const ArchiveAPIBase = "https://archive.org/metadata/"

// ArchiveAdapter probes Internet Archive items via the metadata API.
type ArchiveAdapter struct {
	client  *http.Client
	apiBase string
}

// NewArchiveAdapter returns an Internet Archive adapter using the given
// client.
func NewArchiveAdapter(client *http.Client) *ArchiveAdapter {
	return &ArchiveAdapter{client: client, apiBase: ArchiveAPIBase}
}

// WithAPIBase overrides the metadata endpoint (for testing).
func (a *ArchiveAdapter) WithAPIBase(apiBase string) *ArchiveAdapter {
	if !strings.HasSuffix(apiBase, "/") {
		apiBase += "/"
	}
	a.apiBase = apiBase
	return a
}

// Supports matches archive.org URLs.
func (a *ArchiveAdapter) Supports(raw string) bool {
	return strings.Contains(hostOf(raw), "archive.org")
}

type archiveResponse struct {
	Metadata struct {
		Title       string `json:"title"`
		Creator     string `json:"creator"`
		LicenseURL  string `json:"licenseurl"`
		License     string `json:"license"`
		Description string `json:"description"`
	} `json:"metadata"`
}

// Probe fetches item metadata for the identifier named by the URL's
// first path segment.
func (a *ArchiveAdapter) Probe(ctx context.Context, raw string) (Metadata, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "archive", "parse URL", err)
	}
	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "archive",
			"URL missing item identifier", nil)
	}
	segments := strings.Split(path, "/")
	identifier := segments[len(segments)-1]
	if segments[0] == "details" || segments[0] == "download" {
		if len(segments) < 2 {
			return Metadata{}, services.Wrap(services.ErrValidation, "sources", "archive",
				"URL missing item identifier", nil)
		}
		identifier = segments[1]
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+identifier, nil)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "archive", "build request", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "archive", "metadata request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "sources", "archive",
			fmt.Sprintf("metadata fetch failed with status %d", resp.StatusCode), nil)
	}

	var payload archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "sources", "archive", "decode response", err)
	}

	md := payload.Metadata
	licenseRef := firstNonEmpty(md.LicenseURL, md.License)
	meta := Metadata{
		Value:       raw,
		Title:       firstNonEmpty(md.Title, identifier),
		Creator:     firstNonEmpty(md.Creator, "Unknown"),
		RawLicense:  licenseCodeFromURL(licenseRef),
		LicenseName: firstNonEmpty(licenseRef, "Unknown"),
		LicenseURL:  firstNonEmpty(md.LicenseURL, raw),
		Description: md.Description,
	}
	return meta, nil
}

// licenseCodeFromURL derives a raw license code from a Creative Commons
// style license URL so the normalizer can classify it. NC/ND/SA variants
// come through with their suffix intact and get rejected downstream.
func licenseCodeFromURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil || parsed.Host == "" {
		return ref
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		switch strings.ToLower(segment) {
		case "publicdomain":
			if i+1 < len(segments) && strings.EqualFold(segments[i+1], "mark") {
				return "public domain mark"
			}
			return "cc0"
		case "licenses":
			if i+1 < len(segments) {
				return "cc-" + strings.ToLower(segments[i+1])
			}
		}
	}
	return segments[len(segments)-1]
}
