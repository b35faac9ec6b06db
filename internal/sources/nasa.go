package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"creatorpack/internal/services"
)

// NASALicenseURL documents NASA's media usage guidelines.
const NASALicenseURL = "https://www.nasa.gov/multimedia/guidelines/index.html"

var nasaHosts = map[string]struct{}{
	"images.nasa.gov":     {},
	"images-api.nasa.gov": {},
	"www.nasa.gov":        {},
}

// NASAAdapter accepts NASA media URLs. NASA imagery is public domain,
// so probing only confirms the asset is reachable.
type NASAAdapter struct {
	client *http.Client
}

// NewNASAAdapter returns a NASA adapter using the given client.
func NewNASAAdapter(client *http.Client) *NASAAdapter {
	return &NASAAdapter{client: client}
}

// Supports matches the NASA media hosts.
func (a *NASAAdapter) Supports(raw string) bool {
	_, ok := nasaHosts[hostOf(raw)]
	return ok
}

// Probe issues a HEAD request to confirm reachability and derives a
// title from the URL path.
func (a *NASAAdapter) Probe(ctx context.Context, raw string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "nasa", "build request", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "nasa", "head request", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return Metadata{}, services.Wrap(services.ErrNotFound, "sources", "nasa",
			fmt.Sprintf("asset not reachable, status %d", resp.StatusCode), nil)
	}

	title := lastPathSegment(raw)
	if title == "" {
		title = "NASA Asset"
	} else {
		title = cases.Title(language.English).String(strings.ReplaceAll(title, "-", " "))
	}

	return Metadata{
		Value:       raw,
		Title:       title,
		Creator:     "NASA",
		RawLicense:  "public-domain",
		LicenseName: "NASA Public Domain",
		LicenseURL:  NASALicenseURL,
		Description: "NASA imagery is generally public domain but NASA logos must not be used.",
		DownloadURL: raw,
	}, nil
}
