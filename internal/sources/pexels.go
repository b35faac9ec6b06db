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

// PexelsLicenseURL documents the Pexels license terms.
const PexelsLicenseURL = "https://www.pexels.com/license/"

// PexelsAdapter accepts pexels.com asset URLs. Every public Pexels asset
// is published under the Pexels License, which permits commercial reuse;
// the gate treats it as CC0-equivalent. Probing only confirms the asset
// is reachable.
type PexelsAdapter struct {
	client *http.Client
}

// NewPexelsAdapter returns a Pexels adapter using the given client.
func NewPexelsAdapter(client *http.Client) *PexelsAdapter {
	return &PexelsAdapter{client: client}
}

// Supports matches pexels.com hosts.
func (a *PexelsAdapter) Supports(raw string) bool {
	host := hostOf(raw)
	return host == "pexels.com" || strings.HasSuffix(host, ".pexels.com")
}

// Probe issues a HEAD request and derives a title from the URL slug.
func (a *PexelsAdapter) Probe(ctx context.Context, raw string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "pexels", "build request", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "pexels", "head request", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return Metadata{}, services.Wrap(services.ErrNotFound, "sources", "pexels",
			fmt.Sprintf("asset not reachable, status %d", resp.StatusCode), nil)
	}

	title := lastPathSegment(raw)
	if title == "" {
		title = "Pexels Asset"
	} else {
		title = cases.Title(language.English).String(strings.ReplaceAll(title, "-", " "))
	}

	return Metadata{
		Value:       raw,
		Title:       title,
		Creator:     "Pexels Creator",
		RawLicense:  "cc0",
		LicenseName: "Pexels License (treated as CC0)",
		LicenseURL:  PexelsLicenseURL,
		DownloadURL: raw,
	}, nil
}
