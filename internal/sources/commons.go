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

// CommonsAPIURL is the Wikimedia Commons MediaWiki API endpoint.
const CommonsAPIURL = "https://commons.wikimedia.org/w/api.php"

// CommonsAdapter probes Wikimedia Commons file pages through the
// imageinfo/extmetadata API.
type CommonsAdapter struct {
	client *http.Client
	apiURL string
}

// NewCommonsAdapter returns a Commons adapter using the given client.
func NewCommonsAdapter(client *http.Client) *CommonsAdapter {
	return &CommonsAdapter{client: client, apiURL: CommonsAPIURL}
}

// WithAPIURL overrides the API endpoint (for testing).
func (a *CommonsAdapter) WithAPIURL(apiURL string) *CommonsAdapter {
	a.apiURL = apiURL
	return a
}

// Supports matches commons.wikimedia.org URLs.
func (a *CommonsAdapter) Supports(raw string) bool {
	return strings.Contains(hostOf(raw), "commons.wikimedia.org")
}

type commonsExtValue struct {
	Value string `json:"value"`
}

type commonsResponse struct {
	Query struct {
		Pages []struct {
			ImageInfo []struct {
				URL         string                     `json:"url"`
				ExtMetadata map[string]commonsExtValue `json:"extmetadata"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// Probe queries the Commons API for the file named by the URL's final
// path segment and extracts license metadata.
func (a *CommonsAdapter) Probe(ctx context.Context, raw string) (Metadata, error) {
	title := lastPathSegment(raw)
	if title == "" {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "commons",
			"URL missing file title", nil)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", "File:"+title)
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "extmetadata|url")
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "commons", "build request", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "commons", "api request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "sources", "commons",
			fmt.Sprintf("api request failed with status %d", resp.StatusCode), nil)
	}

	var payload commonsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "sources", "commons", "decode response", err)
	}
	if len(payload.Query.Pages) == 0 || len(payload.Query.Pages[0].ImageInfo) == 0 {
		return Metadata{}, services.Wrap(services.ErrNotFound, "sources", "commons",
			fmt.Sprintf("no imageinfo for %s", title), nil)
	}

	info := payload.Query.Pages[0].ImageInfo[0]
	meta := payload.Query.Pages[0].ImageInfo[0].ExtMetadata

	licenseShort := meta["LicenseShortName"].Value
	licenseURL := meta["LicenseUrl"].Value
	if licenseURL == "" {
		licenseURL = raw
	}
	displayTitle := meta["ObjectName"].Value
	if displayTitle == "" {
		displayTitle = strings.ReplaceAll(title, "_", " ")
	}
	creator := stripMarkup(meta["Artist"].Value)
	if creator == "" {
		creator = "Unknown Creator"
	}

	return Metadata{
		Value:       raw,
		Title:       displayTitle,
		Creator:     creator,
		RawLicense:  licenseShort,
		LicenseName: firstNonEmpty(licenseShort, "Unknown"),
		LicenseURL:  licenseURL,
		Description: stripMarkup(meta["ImageDescription"].Value),
		DownloadURL: info.URL,
	}, nil
}

// stripMarkup removes HTML tags from extmetadata values, which Commons
// frequently wraps in anchor elements.
func stripMarkup(value string) string {
	var b strings.Builder
	inTag := false
	for _, r := range value {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
