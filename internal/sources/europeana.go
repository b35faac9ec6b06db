package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"creatorpack/internal/services"
)

// EuropeanaAdapter probes Europeana API record URLs. Only records whose
// rights statement permits reuse pass the downstream license gate.
type EuropeanaAdapter struct {
	client *http.Client
}

// NewEuropeanaAdapter returns a Europeana adapter using the given client.
func NewEuropeanaAdapter(client *http.Client) *EuropeanaAdapter {
	return &EuropeanaAdapter{client: client}
}

// Supports matches europeana.eu hosts.
func (a *EuropeanaAdapter) Supports(raw string) bool {
	host := hostOf(raw)
	return host == "europeana.eu" || strings.HasSuffix(host, ".europeana.eu")
}

type europeanaRecord struct {
	Title         []string `json:"title"`
	Rights        []string `json:"rights"`
	DCCreator     []string `json:"dcCreator"`
	DCDescription []string `json:"dcDescription"`
}

// Probe fetches the record JSON. The reference must be an API record URL;
// item pages on the www host carry no machine-readable rights metadata.
func (a *EuropeanaAdapter) Probe(ctx context.Context, raw string) (Metadata, error) {
	if !strings.Contains(raw, "api") {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "europeana",
			"provide a Europeana API record URL (https://api.europeana.eu/...)", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "europeana", "build request", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrTransient, "sources", "europeana", "record request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "sources", "europeana",
			fmt.Sprintf("record fetch failed with status %d", resp.StatusCode), nil)
	}

	var record europeanaRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "sources", "europeana", "decode record", err)
	}
	if len(record.Rights) == 0 {
		return Metadata{}, services.Wrap(services.ErrValidation, "sources", "europeana",
			"record missing rights metadata", nil)
	}

	rightsURL := record.Rights[0]
	meta := Metadata{
		Value:       raw,
		Title:       firstElement(record.Title, "Europeana Asset"),
		Creator:     firstElement(record.DCCreator, "Unknown"),
		RawLicense:  licenseCodeFromURL(rightsURL),
		LicenseName: rightsURL,
		LicenseURL:  rightsURL,
		Description: firstElement(record.DCDescription, ""),
	}
	return meta, nil
}

func firstElement(values []string, fallback string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return fallback
}
