package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"creatorpack/internal/services"
)

// Source kind names. These are the keys used in the registry and in the
// configuration allow-list.
const (
	KindLocal     = "local"
	KindCommons   = "commons"
	KindNASA      = "nasa"
	KindArchive   = "archive"
	KindPexels    = "pexels"
	KindEuropeana = "europeana"
)

// Metadata describes a probed asset before gating and staging.
type Metadata struct {
	// Value is the raw reference the user supplied (path or URL).
	Value string
	// Title is a human readable asset title.
	Title string
	// Creator names the author or publishing agency.
	Creator string
	// RawLicense is the license code text as declared by the source,
	// fed to the normalizer unchanged.
	RawLicense string
	// LicenseName is the display name the source attaches to the
	// license.
	LicenseName string
	// LicenseURL points at the license terms.
	LicenseURL string
	// Description is optional free-form context from the source.
	Description string
	// LocalPath is set when the asset already lives on disk.
	LocalPath string
	// DownloadURL is set when the asset must be fetched before staging.
	DownloadURL string
}

// Adapter resolves references it recognizes into Metadata.
type Adapter interface {
	// Supports reports whether this adapter can probe the reference.
	Supports(raw string) bool
	// Probe fetches metadata for the reference.
	Probe(ctx context.Context, raw string) (Metadata, error)
}

// Registry holds the known adapters keyed by source kind.
type Registry struct {
	adapters map[string]Adapter
	order    []string
	allowed  map[string]struct{}
}

// NewRegistry returns a registry with the default adapters installed.
// client is used by the remote adapters; nil uses a client with a
// 15 second timeout. allowed restricts which kinds may probe; empty
// allows every kind.
func NewRegistry(client *http.Client, allowed []string) *Registry {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	reg := &Registry{adapters: make(map[string]Adapter)}
	reg.Register(KindCommons, NewCommonsAdapter(client))
	reg.Register(KindNASA, NewNASAAdapter(client))
	reg.Register(KindArchive, NewArchiveAdapter(client))
	reg.Register(KindPexels, NewPexelsAdapter(client))
	reg.Register(KindEuropeana, NewEuropeanaAdapter(client))
	reg.Register(KindLocal, NewLocalAdapter())
	if len(allowed) > 0 {
		reg.allowed = make(map[string]struct{}, len(allowed))
		for _, kind := range allowed {
			reg.allowed[strings.ToLower(strings.TrimSpace(kind))] = struct{}{}
		}
	}
	return reg
}

// Register installs or replaces an adapter under the given kind.
func (r *Registry) Register(kind string, adapter Adapter) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if _, exists := r.adapters[kind]; !exists {
		r.order = append(r.order, kind)
	}
	r.adapters[kind] = adapter
}

// Kinds returns the registered kinds in a stable order.
func (r *Registry) Kinds() []string {
	kinds := append([]string(nil), r.order...)
	sort.Strings(kinds)
	return kinds
}

// Allowed reports whether the kind passes the configured allow-list.
func (r *Registry) Allowed(kind string) bool {
	if r.allowed == nil {
		return true
	}
	_, ok := r.allowed[strings.ToLower(strings.TrimSpace(kind))]
	return ok
}

// Detect returns the kind and adapter responsible for the reference.
// Paths and file:// URLs always resolve to the local adapter; remote
// URLs are matched against each adapter's host rules.
func (r *Registry) Detect(raw string) (string, Adapter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, services.Wrap(services.ErrValidation, "sources", "detect", "empty reference", nil)
	}
	if isLocalReference(raw) {
		return r.lookup(KindLocal, raw)
	}
	for _, kind := range r.order {
		if kind == KindLocal {
			continue
		}
		if r.adapters[kind].Supports(raw) {
			return r.lookup(kind, raw)
		}
	}
	return "", nil, services.Wrap(services.ErrValidation, "sources", "detect",
		fmt.Sprintf("no adapter for %q", raw), nil)
}

// Probe detects the adapter for the reference, enforces the allow-list,
// and returns the kind alongside the probed metadata.
func (r *Registry) Probe(ctx context.Context, raw string) (string, Metadata, error) {
	kind, adapter, err := r.Detect(raw)
	if err != nil {
		return "", Metadata{}, err
	}
	meta, err := adapter.Probe(ctx, raw)
	if err != nil {
		return kind, Metadata{}, err
	}
	return kind, meta, nil
}

func (r *Registry) lookup(kind, raw string) (string, Adapter, error) {
	if !r.Allowed(kind) {
		return "", nil, services.Wrap(services.ErrValidation, "sources", "detect",
			fmt.Sprintf("source kind %q is not in the allow-list", kind), nil)
	}
	return kind, r.adapters[kind], nil
}

func isLocalReference(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return true
	}
	switch parsed.Scheme {
	case "", "file":
		return true
	}
	// Windows-style drive letters parse as single-letter schemes.
	return len(parsed.Scheme) == 1
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}

func lastPathSegment(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	trimmed := strings.Trim(parsed.Path, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}
