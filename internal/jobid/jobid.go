// Package jobid computes the deterministic job fingerprint that keys one
// pipeline run's export location. The fingerprint covers every logical
// input (asset identities, content metadata, policy values) and is
// independent of the order assets were supplied on the command line.
package jobid

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"creatorpack/internal/highlights"
)

// Prefix tags every fingerprint so identifiers are recognizable in paths.
const Prefix = "job-"

// digestLength is the number of hex digits kept from the digest.
const digestLength = 12

// KindLocal marks assets resolved from the local filesystem; such assets
// contribute file metadata so that editing a file invalidates fingerprints
// computed against its prior contents.
const KindLocal = "local"

// AssetRef identifies one input asset by source kind and raw value
// (path for local assets, canonical URL for remote ones).
type AssetRef struct {
	Kind  string
	Value string
}

// Params carries every policy field that participates in the fingerprint.
type Params struct {
	Template   string
	Minutes    int
	Smart      bool
	Highlights bool
	Highlight  highlights.Policy
	BrandPath  string
	Diarize    bool
	Localize   string
}

type assetPayload struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	MTime int64  `json:"mtime,omitempty"`
	Size  int64  `json:"size,omitempty"`
}

type filePayload struct {
	Path  string `json:"path"`
	MTime int64  `json:"mtime"`
	Size  int64  `json:"size"`
}

type fingerprintPayload struct {
	Assets     []assetPayload    `json:"assets"`
	Template   string            `json:"template"`
	Minutes    int               `json:"minutes"`
	Smart      bool              `json:"smart"`
	Highlights bool              `json:"highlights"`
	Highlight  highlights.Policy `json:"highlight_config"`
	Brand      *filePayload      `json:"brand"`
	Diarize    bool              `json:"diarize"`
	Localize   string            `json:"localize"`
}

// Compute returns the fingerprint for the given assets and parameters.
// Assets are sorted by (kind, value) before serialization, so supplying
// them in a different order never changes the result. Local assets and the
// brand theme contribute resolved path, modification time, and byte size.
func Compute(assets []AssetRef, params Params) (string, error) {
	payload := fingerprintPayload{
		Assets:     make([]assetPayload, 0, len(assets)),
		Template:   params.Template,
		Minutes:    params.Minutes,
		Smart:      params.Smart,
		Highlights: params.Highlights,
		Highlight:  params.Highlight,
		Diarize:    params.Diarize,
		Localize:   params.Localize,
	}

	sorted := make([]AssetRef, len(assets))
	copy(sorted, assets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Value < sorted[j].Value
	})

	for _, asset := range sorted {
		entry := assetPayload{Kind: asset.Kind, Value: asset.Value}
		if asset.Kind == KindLocal {
			resolved, info, err := statResolved(asset.Value)
			if err != nil {
				return "", fmt.Errorf("fingerprint asset %s: %w", asset.Value, err)
			}
			entry.Value = resolved
			entry.MTime = info.ModTime().UnixNano()
			entry.Size = info.Size()
		}
		payload.Assets = append(payload.Assets, entry)
	}

	if params.BrandPath != "" {
		resolved, info, err := statResolved(params.BrandPath)
		if err != nil {
			return "", fmt.Errorf("fingerprint brand theme %s: %w", params.BrandPath, err)
		}
		payload.Brand = &filePayload{Path: resolved, MTime: info.ModTime().UnixNano(), Size: info.Size()}
	}

	// encoding/json marshals struct fields in declaration order, giving a
	// canonical byte stream without sorting keys by hand.
	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint serialize: %w", err)
	}
	digest := sha256.Sum256(serialized)
	return Prefix + hex.EncodeToString(digest[:])[:digestLength], nil
}

func statResolved(path string) (string, os.FileInfo, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, err
	}
	return resolved, info, nil
}
