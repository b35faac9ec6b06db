package license

import (
	"fmt"
	"strings"
)

// Code identifies a recognized license.
type Code string

const (
	CCBY         Code = "cc-by"
	CC0          Code = "cc0"
	PublicDomain Code = "public-domain"
	IODL2        Code = "iodl-2.0"
	UserProvided Code = "user-provided"
)

// synonyms maps lowercased, trimmed raw license strings to recognized codes.
var synonyms = map[string]Code{
	"cc-by":                          CCBY,
	"cc_by":                          CCBY,
	"ccby":                           CCBY,
	"cc by":                          CCBY,
	"cc-by-4.0":                      CCBY,
	"cc-by-3.0":                      CCBY,
	"creative commons attribution":   CCBY,
	"cc0":                            CC0,
	"cc-0":                           CC0,
	"cc0 1.0":                        CC0,
	"public domain":                  CC0,
	"pd":                             PublicDomain,
	"public-domain":                  PublicDomain,
	"pdm":                            PublicDomain,
	"public domain mark":             PublicDomain,
	"iodl2":                          IODL2,
	"iodl-2.0":                       IODL2,
	"user":                           UserProvided,
	"user-provided":                  UserProvided,
}

// attributionRequired lists codes whose terms demand crediting the creator.
var attributionRequired = map[Code]struct{}{
	CCBY:  {},
	IODL2: {},
}

// blockedSuffixes reject share-alike and NC/ND variants on the raw code text
// before the allow-list lookup even runs.
var blockedSuffixes = []string{"-sa", "-nc", "-nd"}

// Normalize maps a raw license string onto a recognized code.
// Matching is case-insensitive and whitespace-trimmed. Unknown input
// returns ok=false, which is not an error by itself; the gate decides.
func Normalize(raw string) (Code, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	code, ok := synonyms[key]
	return code, ok
}

// RequiresAttribution reports whether the code's terms require crediting.
func RequiresAttribution(code Code) bool {
	_, ok := attributionRequired[code]
	return ok
}

// AllCodes returns the closed set of recognized codes.
func AllCodes() []Code {
	return []Code{CCBY, CC0, PublicDomain, IODL2, UserProvided}
}

// Verdict is the outcome of gating one asset's license declaration.
type Verdict struct {
	Code                Code
	Name                string
	URL                 string
	AttributionRequired bool
}

// RejectedError reports a license that failed the gate. It carries the
// offending raw code and display name for operator-facing messages.
type RejectedError struct {
	RawCode string
	Name    string
	Reason  string
}

func (e *RejectedError) Error() string {
	if e.Name != "" && !strings.EqualFold(e.Name, e.RawCode) {
		return fmt.Sprintf("license rejected: %s (%q / %q)", e.Reason, e.RawCode, e.Name)
	}
	return fmt.Sprintf("license rejected: %s (%q)", e.Reason, e.RawCode)
}

// ErrorKind classifies the rejection for queue status mapping.
// License validity is a property of the asset, so retrying is pointless.
func (e *RejectedError) ErrorKind() string { return "validation" }

// GateOption adjusts gate behavior.
type GateOption func(*gateConfig)

type gateConfig struct {
	allow map[Code]struct{}
}

// WithAllowSet restricts the gate to the provided codes. The default
// allow-set is every recognized code.
func WithAllowSet(codes ...Code) GateOption {
	return func(cfg *gateConfig) {
		cfg.allow = make(map[Code]struct{}, len(codes))
		for _, code := range codes {
			cfg.allow[code] = struct{}{}
		}
	}
}

// Gate validates one asset's license declaration and returns its verdict.
//
// rawCode is the machine code reported by the source adapter; name and url
// are the human-readable display name and license URL. When blockNcNd is
// set, the display name is additionally screened for "nc"/"nd" substrings:
// a code can normalize successfully yet still be rejected by its name.
func Gate(rawCode, name, url string, blockNcNd bool, opts ...GateOption) (Verdict, error) {
	cfg := gateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	trimmed := strings.ToLower(strings.TrimSpace(rawCode))
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return Verdict{}, &RejectedError{RawCode: rawCode, Name: name, Reason: fmt.Sprintf("code carries blocked %q suffix", suffix)}
		}
	}

	code, ok := Normalize(rawCode)
	if !ok {
		return Verdict{}, &RejectedError{RawCode: rawCode, Name: name, Reason: "unrecognized license"}
	}

	if cfg.allow != nil {
		if _, allowed := cfg.allow[code]; !allowed {
			return Verdict{}, &RejectedError{RawCode: rawCode, Name: name, Reason: "not in allow-list"}
		}
	}

	if blockNcNd {
		lowered := strings.ToLower(name)
		if strings.Contains(lowered, "nc") || strings.Contains(lowered, "nd") {
			return Verdict{}, &RejectedError{RawCode: rawCode, Name: name, Reason: "NC/ND licenses blocked by policy"}
		}
	}

	return Verdict{
		Code:                code,
		Name:                name,
		URL:                 url,
		AttributionRequired: RequiresAttribution(code),
	}, nil
}
