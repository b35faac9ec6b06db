// Package language normalizes language identifiers for the localize policy
// and transcript metadata. BCP 47 parsing is delegated to golang.org/x/text;
// a small word table covers the spelled-out names users type on the
// command line ("spanish", "german").
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var byWord = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
}

// Normalize canonicalizes a language identifier to its base BCP 47 tag
// ("en-US" -> "en", "SPANISH" -> "es"). Returns ok=false for input that is
// neither a known word nor a parseable tag.
func Normalize(code string) (string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	if mapped, ok := byWord[code]; ok {
		code = mapped
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", false
	}
	return base.String(), true
}

// DisplayName returns the English display name for a recognized code, the
// uppercased input for unrecognized codes, and "Unknown" for empty input.
func DisplayName(code string) string {
	normalized, ok := Normalize(code)
	if !ok {
		if strings.TrimSpace(code) == "" {
			return "Unknown"
		}
		return strings.ToUpper(strings.TrimSpace(code))
	}
	tag := language.MustParse(normalized)
	return display.English.Tags().Name(tag)
}
