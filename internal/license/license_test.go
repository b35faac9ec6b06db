package license

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  Code
		ok    bool
	}{
		{"CC-BY", CCBY, true},
		{"  cc_by  ", CCBY, true},
		{"Creative Commons Attribution", CCBY, true},
		{"cc0", CC0, true},
		{"CC-0", CC0, true},
		{"public domain", CC0, true},
		{"pd", PublicDomain, true},
		{"PDM", PublicDomain, true},
		{"iodl-2.0", IODL2, true},
		{"user-provided", UserProvided, true},
		{"unknown-license", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			if ok != tt.ok {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGateAllowsAttributedLicense(t *testing.T) {
	verdict, err := Gate("cc-by", "CC-BY 4.0", "https://creativecommons.org/licenses/by/4.0/", true)
	if err != nil {
		t.Fatalf("Gate returned error: %v", err)
	}
	if verdict.Code != CCBY {
		t.Errorf("Code = %q, want %q", verdict.Code, CCBY)
	}
	if !verdict.AttributionRequired {
		t.Error("expected attribution to be required for CC-BY")
	}
}

func TestGateAllowsCC0WithoutAttribution(t *testing.T) {
	verdict, err := Gate("cc0", "CC0", "https://creativecommons.org/publicdomain/zero/1.0/", true)
	if err != nil {
		t.Fatalf("Gate returned error: %v", err)
	}
	if verdict.AttributionRequired {
		t.Error("CC0 must not require attribution")
	}
}

func TestGateRejectsNcByDisplayName(t *testing.T) {
	// Code normalizes fine; the display name still trips the NC screen.
	_, err := Gate("cc-by", "CC-BY-NC 4.0", "https://example.com/license", true)
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.Name != "CC-BY-NC 4.0" {
		t.Errorf("rejected name = %q", rejected.Name)
	}
}

func TestGateAllowsNcNameWhenScreenDisabled(t *testing.T) {
	if _, err := Gate("cc-by", "CC-BY-NC 4.0", "", false); err != nil {
		t.Fatalf("Gate with blockNcNd=false returned error: %v", err)
	}
}

func TestGateRejectsBlockedSuffixBeforeLookup(t *testing.T) {
	for _, raw := range []string{"cc-by-sa", "cc-by-nc", "cc-by-nd", "CC-BY-SA"} {
		if _, err := Gate(raw, "Creative Commons", "", false); err == nil {
			t.Errorf("Gate(%q) should reject on raw-code suffix", raw)
		}
	}
}

func TestGateRejectsUnknownLicense(t *testing.T) {
	_, err := Gate("unknown-license", "Mystery License", "", true)
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.ErrorKind() != "validation" {
		t.Errorf("ErrorKind = %q, want validation", rejected.ErrorKind())
	}
}

func TestGateRejectsOutsideAllowSet(t *testing.T) {
	_, err := Gate("cc-by", "CC-BY 4.0", "", true, WithAllowSet(CC0, PublicDomain))
	if err == nil {
		t.Fatal("expected rejection for code outside allow-set")
	}
}

func TestGateEmptyCode(t *testing.T) {
	if _, err := Gate("", "", "", true); err == nil {
		t.Fatal("expected rejection for empty license code")
	}
}

func TestRequiresAttribution(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{CCBY, true},
		{IODL2, true},
		{CC0, false},
		{PublicDomain, false},
		{UserProvided, false},
	}
	for _, tt := range tests {
		if got := RequiresAttribution(tt.code); got != tt.want {
			t.Errorf("RequiresAttribution(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
