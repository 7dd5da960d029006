package filtering

import (
	"testing"

	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
)

func mustBands(t *testing.T) BandConfig {
	t.Helper()
	cfg, err := DefaultBands()
	if err != nil {
		t.Fatalf("loading default bands: %v", err)
	}
	return cfg
}

func mustBandFilter(t *testing.T, target string) *BandFilter {
	t.Helper()
	f, err := NewBand(mustBands(t), target)
	if err != nil {
		t.Fatalf("building band filter: %v", err)
	}
	return f
}

func listingWithText(title, description string) *serpapi.Listing {
	return &serpapi.Listing{Title: title, Description: description}
}

func TestBandAnyAlwaysPasses(t *testing.T) {
	f := mustBandFilter(t, "any")
	if !f.Keep(listingWithText("Principal Architect", "15+ years required")) {
		t.Fatalf("band any must pass every listing")
	}
}

func TestBandPatternMatch(t *testing.T) {
	f := mustBandFilter(t, "entry")
	if !f.Keep(listingWithText("Junior Analyst", "great first role")) {
		t.Fatalf("expected junior pattern to pass entry band")
	}
	if f.Keep(listingWithText("Senior Analyst", "own the roadmap")) {
		t.Fatalf("expected senior listing to fail entry band")
	}
}

func TestBandYearsRangeMidpoint(t *testing.T) {
	f := mustBandFilter(t, "mid")
	// 3-5 years has a midpoint of 4, inside mid's [3, 6) range.
	if !f.Keep(listingWithText("Analyst", "We require 3-5 years of experience")) {
		t.Fatalf("expected years-range midpoint to pass mid band")
	}
}

func TestBandYearsPlusForm(t *testing.T) {
	f := mustBandFilter(t, "senior")
	if !f.Keep(listingWithText("Architect", "8+ years of experience required")) {
		t.Fatalf("expected 8+ years to pass senior band")
	}

	entry := mustBandFilter(t, "entry")
	if entry.Keep(listingWithText("Architect", "8+ years of experience required")) {
		t.Fatalf("expected 8+ years to fail entry band")
	}
}

func TestBandMutualExclusion(t *testing.T) {
	// Matches both the senior and entry pattern sets, so both band queries
	// must reject it.
	l := listingWithText("Senior Engineer", "You will mentor our junior developers")

	if mustBandFilter(t, "entry").Keep(l) {
		t.Fatalf("entry band must reject a listing that also matches senior patterns")
	}
	if mustBandFilter(t, "senior").Keep(l) {
		t.Fatalf("senior band must reject a listing that also matches entry patterns")
	}
}

func TestBandLegacyTokenNormalized(t *testing.T) {
	f, err := NewBand(mustBands(t), "entry_level")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.target != search.BandEntry {
		t.Fatalf("expected normalized target %q, got %q", search.BandEntry, f.target)
	}
}

func TestBandUnknownTarget(t *testing.T) {
	if _, err := NewBand(mustBands(t), "executive"); err == nil {
		t.Fatalf("expected error for unknown band")
	}
}

func TestStatedYears(t *testing.T) {
	cases := []struct {
		text   string
		years  int
		stated bool
	}{
		{"requires 3-5 years of experience", 4, true},
		{"requires 5+ years", 5, true},
		{"2 years experience", 2, true},
		{"no experience needed", 0, false},
	}

	for _, tc := range cases {
		years, stated := statedYears(tc.text)
		if stated != tc.stated || years != tc.years {
			t.Fatalf("statedYears(%q) = (%d, %v), want (%d, %v)", tc.text, years, stated, tc.years, tc.stated)
		}
	}
}
