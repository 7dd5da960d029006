package filtering

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
)

//go:embed bands.yaml
var defaultBandsYAML []byte

// BandRule holds the recognition patterns and the stated-experience range
// for one band. Both the patterns and the [MinYears, MaxYears) range are
// heuristics against free-text listings, so they live here as data rather
// than in code.
type BandRule struct {
	Patterns []string `yaml:"patterns"`
	MinYears int      `yaml:"min_years"`
	MaxYears int      `yaml:"max_years"`
}

// BandConfig maps canonical band names to their rules.
type BandConfig map[string]BandRule

// DefaultBands returns the embedded band table.
func DefaultBands() (BandConfig, error) {
	var cfg BandConfig
	if err := yaml.Unmarshal(defaultBandsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded band config: %w", err)
	}
	return cfg, nil
}

// BandFilter keeps listings matching the target experience band. A listing
// matches on band patterns OR a stated years-of-experience figure inside the
// band's range, but is rejected outright when it also matches another band's
// patterns. That mutual exclusion keeps a senior-heavy posting out of an
// entry-level result set even when it mentions "junior" somewhere.
type BandFilter struct {
	target   string
	rules    BandConfig
	compiled map[string][]*regexp.Regexp
}

func NewBand(cfg BandConfig, target string) (*BandFilter, error) {
	target = search.NormalizeBand(target)
	if target != search.BandAny {
		if _, ok := cfg[target]; !ok {
			return nil, fmt.Errorf("unknown experience band %q", target)
		}
	}

	compiled := make(map[string][]*regexp.Regexp, len(cfg))
	for band, rule := range cfg {
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("compile band %q pattern %q: %w", band, pattern, err)
			}
			compiled[band] = append(compiled[band], re)
		}
	}

	return &BandFilter{
		target:   target,
		rules:    cfg,
		compiled: compiled,
	}, nil
}

func (f *BandFilter) Name() string { return "experience_band" }

func (f *BandFilter) Keep(l *serpapi.Listing) bool {
	if f.target == search.BandAny {
		return true
	}

	text := strings.ToLower(l.Title + " " + l.Description)

	patternOK := anyMatch(f.compiled[f.target], text)

	rule := f.rules[f.target]
	years, stated := statedYears(text)
	yearsOK := stated && years >= rule.MinYears && years < rule.MaxYears

	if !patternOK && !yearsOK {
		return false
	}

	for band, patterns := range f.compiled {
		if band == f.target {
			continue
		}
		if anyMatch(patterns, text) {
			return false
		}
	}

	return true
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var (
	yearsRangeRe  = regexp.MustCompile(`(\d{1,2})\s*-\s*(\d{1,2})\s*years`)
	yearsSingleRe = regexp.MustCompile(`(\d{1,2})\s*\+?\s*years?`)
)

// statedYears extracts a stated years-of-experience figure from the listing
// text: "3-5 years" yields the midpoint, "5+ years" yields 5.
func statedYears(text string) (int, bool) {
	if m := yearsRangeRe.FindStringSubmatch(text); m != nil {
		low, _ := strconv.Atoi(m[1])
		high, _ := strconv.Atoi(m[2])
		return (low + high) / 2, true
	}

	if m := yearsSingleRe.FindStringSubmatch(text); m != nil {
		years, _ := strconv.Atoi(m[1])
		return years, true
	}

	return 0, false
}
