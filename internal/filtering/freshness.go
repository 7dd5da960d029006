package filtering

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openhiring/job-scout/internal/serpapi"
)

// Policy controls the freshness rules. RejectOffsetMarker keeps the
// conservative treatment of hints carrying a "+" marker ("30+ days ago",
// offset-bearing timestamps) as stale; it is a policy knob, not a constant,
// because the provider's date formats are ambiguous.
type Policy struct {
	MaxAgeDays         int
	RejectOffsetMarker bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAgeDays:         30,
		RejectOffsetMarker: true,
	}
}

// FreshnessFilter keeps listings posted within the trailing window. Missing
// or unparseable hints default to fresh.
type FreshnessFilter struct {
	policy Policy
	now    func() time.Time
}

func NewFreshness(policy Policy) *FreshnessFilter {
	if policy.MaxAgeDays <= 0 {
		policy.MaxAgeDays = DefaultPolicy().MaxAgeDays
	}
	return &FreshnessFilter{
		policy: policy,
		now:    time.Now,
	}
}

func (f *FreshnessFilter) Name() string { return "freshness" }

func (f *FreshnessFilter) Keep(l *serpapi.Listing) bool {
	return f.isFresh(l.PostedAt())
}

func (f *FreshnessFilter) isFresh(hint string) bool {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return true
	}

	if f.policy.RejectOffsetMarker && strings.Contains(hint, "+") {
		return false
	}

	now := f.now()
	posted, ok := parseHint(hint, now)
	if !ok {
		return true
	}

	cutoff := now.AddDate(0, 0, -f.policy.MaxAgeDays)
	return !posted.Before(cutoff)
}

var relativeHintRe = regexp.MustCompile(`(?i)^(\d+)\s*(hour|day|week|month)s?\s*ago$`)

// parseHint resolves the handful of posting-date forms the provider emits:
// relative phrases, "today"/"yesterday", and a few absolute layouts.
func parseHint(hint string, now time.Time) (time.Time, bool) {
	if m := relativeHintRe.FindStringSubmatch(hint); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour), true
		case "day":
			return now.AddDate(0, 0, -n), true
		case "week":
			return now.AddDate(0, 0, -7*n), true
		case "month":
			return now.AddDate(0, -n, 0), true
		}
	}

	switch strings.ToLower(hint) {
	case "today", "just posted":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02", "Jan 2, 2006"} {
		if posted, err := time.Parse(layout, hint); err == nil {
			return posted, true
		}
	}

	return time.Time{}, false
}
