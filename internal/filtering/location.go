package filtering

import (
	"regexp"
	"strings"

	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
)

var remotePattern = regexp.MustCompile(`(?i)(remote|anywhere)`)

// LocationFilter applies the location rule selected by the remote
// preference. All comparisons are case-insensitive substring checks against
// the listing's free-text location.
type LocationFilter struct {
	city       string
	remotePref string
}

func NewLocation(city, remotePref string) *LocationFilter {
	return &LocationFilter{
		city:       strings.ToLower(strings.TrimSpace(city)),
		remotePref: remotePref,
	}
}

func (f *LocationFilter) Name() string { return "location" }

func (f *LocationFilter) Keep(l *serpapi.Listing) bool {
	loc := strings.ToLower(l.Location)

	switch f.remotePref {
	case search.RemoteOnly:
		return remotePattern.MatchString(loc)
	case search.OnSiteOnly:
		return f.city != "" && strings.Contains(loc, f.city) && !remotePattern.MatchString(loc)
	default:
		return (f.city != "" && strings.Contains(loc, f.city)) || remotePattern.MatchString(loc)
	}
}
