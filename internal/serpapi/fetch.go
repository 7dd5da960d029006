package serpapi

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/search"
)

const defaultTargetCount = 15

// Result is the outcome of a single fetch invocation. Err is diagnostic
// only: a failed page request truncates the loop but the listings
// accumulated before it are still usable.
type Result struct {
	Listings      []*Listing
	NextPageToken string
	HasMore       bool
	Err           error
}

// Fetch accumulates raw listings page by page until target is reached or the
// provider stops returning a continuation token. An empty token starts a
// fresh query from page 1, which is also the only point where refinement
// links are resolved.
func (c *Client) Fetch(ctx context.Context, prefs *search.Preferences, token string, target int) *Result {
	if target <= 0 {
		target = defaultTargetCount
	}

	query, location := BuildQuery(prefs)
	res := &Result{NextPageToken: token}

	filterLink := ""
	if token == "" {
		filterLink = c.resolveFilterLink(ctx, query, location, prefs.RemotePreference)
	}

	page := 1
	hasMore := true
	for hasMore && len(res.Listings) < target {
		var resp pageResponse
		var err error

		if page == 1 && token == "" && filterLink != "" {
			c.logger.Debug("requesting first page via refinement link", zap.String("url", filterLink))
			err = c.getJSON(ctx, filterLink, url.Values{"api_key": []string{c.apiKey}}, &resp)
		} else {
			err = c.getJSON(ctx, c.APIURL, c.pageParams(query, location, res.NextPageToken), &resp)
		}

		if err != nil {
			c.logger.Warn("page request failed, keeping accumulated listings",
				zap.Int("page", page),
				zap.Int("accumulated", len(res.Listings)),
				zap.Error(err),
			)
			res.Err = err
			res.HasMore = false

			return res
		}

		if len(resp.JobsResults) == 0 {
			if resp.Error != "" {
				c.logger.Warn("provider reported an error", zap.Int("page", page), zap.String("error", resp.Error))
			}
			res.NextPageToken = ""
			res.HasMore = false

			return res
		}

		listings, err := decodeListings(resp.JobsResults)
		if err != nil {
			c.logger.Warn("malformed page payload, keeping accumulated listings",
				zap.Int("page", page),
				zap.Error(err),
			)
			res.Err = err
			res.HasMore = false

			return res
		}

		res.Listings = append(res.Listings, listings...)
		res.NextPageToken = resp.SearchMetadata.SerpapiPagination.NextPageToken
		hasMore = res.NextPageToken != ""
		res.HasMore = hasMore

		c.logger.Debug("fetched page",
			zap.Int("page", page),
			zap.Int("page_listings", len(listings)),
			zap.Int("accumulated", len(res.Listings)),
			zap.Bool("has_more", hasMore),
		)

		page++
	}

	return res
}

func (c *Client) pageParams(query, location, token string) url.Values {
	q := url.Values{}
	q.Set("engine", engine)
	q.Set("api_key", c.apiKey)
	q.Set("q", query)
	if location != "" {
		q.Set("location", location)
	}
	q.Set("num", pageSize)
	q.Set("hl", "en")
	q.Set("gl", "us")

	if token != "" {
		q.Set("next_page_token", token)
		// The provider can replay a cached first page for token requests.
		q.Set("no_cache", "true")
	}

	return q
}

// BuildQuery merges the free-text preference fields into the provider query
// in a fixed order: keywords, parenthesized industry OR-group, company
// preferences, additional preferences. When the candidate wants remote work
// only, the structured location is dropped and a literal remote marker joins
// the query instead.
func BuildQuery(prefs *search.Preferences) (query, location string) {
	parts := []string{prefs.Keywords}

	if len(prefs.Industry) > 0 {
		parts = append(parts, "("+strings.Join(prefs.Industry, " OR ")+")")
	}
	if prefs.CompanyPreferences != "" {
		parts = append(parts, prefs.CompanyPreferences)
	}
	if prefs.AdditionalPreferences != "" {
		parts = append(parts, prefs.AdditionalPreferences)
	}

	location = prefs.Location
	if prefs.RemotePreference == search.RemoteOnly {
		if !strings.Contains(strings.ToLower(parts[len(parts)-1]), "remote") {
			parts = append(parts, "remote")
		}
		location = ""
	}

	filtered := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filtered = append(filtered, part)
		}
	}

	return strings.Join(filtered, " "), location
}
