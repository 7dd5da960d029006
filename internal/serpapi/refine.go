package serpapi

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/search"
)

type filterGroup struct {
	Name    string         `json:"name"`
	Options []filterOption `json:"options"`
}

type filterOption struct {
	Name        string `json:"name"`
	Text        string `json:"text"`
	Value       string `json:"value"`
	SerpapiLink string `json:"serpapi_link"`
}

// resolveFilterLink probes the provider once for refinement chips and picks
// the "Past month" date filter, replaced by the "On-site" work-arrangement
// filter when the candidate excludes remote work. Any failure falls back to
// the unrefined request.
func (c *Client) resolveFilterLink(ctx context.Context, query, location, remotePref string) string {
	q := url.Values{}
	q.Set("engine", engine)
	q.Set("api_key", c.apiKey)
	q.Set("q", query)
	if location != "" {
		q.Set("location", location)
	}
	// One result is enough to obtain the filter chips.
	q.Set("num", "1")

	var resp pageResponse
	if err := c.getJSON(ctx, c.APIURL, q, &resp); err != nil {
		c.logger.Debug("refinement probe failed, proceeding without filters", zap.Error(err))
		return ""
	}

	groups := resp.SearchMetadata.GoogleJobsFilters

	link := ""
	if opt := findOption(groups, []string{"Date posted"}, "Past month"); opt != nil && opt.SerpapiLink != "" {
		link = opt.SerpapiLink
		c.logger.Debug("found date refinement link", zap.String("url", link))
	} else {
		c.logger.Debug("no 'Past month' refinement offered by provider")
	}

	if remotePref == search.OnSiteOnly {
		if opt := findOnSiteOption(groups); opt != nil && opt.SerpapiLink != "" {
			// The work-arrangement chip is more specific than the date one.
			link = opt.SerpapiLink
			c.logger.Debug("found on-site refinement link", zap.String("url", link))
		} else {
			c.logger.Debug("no on-site refinement offered by provider")
		}
	}

	return link
}

func findOption(groups []filterGroup, groupNames []string, optionName string) *filterOption {
	for _, group := range groups {
		for _, name := range groupNames {
			if group.Name != name {
				continue
			}
			for idx, opt := range group.Options {
				if opt.Name == optionName {
					return &group.Options[idx]
				}
			}
		}
	}

	return nil
}

func findOnSiteOption(groups []filterGroup) *filterOption {
	for _, group := range groups {
		switch group.Name {
		case "Type", "Remote", "Work Arrangement":
		default:
			continue
		}
		for idx, opt := range group.Options {
			if strings.EqualFold(opt.Text, "on-site") || strings.EqualFold(opt.Value, "jt_on_site") {
				return &group.Options[idx]
			}
		}
	}

	return nil
}
