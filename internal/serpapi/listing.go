package serpapi

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Listing is the provider-native job record. It is immutable once fetched;
// filtering and ranking derive from it but never rewrite its fields.
type Listing struct {
	Title              string `json:"title,omitempty"`
	CompanyName        string `json:"company_name,omitempty"`
	Location           string `json:"location,omitempty"`
	Via                string `json:"via,omitempty"`
	Description        string `json:"description,omitempty"`
	ShareLink          string `json:"share_link,omitempty"`
	JobID              string `json:"job_id,omitempty"`
	DetectedExtensions struct {
		PostedAt     string `json:"posted_at,omitempty"`
		ScheduleType string `json:"schedule_type,omitempty"`
		WorkFromHome bool   `json:"work_from_home,omitempty"`
	} `json:"detected_extensions,omitempty"`
	ApplyOptions []struct {
		Title string `json:"title,omitempty"`
		Link  string `json:"link,omitempty"`
	} `json:"apply_options,omitempty"`
	RelatedLinks []struct {
		Link string `json:"link,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"related_links,omitempty"`
}

// BestLink resolves an application URL from the listing metadata: the first
// populated apply option, then the share link, then the first related link.
// A listing without any of them yields an empty string, never an error.
func (l *Listing) BestLink() string {
	for _, opt := range l.ApplyOptions {
		if opt.Link != "" {
			return opt.Link
		}
	}

	if l.ShareLink != "" {
		return l.ShareLink
	}

	if len(l.RelatedLinks) > 0 && l.RelatedLinks[0].Link != "" {
		return l.RelatedLinks[0].Link
	}

	return ""
}

// PostedAt returns the raw posting-date hint, which may be relative
// ("2 weeks ago"), absolute, or absent.
func (l *Listing) PostedAt() string {
	return l.DetectedExtensions.PostedAt
}

type Listings struct {
	Items []*Listing
}

func (l *Listings) Len() int {
	return len(l.Items)
}

func decodeListings(items []map[string]any) ([]*Listing, error) {
	var listings []*Listing

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &listings,
		TagName:  "json",
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	return listings, nil
}
