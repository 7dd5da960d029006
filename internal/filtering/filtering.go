package filtering

import (
	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/serpapi"
)

// Filter represents a single relevance predicate applied to listings.
type Filter interface {
	Name() string
	Keep(l *serpapi.Listing) bool
}

// Step describes the result of executing a filter over a listing set.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Verdict records each predicate's decision for one listing. A listing
// survives only when every predicate holds.
type Verdict struct {
	BandOK     bool
	LocationOK bool
	FreshOK    bool
}

func (v Verdict) Pass() bool {
	return v.BandOK && v.LocationOK && v.FreshOK
}

// Chain is the fixed band/location/freshness predicate set run over fetched
// listings before ranking.
type Chain struct {
	band      *BandFilter
	location  *LocationFilter
	freshness *FreshnessFilter
	logger    *zap.Logger
}

func NewChain(band *BandFilter, location *LocationFilter, freshness *FreshnessFilter, logger *zap.Logger) *Chain {
	return &Chain{
		band:      band,
		location:  location,
		freshness: freshness,
		logger:    logger,
	}
}

func (c *Chain) filters() []Filter {
	return []Filter{c.band, c.location, c.freshness}
}

// Evaluate reports every predicate's decision for a single listing.
func (c *Chain) Evaluate(l *serpapi.Listing) Verdict {
	return Verdict{
		BandOK:     c.band.Keep(l),
		LocationOK: c.location.Keep(l),
		FreshOK:    c.freshness.Keep(l),
	}
}

// Run executes the predicates sequentially, returning the surviving
// listings. Fetch order is preserved: it is the tie-break for ranked
// results later on. Dropped listings are logged, not surfaced as errors.
func (c *Chain) Run(v *serpapi.Listings) *serpapi.Listings {
	for _, step := range c.filters() {
		initial := v.Len()
		kept := make([]*serpapi.Listing, 0, initial)
		for _, listing := range v.Items {
			if step.Keep(listing) {
				kept = append(kept, listing)
				continue
			}
			if c.logger != nil {
				c.logger.Debug("listing dropped",
					zap.String("filter", step.Name()),
					zap.String("title", listing.Title),
					zap.String("company", listing.CompanyName),
				)
			}
		}

		v = &serpapi.Listings{Items: kept}

		if c.logger != nil {
			c.logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", initial),
				zap.Int("dropped", initial-v.Len()),
				zap.Int("left", v.Len()),
			)
		}
	}

	return v
}
