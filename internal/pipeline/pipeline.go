package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/filtering"
	"github.com/openhiring/job-scout/internal/ranking"
	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
)

const (
	defaultTargetCount = 15
	defaultWindowSize  = 8
)

// Source produces raw listings for a preference set, resuming from a
// continuation token when one is supplied.
type Source interface {
	Fetch(ctx context.Context, prefs *search.Preferences, token string, target int) *serpapi.Result
}

// Ranker scores a filtered batch against the candidate.
type Ranker interface {
	Rank(ctx context.Context, items []*serpapi.Listing, resumeText string, prefs *search.Preferences) ([]ranking.Listing, error)
}

type Config struct {
	// TargetCount is how many raw listings a run tries to accumulate
	// before filtering.
	TargetCount int
	// WindowSize caps the jobs surfaced per run; the remainder stays in
	// the buffer.
	WindowSize int
}

// Result is what one pipeline run hands back to the caller. Jobs is the
// visible window, Buffer holds ranked listings beyond it, and NextPageToken
// resumes the upstream search on the next run. Both slices are always
// non-nil.
type Result struct {
	Jobs          []ranking.Listing
	Buffer        []ranking.Listing
	NextPageToken string
	HasMore       bool
}

// Pipeline chains fetching, deterministic filtering and scoring into a
// single run. Scoring failures degrade to an empty window; only invalid
// preferences abort a run.
type Pipeline struct {
	source    Source
	ranker    Ranker
	bands     filtering.BandConfig
	freshness filtering.Policy
	logger    *zap.Logger
	cfg       Config
}

func New(source Source, ranker Ranker, bands filtering.BandConfig, freshness filtering.Policy, logger *zap.Logger, cfg Config) *Pipeline {
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = defaultTargetCount
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaultWindowSize
	}

	return &Pipeline{
		source:    source,
		ranker:    ranker,
		bands:     bands,
		freshness: freshness,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run executes one discovery pass. A non-empty token resumes a previous
// search instead of starting over.
func (p *Pipeline) Run(ctx context.Context, resumeText string, prefs *search.Preferences, token string) (*Result, error) {
	prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("validate preferences: %w", err)
	}

	chain, err := p.buildChain(prefs)
	if err != nil {
		return nil, err
	}

	fetched := p.source.Fetch(ctx, prefs, token, p.cfg.TargetCount)
	if fetched.Err != nil {
		p.logger.Warn("fetch truncated", zap.Error(fetched.Err))
	}

	if len(fetched.Listings) == 0 {
		p.logger.Info("no listings fetched")
		return &Result{
			Jobs:          []ranking.Listing{},
			Buffer:        []ranking.Listing{},
			NextPageToken: fetched.NextPageToken,
			HasMore:       false,
		}, nil
	}

	kept := chain.Run(&serpapi.Listings{Items: fetched.Listings})

	ranked, err := p.ranker.Rank(ctx, kept.Items, resumeText, prefs)
	if err != nil {
		p.logger.Warn("ranking failed, continuing without scored results", zap.Error(err))
		ranked = nil
	}

	window := ranked
	var buffer []ranking.Listing
	if len(ranked) > p.cfg.WindowSize {
		window = ranked[:p.cfg.WindowSize]
		buffer = ranked[p.cfg.WindowSize:]
	}
	if window == nil {
		window = []ranking.Listing{}
	}
	if buffer == nil {
		buffer = []ranking.Listing{}
	}

	p.logger.Info("pipeline run complete",
		zap.Int("fetched", len(fetched.Listings)),
		zap.Int("kept", kept.Len()),
		zap.Int("ranked", len(ranked)),
		zap.Int("window", len(window)),
		zap.Int("buffered", len(buffer)),
		zap.Bool("has_more", fetched.HasMore),
	)

	return &Result{
		Jobs:          window,
		Buffer:        buffer,
		NextPageToken: fetched.NextPageToken,
		HasMore:       fetched.HasMore,
	}, nil
}

func (p *Pipeline) buildChain(prefs *search.Preferences) (*filtering.Chain, error) {
	band, err := filtering.NewBand(p.bands, prefs.ExperienceBand)
	if err != nil {
		return nil, fmt.Errorf("configure band filter: %w", err)
	}

	location := filtering.NewLocation(prefs.Location, prefs.RemotePreference)
	freshness := filtering.NewFreshness(p.freshness)

	return filtering.NewChain(band, location, freshness, p.logger), nil
}
