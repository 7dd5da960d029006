package ranking

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/cache"
	"github.com/openhiring/job-scout/internal/logger"
	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
	"github.com/openhiring/job-scout/internal/utils"
)

const defaultMaxLogLength = 200

// Listing is one ranked job as returned to the caller. DetailsLink is
// always a string: an unresolved link is an empty string, never null.
type Listing struct {
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	DetailsLink string `json:"details_link"`
	MatchScore  int    `json:"match_score" jsonschema:"minimum=1,maximum=10"`
	Reason      string `json:"reason"`
}

// rankedJobs is the constrained shape the scoring provider must return.
type rankedJobs struct {
	JobListings []Listing `json:"job_listings"`
}

type promptSet struct {
	System string
	User   string
}

// Provider performs one structured scoring call and returns the raw JSON
// payload of the ranking function call. An empty payload with a nil error
// means the model skipped the function call; the ranker treats it as a
// failed validation, not a transport failure.
type Provider interface {
	InvokeTool(ctx context.Context, prompts promptSet) (string, error)
}

// Ranker scores filtered listings against a candidate in a single pass per
// invocation. Ranking is best effort: malformed provider output degrades to
// an empty ranked list and never aborts the pipeline.
type Ranker struct {
	provider   Provider
	store      cache.Cache
	logger     *zap.Logger
	maxRetries int
	maxLogLen  int
}

// New builds a Ranker on top of a scoring provider. store may be nil to
// disable response caching.
func New(p Provider, store cache.Cache, log *zap.Logger, maxRetries, maxLogLength int) *Ranker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Ranker{
		provider:   p,
		store:      store,
		logger:     log,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
	}
}

// Rank sends the listing batch with the resume and preferences to the
// scoring provider, validates the response and returns the ranked listings
// ordered by score descending, input order breaking ties.
func (r *Ranker) Rank(ctx context.Context, items []*serpapi.Listing, resumeText string, prefs *search.Preferences) ([]Listing, error) {
	if len(items) == 0 {
		return []Listing{}, nil
	}

	prompts, err := buildPrompts(items, resumeText, prefs)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("ranking request",
		zap.Int("listings", len(items)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompts.User)),
		zap.String("prompt_preview", logger.TruncateForLog(prompts.User, r.maxLogLen)),
	)

	raw, err := r.invoke(ctx, prompts)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("ranking response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	return parseRanked(raw, r.logger), nil
}

// invoke fronts the provider call with the content-hash cache and a bounded
// retry for transient failures. Only successful non-empty payloads are
// cached, so a hit is byte-identical to the miss it replaced.
func (r *Ranker) invoke(ctx context.Context, prompts promptSet) (string, error) {
	key := cache.Key(prompts.System, prompts.User)

	if r.store != nil {
		if raw, ok := r.store.Get(ctx, key); ok {
			r.logger.Debug("ranking response served from cache")
			return raw, nil
		}
	}

	attempts := r.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var raw string
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err = r.provider.InvokeTool(ctx, prompts)
		if err == nil {
			break
		}

		r.logger.Warn("ranking call failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt < attempts {
			if werr := utils.WaitFor(ctx, time.Duration(attempt)*time.Second); werr != nil {
				return "", werr
			}
		}
	}
	if err != nil {
		return "", err
	}

	if r.store != nil && raw != "" {
		r.store.Set(ctx, key, raw)
	}

	return raw, nil
}
