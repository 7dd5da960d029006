package ranking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/cache"
	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/serpapi"
)

type stubProvider struct {
	payloads []string
	errs     []error
	prompts  []promptSet
}

func (s *stubProvider) InvokeTool(_ context.Context, prompts promptSet) (string, error) {
	idx := len(s.prompts)
	s.prompts = append(s.prompts, prompts)

	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	var payload string
	if idx < len(s.payloads) {
		payload = s.payloads[idx]
	}
	return payload, err
}

func testPrefs() *search.Preferences {
	return &search.Preferences{
		Keywords:       "Data Engineer",
		Location:       "Austin, TX",
		ExperienceBand: search.BandMid,
	}
}

func testListing(title string) *serpapi.Listing {
	l := &serpapi.Listing{}
	l.Title = title
	l.CompanyName = "Acme"
	l.Location = "Austin, TX"
	l.Description = "Build and operate data pipelines."
	l.ShareLink = "https://jobs.example/" + title
	return l
}

func TestRankEmptyInputSkipsProvider(t *testing.T) {
	stub := &stubProvider{}
	ranker := New(stub, nil, zap.NewNop(), 0, 0)

	ranked, err := ranker.Rank(context.Background(), nil, "resume", testPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected no listings, got %d", len(ranked))
	}
	if len(stub.prompts) != 0 {
		t.Fatalf("provider should not be called for an empty batch")
	}
}

func TestRankReturnsValidatedListings(t *testing.T) {
	stub := &stubProvider{payloads: []string{
		`{"job_listings":[{"job_title":"Data Engineer","company":"Acme","details_link":"https://jobs.example/de","match_score":8,"reason":"strong pipeline match"}]}`,
	}}
	ranker := New(stub, nil, zap.NewNop(), 0, 0)

	ranked, err := ranker.Rank(context.Background(), []*serpapi.Listing{testListing("Data Engineer")}, "resume text", testPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked listing, got %d", len(ranked))
	}
	if ranked[0].MatchScore != 8 {
		t.Fatalf("expected score 8, got %d", ranked[0].MatchScore)
	}

	if len(stub.prompts) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(stub.prompts))
	}
	user := stub.prompts[0].User
	for _, fragment := range []string{"resume text", "Data Engineer", "Austin, TX", "https://jobs.example/Data Engineer"} {
		if !strings.Contains(user, fragment) {
			t.Fatalf("user prompt is missing %q", fragment)
		}
	}
	if !strings.Contains(stub.prompts[0].System, search.BandMid) {
		t.Fatalf("system prompt should carry the experience band")
	}
}

func TestRankRetriesTransientFailures(t *testing.T) {
	stub := &stubProvider{
		errs: []error{errors.New("rate limited"), nil},
		payloads: []string{
			"",
			`{"job_listings":[{"job_title":"Data Engineer","company":"Acme","details_link":"","match_score":6,"reason":"ok"}]}`,
		},
	}
	ranker := New(stub, nil, zap.NewNop(), 1, 0)

	ranked, err := ranker.Rank(context.Background(), []*serpapi.Listing{testListing("Data Engineer")}, "resume", testPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.prompts) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(stub.prompts))
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked listing after retry, got %d", len(ranked))
	}
}

func TestRankExhaustedRetriesReturnError(t *testing.T) {
	stub := &stubProvider{
		errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}
	ranker := New(stub, nil, zap.NewNop(), 0, 0)

	if _, err := ranker.Rank(context.Background(), []*serpapi.Listing{testListing("Data Engineer")}, "resume", testPrefs()); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if len(stub.prompts) != 1 {
		t.Fatalf("expected a single attempt with maxRetries=0, got %d", len(stub.prompts))
	}
}

func TestRankServesRepeatedBatchFromCache(t *testing.T) {
	stub := &stubProvider{payloads: []string{
		`{"job_listings":[{"job_title":"Data Engineer","company":"Acme","details_link":"","match_score":7,"reason":"ok"}]}`,
	}}
	ranker := New(stub, cache.NewMemory(), zap.NewNop(), 0, 0)

	items := []*serpapi.Listing{testListing("Data Engineer")}
	first, err := ranker.Rank(context.Background(), items, "resume", testPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ranker.Rank(context.Background(), items, "resume", testPrefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.prompts) != 1 {
		t.Fatalf("expected the second call to hit the cache, provider calls: %d", len(stub.prompts))
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("cached result should match the original: %+v vs %+v", first, second)
	}
}

func TestRankSkippedFunctionCallIsNotCached(t *testing.T) {
	stub := &stubProvider{payloads: []string{"", ""}}
	ranker := New(stub, cache.NewMemory(), zap.NewNop(), 0, 0)

	items := []*serpapi.Listing{testListing("Data Engineer")}
	for i := 0; i < 2; i++ {
		ranked, err := ranker.Rank(context.Background(), items, "resume", testPrefs())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ranked) != 0 {
			t.Fatalf("skipped function call should yield an empty list, got %d", len(ranked))
		}
	}

	if len(stub.prompts) != 2 {
		t.Fatalf("empty payloads must not be cached, provider calls: %d", len(stub.prompts))
	}
}

func TestRankTruncatesLongDescriptions(t *testing.T) {
	long := testListing("Data Engineer")
	long.Description = strings.Repeat("x", 450) + "tail-marker"

	stub := &stubProvider{payloads: []string{`{"job_listings":[]}`}}
	ranker := New(stub, nil, zap.NewNop(), 0, 0)

	if _, err := ranker.Rank(context.Background(), []*serpapi.Listing{long}, "resume", testPrefs()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := stub.prompts[0].User
	if strings.Contains(user, "tail-marker") {
		t.Fatal("description should be truncated before prompting")
	}
	if !strings.Contains(user, "...") {
		t.Fatal("truncated snippet should end with an ellipsis")
	}
}
