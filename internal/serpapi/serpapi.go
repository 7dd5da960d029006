package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL = "https://serpapi.com/search.json"
	engine = "google_jobs"
	// Max value for google_jobs results per page.
	pageSize = "10"
)

type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func New(logger *zap.Logger, apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

// pageResponse mirrors the slice of the provider payload the adapter needs:
// raw listing records, the continuation token and the refinement chips.
type pageResponse struct {
	JobsResults    []map[string]any `json:"jobs_results"`
	SearchMetadata struct {
		SerpapiPagination struct {
			NextPageToken string `json:"next_page_token"`
		} `json:"serpapi_pagination"`
		GoogleJobsFilters []filterGroup `json:"google_jobs_filters"`
	} `json:"search_metadata"`
	Error string `json:"error"`
}

func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	// Refinement links already carry their own query string; ours is merged
	// on top so the api_key survives either way.
	merged := req.URL.Query()
	for key, values := range q {
		for _, value := range values {
			merged.Set(key, value)
		}
	}
	req.URL.RawQuery = merged.Encode()
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse provider payload: %w", err)
	}

	return nil
}
