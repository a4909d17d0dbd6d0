// Package source fetches message records from the three places they live:
// the external vector-search API, the vector database's scroll endpoint, and
// the static CSV fallback file. The Fetcher orchestrates which one a view
// hits for a given filter change and implements the partial-failure and
// fallback policies.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sthimark/quakeboard/internal/model"
)

// HTTPError carries a non-OK status from one of the upstream services.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// SearchClient issues per-term similarity queries against the search API.
type SearchClient struct {
	// Host is the API base, e.g. "http://127.0.0.1:8000".
	Host string

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// searchResponse mirrors the API's JSON envelope.
type searchResponse struct {
	Results      []model.SearchHit `json:"results"`
	Query        string            `json:"query"`
	TotalResults int               `json:"total_results"`
}

// defaultClient bounds upstream calls so a hung service cannot pin a view
// update forever.
var defaultClient = &http.Client{Timeout: 30 * time.Second}

func (c *SearchClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultClient
}

// Search runs one vector query and returns the hits as source records.
// The API tags each hit's label with the query term, so results from
// different terms stay distinguishable downstream.
func (c *SearchClient) Search(ctx context.Context, term string, limit int) ([]model.SourceRecord, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.Host + "/search/vector?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response for %q: %w", term, err)
	}

	records := make([]model.SourceRecord, 0, len(parsed.Results))
	for i := range parsed.Results {
		hit := parsed.Results[i]
		records = append(records, model.SourceRecord{Hit: &hit})
	}
	return records, nil
}
