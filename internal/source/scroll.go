package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sthimark/quakeboard/internal/model"
)

// ScrollClient dumps raw points from the vector database, used when no
// filter selection is active.
type ScrollClient struct {
	// Host is the database base URL, e.g. "http://localhost:6333".
	Host string

	// Collection is the points collection name.
	Collection string

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

type scrollRequest struct {
	Limit       int  `json:"limit"`
	WithPayload bool `json:"with_payload"`
	WithVector  bool `json:"with_vector"`
}

type scrollResponse struct {
	Result struct {
		Points []struct {
			Payload model.ScrollPoint `json:"payload"`
		} `json:"points"`
	} `json:"result"`
}

// Scroll fetches up to limit point payloads from the collection.
func (c *ScrollClient) Scroll(ctx context.Context, limit int) ([]model.SourceRecord, error) {
	endpoint := fmt.Sprintf("%s/collections/%s/points/scroll", c.Host, c.Collection)

	body, err := json.Marshal(scrollRequest{Limit: limit, WithPayload: true, WithVector: false})
	if err != nil {
		return nil, fmt.Errorf("encoding scroll request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building scroll request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrolling %s: %w", c.Collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	var parsed scrollResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding scroll response: %w", err)
	}

	records := make([]model.SourceRecord, 0, len(parsed.Result.Points))
	for i := range parsed.Result.Points {
		payload := parsed.Result.Points[i].Payload
		records = append(records, model.SourceRecord{Point: &payload})
	}
	return records, nil
}
