// Package index embeds the message corpus and upserts it into the vector
// database, the offline half of the system that the dashboard later queries.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"time"

	"github.com/sthimark/quakeboard/internal/model"
)

// Indexer writes embedded messages into a vector collection.
type Indexer interface {
	EnsureCollection(ctx context.Context, dimensions int) error
	UpsertBatch(ctx context.Context, batch []EmbeddedMessage) error
}

// EmbeddedMessage pairs a message with its vector.
type EmbeddedMessage struct {
	Message model.Message
	Vector  []float32
}

// QdrantIndexer implements Indexer over the Qdrant HTTP API.
type QdrantIndexer struct {
	Host       string
	Collection string
	HTTPClient *http.Client
}

func (q *QdrantIndexer) client() *http.Client {
	if q.HTTPClient != nil {
		return q.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// EnsureCollection creates the collection with cosine distance if it does
// not already exist. An existing collection is left untouched.
func (q *QdrantIndexer) EnsureCollection(ctx context.Context, dimensions int) error {
	getURL := fmt.Sprintf("%s/collections/%s", q.Host, q.Collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	if err != nil {
		return err
	}
	resp, err := q.client().Do(req)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return err
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPut, getURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err = q.client().Do(req)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("creating collection %s: HTTP %d", q.Collection, resp.StatusCode)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

type upsertPoint struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// UpsertBatch writes one batch of points. Point IDs are derived from the
// message identity key so re-running the pipeline overwrites rather than
// duplicates.
func (q *QdrantIndexer) UpsertBatch(ctx context.Context, batch []EmbeddedMessage) error {
	if len(batch) == 0 {
		return nil
	}

	points := make([]upsertPoint, 0, len(batch))
	for _, em := range batch {
		m := em.Message
		points = append(points, upsertPoint{
			ID:     pointID(m),
			Vector: em.Vector,
			Payload: map[string]any{
				"time":          m.Timestamp,
				"location":      m.Location,
				"account":       m.Actor,
				"message":       m.Text,
				"main_category": "",
				"sub_category":  m.Category,
			},
		})
	}

	body, err := json.Marshal(map[string]any{"points": points})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/collections/%s/points?wait=true", q.Host, q.Collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client().Do(req)
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upserting points: HTTP %d", resp.StatusCode)
	}
	return nil
}

// pointID hashes the message identity into a stable unsigned point ID.
func pointID(m model.Message) uint64 {
	h := fnv.New64a()
	h.Write([]byte(m.Key()))
	h.Write([]byte{0})
	h.Write([]byte(m.Text))
	return h.Sum64()
}
