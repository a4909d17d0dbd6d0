package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/vector" {
			t.Errorf("path = %q, want /search/vector", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "water supply" {
			t.Errorf("query = %q, want %q", got, "water supply")
		}
		if got := r.URL.Query().Get("limit"); got != "1000" {
			t.Errorf("limit = %q, want 1000", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"time": "2020-04-06 00:01:00", "location": "Downtown", "account": "a1",
				 "message": "no water", "label": "water supply", "score": 0.91}
			],
			"query": "water supply",
			"total_results": 1
		}`))
	}))
	defer srv.Close()

	client := &SearchClient{Host: srv.URL}
	records, err := client.Search(context.Background(), "water supply", 1000)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	hit := records[0].Hit
	if hit == nil {
		t.Fatal("record is not a search hit")
	}
	if hit.Label != "water supply" || hit.Account != "a1" {
		t.Errorf("hit = %+v", hit)
	}
}

func TestSearchClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := &SearchClient{Host: srv.URL}
	_, err := client.Search(context.Background(), "anything", 10)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", httpErr.StatusCode)
	}
}

func TestSearchClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	client := &SearchClient{Host: srv.URL}
	if _, err := client.Search(context.Background(), "anything", 10); err == nil {
		t.Fatal("expected a decode error")
	}
}
