package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sthimark/quakeboard/internal/model"
)

func TestFetcherUnfilteredScrolls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"points": [{"payload": {"time": "2020-04-06 00:01:00", "account": "a1"}}]}}`))
	}))
	defer srv.Close()

	f := &Fetcher{
		Scroll: &ScrollClient{Host: srv.URL, Collection: "c"},
	}
	records, err := f.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].Point == nil {
		t.Errorf("records = %+v, want one scroll point", records)
	}
}

func TestFetcherFallsBackToCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	csvPath := writeCSV(t, `time,account,message
2020-04-06 00:01:00,a1,from the file
`)

	f := &Fetcher{
		Scroll: &ScrollClient{Host: srv.URL, Collection: "c"},
		CSV:    &CSVSource{Path: csvPath},
	}
	records, err := f.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 || records[0].Row == nil {
		t.Fatalf("records = %+v, want one CSV row", records)
	}
	if records[0].Row.Message != "from the file" {
		t.Errorf("row = %+v", records[0].Row)
	}
}

func TestFetcherEmptySelectionYieldsNothing(t *testing.T) {
	// Keys present, nothing selected: no fetch happens at all.
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	f := &Fetcher{
		Search: &SearchClient{Host: srv.URL},
		Scroll: &ScrollClient{Host: srv.URL, Collection: "c"},
	}
	records, err := f.Fetch(context.Background(), model.Selection{"damage": nil, "people": {}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if records == nil {
		t.Fatal("want an empty non-nil slice")
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want none", records)
	}
	if calls.Load() != 0 {
		t.Errorf("upstream was called %d times, want 0", calls.Load())
	}
}

func TestFetcherSearchPerTerm(t *testing.T) {
	var terms []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("query")
		terms = append(terms, term)
		w.Write([]byte(`{"results": [{"time": "2020-04-06 00:01:00", "account": "` + term + `", "label": "` + term + `"}]}`))
	}))
	defer srv.Close()

	f := &Fetcher{
		Search:      &SearchClient{Host: srv.URL},
		SearchLimit: 1000,
	}
	records, err := f.Fetch(context.Background(), model.Selection{"damage": {"flood", "fire"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("upstream saw terms %v, want one call per term", terms)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestFetcherDropsFailingTerm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "fire" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results": [{"time": "2020-04-06 00:01:00", "account": "a1", "label": "flood"}]}`))
	}))
	defer srv.Close()

	f := &Fetcher{
		Search:      &SearchClient{Host: srv.URL},
		SearchLimit: 1000,
	}
	records, err := f.Fetch(context.Background(), model.Selection{"damage": {"flood", "fire"}})
	if err != nil {
		t.Fatalf("a failing term must not fail the fetch: %v", err)
	}
	if len(records) != 1 || records[0].Hit.Label != "flood" {
		t.Errorf("records = %+v, want only the flood hit", records)
	}
}
