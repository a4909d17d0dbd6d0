package source

import (
	"context"
	"log/slog"

	"github.com/sthimark/quakeboard/internal/model"
)

// Per-call result caps. Each view owns a Fetcher with its own search limit;
// the scroll dump cap is shared.
const (
	ScrollLimit = 10000

	// MapSearchLimit bounds per-term hits for the choropleth map.
	MapSearchLimit = 1000

	// ChartSearchLimit bounds per-term hits for the stacked-time and
	// circle-packing charts.
	ChartSearchLimit = 20000
)

// Fetcher decides, per filter change, where a view's records come from:
//
//   - selection active → one sequential search call per selected term
//     (a failing term is logged and dropped, the loop continues);
//   - selection present but empty everywhere → no records at all;
//   - unfiltered (reset or no selection) → scroll dump, falling back to
//     the static CSV when the scroll transport fails.
//
// Search terms are queried one at a time because the upstream API takes a
// single term per request; an N-term selection costs N round trips.
type Fetcher struct {
	Search      *SearchClient
	Scroll      *ScrollClient
	CSV         *CSVSource
	SearchLimit int
	Logger      *slog.Logger
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Fetch returns the raw source records for the given selection. A nil
// selection (the reset sentinel) fetches the full corpus; a selection with
// keys but no selected labels legitimately yields nothing.
func (f *Fetcher) Fetch(ctx context.Context, sel model.Selection) ([]model.SourceRecord, error) {
	if len(sel) == 0 {
		return f.fetchAll(ctx)
	}

	terms := sel.Terms()
	if len(terms) == 0 {
		return []model.SourceRecord{}, nil
	}

	var all []model.SourceRecord
	for _, term := range terms {
		records, err := f.Search.Search(ctx, term, f.SearchLimit)
		if err != nil {
			f.logger().Warn("search term failed, dropping its contribution",
				"term", term, "err", err)
			continue
		}
		all = append(all, records...)
	}
	return all, nil
}

// fetchAll scrolls the vector database and falls back to the CSV file when
// the scroll call fails.
func (f *Fetcher) fetchAll(ctx context.Context) ([]model.SourceRecord, error) {
	records, err := f.Scroll.Scroll(ctx, ScrollLimit)
	if err == nil {
		return records, nil
	}
	f.logger().Warn("scroll failed, falling back to CSV", "err", err)
	return f.CSV.Read()
}
