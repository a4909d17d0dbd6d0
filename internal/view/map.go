package view

import (
	"context"
	"sync"

	"github.com/sthimark/quakeboard/internal/aggregate"
	"github.com/sthimark/quakeboard/internal/filterstate"
	"github.com/sthimark/quakeboard/internal/source"
)

// MapView aggregates per-region message and distinct-actor counts for the
// choropleth heatmap.
type MapView struct {
	fetcher *source.Fetcher
	gens    GenerationSource

	mu        sync.Mutex
	counts    aggregate.RegionCounts
	published uint64
}

// NewMapView creates the map adapter. Its fetcher should carry the map's
// per-term search limit.
func NewMapView(fetcher *source.Fetcher, gens GenerationSource) *MapView {
	return &MapView{
		fetcher: fetcher,
		gens:    gens,
		counts: aggregate.RegionCounts{
			Messages: map[string]int{},
			Actors:   map[string]int{},
		},
	}
}

func (v *MapView) Name() string { return "map" }

// Update re-fetches, re-filters, and re-aggregates for the given change.
// An empty aggregation is a normal terminal state, not an error.
func (v *MapView) Update(ctx context.Context, change filterstate.Change) error {
	records, err := v.fetcher.Fetch(ctx, effectiveSelection(change))
	if err != nil {
		return err
	}
	counts := aggregate.ByRegion(prepare(records, change.Window))

	if stale(v.gens, change) {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if change.Generation < v.published {
		return nil
	}
	v.counts = counts
	v.published = change.Generation
	return nil
}

// Counts returns the latest published aggregation.
func (v *MapView) Counts() aggregate.RegionCounts {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.counts
}
