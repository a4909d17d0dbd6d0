package view

import (
	"context"
	"sync"

	"github.com/sthimark/quakeboard/internal/aggregate"
	"github.com/sthimark/quakeboard/internal/filterstate"
	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/source"
)

// StackedView produces the dense 5-minute bucketed category series. It can
// additionally be scoped to a single region: clicking a map polygon narrows
// this chart to that region's messages until the click is undone.
type StackedView struct {
	fetcher *source.Fetcher
	gens    GenerationSource

	mu        sync.Mutex
	region    string
	series    aggregate.TimeSeries
	published uint64
}

// NewStackedView creates the stacked-time adapter. Its fetcher should carry
// the chart search limit.
func NewStackedView(fetcher *source.Fetcher, gens GenerationSource) *StackedView {
	return &StackedView{fetcher: fetcher, gens: gens}
}

func (v *StackedView) Name() string { return "stacked" }

// SetRegion scopes the chart to one region. An empty name clears the scope.
// The caller is responsible for triggering the follow-up update.
func (v *StackedView) SetRegion(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.region = name
}

// Region returns the current region scope.
func (v *StackedView) Region() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.region
}

// Update re-fetches and re-buckets for the given change.
func (v *StackedView) Update(ctx context.Context, change filterstate.Change) error {
	records, err := v.fetcher.Fetch(ctx, effectiveSelection(change))
	if err != nil {
		return err
	}
	msgs := prepare(records, change.Window)

	if region := v.Region(); region != "" {
		scoped := make([]model.Message, 0, len(msgs))
		for _, m := range msgs {
			if m.Location == region {
				scoped = append(scoped, m)
			}
		}
		msgs = scoped
	}
	series := aggregate.ByTimeBucket(msgs)

	if stale(v.gens, change) {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if change.Generation < v.published {
		return nil
	}
	v.series = series
	v.published = change.Generation
	return nil
}

// Series returns the latest published aggregation.
func (v *StackedView) Series() aggregate.TimeSeries {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.series
}
