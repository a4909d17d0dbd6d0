// Package view implements the three view adapters behind the choropleth map,
// the circle-packing chart, and the stacked time chart. Each one independently
// fetches its own records for the current filter change, runs them through the
// normalize/filter/aggregate pipeline, and publishes a snapshot for the
// serving layer to hand to the client.
//
// Updates for different views run concurrently and never coordinate. A
// completed fetch is discarded when its filter generation is no longer
// current, so a slow response can not overwrite the result of a newer
// filter change.
package view

import (
	"github.com/sthimark/quakeboard/internal/filter"
	"github.com/sthimark/quakeboard/internal/filterstate"
	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/normalize"
)

// GenerationSource reports the current filter generation, usually the
// filter state store itself. A nil source disables staleness checks.
type GenerationSource interface {
	Generation() uint64
}

// effectiveSelection maps a change onto the selection handed to fetch and
// filtering: nil for the unfiltered (reset) sentinel.
func effectiveSelection(change filterstate.Change) model.Selection {
	if change.Unfiltered() {
		return nil
	}
	return change.Selection
}

// prepare normalizes raw source records and applies the time window, the
// pipeline stages every view shares.
func prepare(records []model.SourceRecord, window model.TimeWindow) []model.Message {
	return filter.ByTime(normalize.Normalize(records), window)
}

// stale reports whether a change has been superseded by a newer one.
func stale(gens GenerationSource, change filterstate.Change) bool {
	return gens != nil && change.Generation < gens.Generation()
}
