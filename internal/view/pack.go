package view

import (
	"context"
	"sync"

	"github.com/sthimark/quakeboard/internal/aggregate"
	"github.com/sthimark/quakeboard/internal/filterstate"
	"github.com/sthimark/quakeboard/internal/source"
	"github.com/sthimark/quakeboard/internal/taxonomy"
)

// PackView builds the circle-packing forest. Unlike the other views it reads
// the labeled CSV corpus directly, since the packing chart needs every
// record's classification label and only the labeled file reliably carries
// it. Time and selection filtering happen locally.
type PackView struct {
	csv  *source.CSVSource
	tax  *taxonomy.Taxonomy
	gens GenerationSource

	mu        sync.Mutex
	forest    []aggregate.PackNode
	published uint64
}

// NewPackView creates the circle-packing adapter.
func NewPackView(csv *source.CSVSource, tax *taxonomy.Taxonomy, gens GenerationSource) *PackView {
	return &PackView{csv: csv, tax: tax, gens: gens}
}

func (v *PackView) Name() string { return "packing" }

// Update re-reads the labeled corpus and rebuilds the forest. A nil forest
// means "no data": the chart renders nothing rather than an empty root.
func (v *PackView) Update(ctx context.Context, change filterstate.Change) error {
	records, err := v.csv.Read()
	if err != nil {
		return err
	}

	msgs := prepare(records, change.Window)
	forest := aggregate.Hierarchy(msgs, effectiveSelection(change), v.tax)

	if stale(v.gens, change) {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if change.Generation < v.published {
		return nil
	}
	v.forest = forest
	v.published = change.Generation
	return nil
}

// Forest returns the latest published forest; nil when there is no data.
func (v *PackView) Forest() []aggregate.PackNode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.forest
}
