package filter

import (
	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/taxonomy"
)

// BySelection returns the records matching the current category selection.
// With no selection anywhere (nil map, no keys, or all-empty values) the
// input is returned unchanged.
//
// Once any category has a selection, a record is kept iff the selection for
// its resolved main category is non-empty and contains the record's label
// (case-insensitive). A category present with an empty selection therefore
// hides all of its records: selecting one subcategory of category A hides
// A's unselected siblings and everything in categories with no selection.
func BySelection(records []model.Message, sel model.Selection, tax *taxonomy.Taxonomy) []model.Message {
	if !sel.HasAny() {
		return records
	}

	out := make([]model.Message, 0, len(records))
	for _, m := range records {
		main := tax.ResolveMain(m.Category)
		if !sel.Contains(main, m.Category) {
			continue
		}
		out = append(out, m)
	}
	return out
}
