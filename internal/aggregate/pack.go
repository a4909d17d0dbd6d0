package aggregate

import (
	"sort"

	"github.com/sthimark/quakeboard/internal/filter"
	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/taxonomy"
)

// PackNode is one node of the circle-packing forest. Depth-1 nodes are main
// categories (Value = total records in the category), depth-2 nodes are
// subcategory labels with their occurrence counts.
type PackNode struct {
	Name     string     `json:"name"`
	Value    int        `json:"value"`
	Children []PackNode `json:"children,omitempty"`
}

// Hierarchy groups the selection-visible records by resolved main category,
// then by original subcategory label. Selection semantics come from
// filter.BySelection; records with an empty label are skipped. Main
// categories that end up with no subcategory children are discarded; an
// empty forest returns nil, the "no data, render nothing" signal.
func Hierarchy(records []model.Message, sel model.Selection, tax *taxonomy.Taxonomy) []PackNode {
	visible := filter.BySelection(records, sel, tax)

	type group struct {
		total int
		subs  map[string]int
		order []string
	}
	groups := make(map[string]*group)
	var mains []string

	for _, m := range visible {
		if m.Category == "" {
			continue
		}
		main := tax.ResolveMain(m.Category)

		g, ok := groups[main]
		if !ok {
			g = &group{subs: make(map[string]int)}
			groups[main] = g
			mains = append(mains, main)
		}
		g.total++
		if _, ok := g.subs[m.Category]; !ok {
			g.order = append(g.order, m.Category)
		}
		g.subs[m.Category]++
	}

	sort.Strings(mains)
	var forest []PackNode
	for _, main := range mains {
		g := groups[main]
		if len(g.order) == 0 {
			continue
		}
		children := make([]PackNode, 0, len(g.order))
		for _, sub := range g.order {
			children = append(children, PackNode{Name: sub, Value: g.subs[sub]})
		}
		forest = append(forest, PackNode{Name: main, Value: g.total, Children: children})
	}
	return forest
}
