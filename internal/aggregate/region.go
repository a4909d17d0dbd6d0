// Package aggregate reshapes filtered record sets into the three chartable
// structures: per-region message and actor counts for the choropleth map, a
// two-level category forest for circle packing, and a dense 5-minute bucketed
// series for the stacked time chart. Every aggregation is a full O(n)
// recomputation; nothing is cached or updated incrementally.
package aggregate

import "github.com/sthimark/quakeboard/internal/model"

// RegionCounts holds the map view aggregation: messages per region and
// distinct actors per region. Regions absent from both maps had no records;
// the map view renders them with a neutral fill, distinct from the color
// scale's zero output.
type RegionCounts struct {
	Messages map[string]int `json:"messages"`
	Actors   map[string]int `json:"actors"`
}

// MaxMessages returns the largest per-region message count, the upper bound
// of the map's sequential color scale domain.
func (r RegionCounts) MaxMessages() int {
	max := 0
	for _, n := range r.Messages {
		if n > max {
			max = n
		}
	}
	return max
}

// MaxActors returns the largest per-region distinct-actor count.
func (r RegionCounts) MaxActors() int {
	max := 0
	for _, n := range r.Actors {
		if n > max {
			max = n
		}
	}
	return max
}

// ByRegion tallies messages and distinct actors per region in a single pass.
// Location strings are used as-is; unknown region names still get counted and
// simply never match a map polygon.
func ByRegion(records []model.Message) RegionCounts {
	counts := RegionCounts{
		Messages: make(map[string]int),
		Actors:   make(map[string]int),
	}
	actors := make(map[string]map[string]struct{})

	for _, m := range records {
		counts.Messages[m.Location]++
		set, ok := actors[m.Location]
		if !ok {
			set = make(map[string]struct{})
			actors[m.Location] = set
		}
		set[m.Actor] = struct{}{}
	}
	for loc, set := range actors {
		counts.Actors[loc] = len(set)
	}
	return counts
}
