package aggregate

import (
	"sort"
	"time"

	"github.com/sthimark/quakeboard/internal/model"
)

// BucketSize is the fixed stacked-chart bucket width.
const BucketSize = 5 * time.Minute

// TimeBucket is one dense point of the stacked series: a bucket start instant
// and the count for every observed category. Categories absent from a bucket
// are present with a zero count so every bucket carries the full key set.
type TimeBucket struct {
	Start  time.Time      `json:"start"`
	Counts map[string]int `json:"counts"`
}

// TimeSeries holds the stacked-time aggregation: buckets in ascending start
// order and the closed category set observed across the filtered records.
type TimeSeries struct {
	Buckets    []TimeBucket `json:"buckets"`
	Categories []string     `json:"categories"`
}

// ByTimeBucket parses each record timestamp, floors it to the nearest
// 5-minute boundary, and counts records per (bucket, category). Records whose
// timestamps do not parse are silently excluded. The result is dense: every
// observed category appears in every bucket, zero-filled where absent.
func ByTimeBucket(records []model.Message) TimeSeries {
	counts := make(map[time.Time]map[string]int)
	catSet := make(map[string]struct{})
	var catOrder []string

	for _, m := range records {
		t, ok := m.Time()
		if !ok {
			continue
		}
		bucket := t.Truncate(BucketSize)

		cat := m.Category
		if cat == "" {
			cat = model.Unclassified
		}
		if _, ok := catSet[cat]; !ok {
			catSet[cat] = struct{}{}
			catOrder = append(catOrder, cat)
		}

		byCat, ok := counts[bucket]
		if !ok {
			byCat = make(map[string]int)
			counts[bucket] = byCat
		}
		byCat[cat]++
	}

	starts := make([]time.Time, 0, len(counts))
	for start := range counts {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	series := TimeSeries{Categories: catOrder}
	for _, start := range starts {
		bucket := TimeBucket{Start: start, Counts: make(map[string]int, len(catOrder))}
		for _, cat := range catOrder {
			bucket.Counts[cat] = counts[start][cat]
		}
		series.Buckets = append(series.Buckets, bucket)
	}
	return series
}
