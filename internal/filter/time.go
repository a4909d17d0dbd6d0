// Package filter narrows a normalized record set by time window and by
// category selection. Both filters are pure single-pass functions; the
// aggregators run over their output.
package filter

import (
	"time"

	"github.com/sthimark/quakeboard/internal/model"
)

// ByTime returns the subset of records whose timestamp falls inside the
// inclusive window. With neither bound set the input is returned unchanged,
// including records whose timestamps would not parse. Once any bound is set,
// a record with an unparsable timestamp is treated as out of range.
func ByTime(records []model.Message, window model.TimeWindow) []model.Message {
	if window.IsZero() {
		return records
	}

	var start, end time.Time
	var hasStart, hasEnd bool
	if window.Start != "" {
		if t, err := time.Parse(model.WindowLayout, window.Start); err == nil {
			start, hasStart = t, true
		}
	}
	if window.End != "" {
		if t, err := time.Parse(model.WindowLayout, window.End); err == nil {
			end, hasEnd = t, true
		}
	}

	out := make([]model.Message, 0, len(records))
	for _, m := range records {
		t, ok := m.Time()
		if !ok {
			continue
		}
		if hasStart && t.Before(start) {
			continue
		}
		if hasEnd && t.After(end) {
			continue
		}
		out = append(out, m)
	}
	return out
}
