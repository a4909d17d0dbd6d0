// Package normalize converts heterogeneous source records into canonical
// Message records and de-duplicates them on the (timestamp, actor) identity
// key.
package normalize

import "github.com/sthimark/quakeboard/internal/model"

// Normalize maps each source record onto the canonical Message shape and
// drops duplicates keyed on timestamp+"_"+actor. The raw field strings are
// carried as-is; nothing is parsed or validated here, so a record missing a
// field for a downstream step is excluded by that step, not by this one.
// On key collision the later record wins, consistent with a single
// left-to-right pass with overwrite. Output preserves first-seen key order.
func Normalize(records []model.SourceRecord) []model.Message {
	seen := make(map[string]int, len(records))
	out := make([]model.Message, 0, len(records))

	for _, rec := range records {
		msg, ok := toMessage(rec)
		if !ok {
			continue
		}
		key := msg.Key()
		if i, dup := seen[key]; dup {
			out[i] = msg
			continue
		}
		seen[key] = len(out)
		out = append(out, msg)
	}
	return out
}

// toMessage performs the exhaustive match over the source union. A record
// with no populated variant is skipped rather than erroring: individual
// malformed records fail open.
func toMessage(rec model.SourceRecord) (model.Message, bool) {
	switch {
	case rec.Hit != nil:
		h := rec.Hit
		return model.Message{
			Timestamp: h.Time,
			Location:  h.Location,
			Actor:     h.Account,
			Text:      h.Message,
			Category:  firstNonEmpty(h.Label, h.MainCategory, model.Unclassified),
		}, true
	case rec.Point != nil:
		p := rec.Point
		return model.Message{
			Timestamp: p.Time,
			Location:  p.Location,
			Actor:     p.Account,
			Text:      p.Message,
			Category:  firstNonEmpty(p.SubCategory, p.MainCategory, model.Unclassified),
		}, true
	case rec.Row != nil:
		r := rec.Row
		return model.Message{
			Timestamp: r.Time,
			Location:  r.Location,
			Actor:     r.Account,
			Text:      r.Message,
			Category:  firstNonEmpty(r.Label, r.MainCategory, model.Unclassified),
		}, true
	}
	return model.Message{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
