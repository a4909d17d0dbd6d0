package filter

import (
	"reflect"
	"testing"

	"github.com/sthimark/quakeboard/internal/model"
	"github.com/sthimark/quakeboard/internal/taxonomy"
)

func msg(ts, category string) model.Message {
	return model.Message{Timestamp: ts, Category: category}
}

func TestByTimeZeroWindowIsIdentity(t *testing.T) {
	records := []model.Message{
		msg("2020-04-06 00:00:00", ""),
		msg("not a timestamp", ""),
	}
	got := ByTime(records, model.TimeWindow{})
	if !reflect.DeepEqual(got, records) {
		t.Errorf("zero window should return the input unchanged, got %+v", got)
	}
}

func TestByTimeInclusiveBounds(t *testing.T) {
	window := model.TimeWindow{Start: "2020-04-06T00:05", End: "2020-04-06T00:10"}
	records := []model.Message{
		msg("2020-04-06 00:04:59", ""),
		msg("2020-04-06 00:05:00", ""), // exactly the start bound
		msg("2020-04-06 00:07:30", ""),
		msg("2020-04-06 00:10:00", ""), // exactly the end bound
		msg("2020-04-06 00:10:01", ""),
	}

	got := ByTime(records, window)
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(got), got)
	}
	if got[0].Timestamp != "2020-04-06 00:05:00" || got[2].Timestamp != "2020-04-06 00:10:00" {
		t.Errorf("boundary records should be kept: %+v", got)
	}
}

func TestByTimeOpenEnded(t *testing.T) {
	records := []model.Message{
		msg("2020-04-06 00:00:00", ""),
		msg("2020-04-08 12:00:00", ""),
	}

	fromOnly := ByTime(records, model.TimeWindow{Start: "2020-04-07T00:00"})
	if len(fromOnly) != 1 || fromOnly[0].Timestamp != "2020-04-08 12:00:00" {
		t.Errorf("start-only window: got %+v", fromOnly)
	}

	untilOnly := ByTime(records, model.TimeWindow{End: "2020-04-07T00:00"})
	if len(untilOnly) != 1 || untilOnly[0].Timestamp != "2020-04-06 00:00:00" {
		t.Errorf("end-only window: got %+v", untilOnly)
	}
}

func TestByTimeDropsUnparsableOnceBounded(t *testing.T) {
	records := []model.Message{
		msg("garbage", ""),
		msg("2020-04-06 00:06:00", ""),
	}
	got := ByTime(records, model.TimeWindow{Start: "2020-04-06T00:00"})
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Timestamp != "2020-04-06 00:06:00" {
		t.Errorf("unparsable record should be dropped, got %+v", got)
	}
}

func TestByTimeNarrowerWindowNeverGrows(t *testing.T) {
	records := []model.Message{
		msg("2020-04-06 00:00:00", ""),
		msg("2020-04-06 06:00:00", ""),
		msg("2020-04-06 12:00:00", ""),
		msg("2020-04-06 18:00:00", ""),
	}

	wide := ByTime(records, model.TimeWindow{Start: "2020-04-06T00:00", End: "2020-04-06T18:00"})
	narrow := ByTime(records, model.TimeWindow{Start: "2020-04-06T06:00", End: "2020-04-06T12:00"})
	if len(narrow) > len(wide) {
		t.Errorf("narrowing the window grew the result: %d > %d", len(narrow), len(wide))
	}

	kept := make(map[string]bool, len(wide))
	for _, m := range wide {
		kept[m.Timestamp] = true
	}
	for _, m := range narrow {
		if !kept[m.Timestamp] {
			t.Errorf("narrow window kept %q which the wide window excluded", m.Timestamp)
		}
	}
}

func selectionTaxonomy() *taxonomy.Taxonomy {
	return taxonomy.New(map[string][]string{
		"A": {"x", "y"},
		"B": {"z"},
	})
}

func TestBySelectionNoSelectionIsIdentity(t *testing.T) {
	tax := selectionTaxonomy()
	records := []model.Message{msg("", "x"), msg("", "z"), msg("", "weird")}

	for _, sel := range []model.Selection{nil, {}, {"A": nil, "B": {}}} {
		got := BySelection(records, sel, tax)
		if !reflect.DeepEqual(got, records) {
			t.Errorf("selection %v should be the identity, got %+v", sel, got)
		}
	}
}

func TestBySelectionHidesUnselectedCategories(t *testing.T) {
	tax := selectionTaxonomy()
	records := []model.Message{
		msg("", "x"), // category A, not selected
		msg("", "z"), // category B, selected
	}

	// A present but empty, B has a selection: A's records disappear.
	sel := model.Selection{"A": {}, "B": {"z"}}
	got := BySelection(records, sel, tax)
	if len(got) != 1 || got[0].Category != "z" {
		t.Errorf("got %+v, want only the z record", got)
	}
}

func TestBySelectionCaseInsensitive(t *testing.T) {
	tax := selectionTaxonomy()
	records := []model.Message{msg("", "X")}
	got := BySelection(records, model.Selection{"A": {"x"}}, tax)
	if len(got) != 1 {
		t.Errorf("label match should be case-insensitive, got %+v", got)
	}
}

func TestBySelectionUnclassifiedBucket(t *testing.T) {
	tax := selectionTaxonomy()
	records := []model.Message{msg("", "mystery")}

	hidden := BySelection(records, model.Selection{"A": {"x"}}, tax)
	if len(hidden) != 0 {
		t.Errorf("unclassified record should be hidden once a selection exists, got %+v", hidden)
	}

	shown := BySelection(records, model.Selection{model.Unclassified: {"mystery"}}, tax)
	if len(shown) != 1 {
		t.Errorf("selecting the label under unclassified should show it, got %+v", shown)
	}
}
