package model

import "strings"

// Selection maps a main category name to the set of currently selected
// subcategory labels. A missing key and an empty slice mean the same thing:
// nothing selected for that category. A nil Selection (or one with no keys)
// is the distinguished "no filtering at all" state.
type Selection map[string][]string

// HasAny reports whether at least one category has a non-empty selection.
// When false, filtering by selection is the identity.
func (s Selection) HasAny() bool {
	for _, labels := range s {
		if len(labels) > 0 {
			return true
		}
	}
	return false
}

// Terms returns every selected label across all categories, in unspecified
// order. These are the per-term queries issued against the search API.
func (s Selection) Terms() []string {
	var terms []string
	for _, labels := range s {
		terms = append(terms, labels...)
	}
	return terms
}

// SearchTerms returns the labels of the vector_search pseudo-category, or nil
// when no search is active.
func (s Selection) SearchTerms() []string {
	return s[VectorSearchCategory]
}

// Contains reports whether label is selected under category, comparing
// case-insensitively.
func (s Selection) Contains(category, label string) bool {
	for _, l := range s[category] {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Mutating the copy never aliases the original.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for cat, labels := range s {
		out[cat] = append([]string(nil), labels...)
	}
	return out
}

// TimeWindow is an optional inclusive [Start, End] filter over record
// timestamps. Either bound may be empty, meaning unbounded on that side.
// Bounds are serialized in WindowLayout.
type TimeWindow struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (w TimeWindow) IsZero() bool {
	return w.Start == "" && w.End == ""
}
