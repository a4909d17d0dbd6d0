// Package model defines the canonical data shapes shared across quakeboard:
// the normalized message record, the three source record formats it is
// distilled from, and the filter state (category selection + time window)
// that every view reads.
package model

import "time"

// TimestampLayout is the wire format message timestamps arrive in, from all
// three sources ("2020-04-06 00:07:32").
const TimestampLayout = "2006-01-02 15:04:05"

// WindowLayout is the format filter window boundaries are serialized in,
// matching an HTML datetime-local value ("2020-04-06T00:05").
const WindowLayout = "2006-01-02T15:04"

// Unclassified is the reserved category bucket for messages whose label
// matches no known subcategory, or that carry no label at all.
const Unclassified = "unclassified"

// VectorSearchCategory is the pseudo-category a submitted search term is
// wrapped in. Views treat its labels as search queries, not taxonomy labels.
const VectorSearchCategory = "vector_search"

// Message is the canonical post-normalization record. Timestamp and Actor are
// kept as the raw source strings; parsing happens at filter/aggregation time
// so that a malformed record is excluded from the step that needs the field
// rather than dropped at ingestion.
type Message struct {
	Timestamp string `json:"time"`
	Location  string `json:"location"`
	Actor     string `json:"account"`
	Text      string `json:"message"`
	Category  string `json:"label"`
}

// Key returns the identity key for de-duplication. Two records are the same
// logical message iff their raw timestamp and actor strings are equal.
func (m Message) Key() string {
	return m.Timestamp + "_" + m.Actor
}

// Time parses the record timestamp. ok is false when the timestamp does not
// match the wire format.
func (m Message) Time() (t time.Time, ok bool) {
	t, err := time.Parse(TimestampLayout, m.Timestamp)
	return t, err == nil
}

// SourceRecord is the tagged union of the three shapes records arrive in.
// Exactly one of the three fields is non-nil.
type SourceRecord struct {
	Hit   *SearchHit
	Point *ScrollPoint
	Row   *CSVRow
}

// SearchHit is one result from the vector-search API. Label carries the query
// term the hit was retrieved for; MainCategory is set when the indexed
// payload had one.
type SearchHit struct {
	Time         string  `json:"time"`
	Location     string  `json:"location"`
	Account      string  `json:"account"`
	Message      string  `json:"message"`
	Label        string  `json:"label,omitempty"`
	MainCategory string  `json:"main_category,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// ScrollPoint is one point payload from a vector-database scroll dump.
type ScrollPoint struct {
	Time         string `json:"time"`
	Location     string `json:"location"`
	Account      string `json:"account"`
	Message      string `json:"message"`
	MainCategory string `json:"main_category,omitempty"`
	SubCategory  string `json:"sub_category,omitempty"`
}

// CSVRow is one row of the static fallback file.
type CSVRow struct {
	Time         string
	Location     string
	Account      string
	Message      string
	Label        string
	MainCategory string
}
