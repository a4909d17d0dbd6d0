package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sthimark/quakeboard/internal/model"
)

// CSVSource reads the static fallback file. First row is headers; column
// order is not assumed. Recognized columns: time, location, account,
// message, label, main_category. Extra columns are ignored.
type CSVSource struct {
	Path string
}

// Read parses the whole file into source records. Rows shorter than the
// header are padded with empty fields rather than rejected; individual
// malformed rows fail open, matching the normalizer's policy.
func (c *CSVSource) Read() ([]model.SourceRecord, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("opening fallback CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing fallback CSV %s: %w", c.Path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]model.SourceRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.SourceRecord{Row: &model.CSVRow{
			Time:         field(row, "time"),
			Location:     field(row, "location"),
			Account:      field(row, "account"),
			Message:      field(row, "message"),
			Label:        field(row, "label"),
			MainCategory: field(row, "main_category"),
		}})
	}
	return records, nil
}
