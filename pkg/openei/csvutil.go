package openei

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// table is a parsed CSV file: a header index plus raw rows. Column lookups
// are case-insensitive because the published datasets are not consistent
// about header casing.
type table struct {
	file string
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // URDB exports contain ragged rows
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return &table{file: path, cols: cols, rows: records[1:]}, nil
}

// require returns the index of a column or a MissingColumnError.
func (t *table) require(name string) (int, error) {
	idx, ok := t.cols[name]
	if !ok {
		return 0, &MissingColumnError{File: t.file, Column: name}
	}
	return idx, nil
}

// field returns the trimmed cell at idx, or "" when the row is short or the
// column is absent (idx < 0).
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// optionalIdx returns the column index or -1 when absent.
func (t *table) optionalIdx(name string) int {
	if idx, ok := t.cols[name]; ok {
		return idx
	}
	return -1
}

// parseInt64 accepts plain integers and float renderings like "12345.0",
// which appear in mapping files that round-tripped through spreadsheets.
func parseInt64(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseBool fails closed: anything that is not an affirmative boolean
// rendering counts as false.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1", "1.0":
		return true
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
}

// parseDate returns nil for empty or unparseable cells; an absent date is a
// meaningful state (open-ended or always-started), not an error.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
