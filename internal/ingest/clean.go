package ingest

import (
	"math"
	"strconv"
	"strings"
)

// cleanText trims and upper-cases a raw cell, mapping noise tokens to nil.
// Broker exports pad identifier cells with placeholder junk ("-", "NIL",
// spreadsheet NaN renderings); those must land as SQL NULL, not as literal
// strings that would poison the natural keys.
func cleanText(raw string, noise map[string]struct{}) *string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if _, bad := noise[s]; bad {
		return nil
	}
	return &s
}

// numericJunk strips currency symbols and thousands separators.
var numericJunk = strings.NewReplacer("$", "", ",", "")

// parseFloatPtr parses a numeric cell leniently, returning nil when the
// value is absent or unparseable.
func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(numericJunk.Replace(s))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseIntPtr parses a count cell leniently. Counts frequently arrive as
// floats ("120.0"), so the value is parsed as float and rounded.
func parseIntPtr(s string) *int64 {
	f := parseFloatPtr(s)
	if f == nil {
		return nil
	}
	v := int64(math.Round(*f))
	return &v
}

// normalizeHeader folds a header cell for alias comparison.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// cellAt returns the cell at index i, tolerating ragged rows.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
