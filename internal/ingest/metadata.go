package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teatrade/auction-cli/internal/sheet"
)

// UnknownSentinel marks metadata that could not be derived from any source.
// Rows carrying it are excluded from lot loads: the sale number participates
// in the natural key, and a null there would break conflict detection.
const UnknownSentinel = "Unknown"

// Metadata is the sale context a file contributes to every row it yields.
type Metadata struct {
	SaleNumber string
	SaleDate   string
}

var (
	// AuctionSummary_2024-15_080424.xlsx, CompleteOfferLots_[2024-15]_080424.xlsx
	weeklyExportPattern = regexp.MustCompile(`(?i)^(?:AuctionSummary_|CompleteOfferLots_)\[?(\d{4})-(\d{2})\]?_(\d{6})\.xlsx`)
	// Sale 15_Catalogue_08_04_2024.xlsx
	cataloguePattern = regexp.MustCompile(`(?i)Sale (\d+)_Catalogue_(\d{2})_(\d{2})_(\d{4})`)

	saleCodePattern   = regexp.MustCompile(`^\d{4}/\d{1,2}`)
	saleLabelPattern  = regexp.MustCompile(`Sale (\d+)`)
	sixDigitPattern   = regexp.MustCompile(`^\d{6}$`)
	trailingMSPattern = regexp.MustCompile(`[:.]\d{3}$`)
)

// dateFormats lists accepted layouts in trust order. Day-first layouts come
// before month-first because the source market writes DD/MM dates; the
// month-first fallbacks only catch values the day-first layouts reject
// (day > 12).
var dateFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseDate normalizes a raw date cell to ISO YYYY-MM-DD, returning "" when
// the value cannot be read. Six-digit values are DDMMYY; a four-digit
// yearHint (from the filename) overrides the two-digit year, which matters
// for files named after ISO sale weeks that span New Year.
func ParseDate(raw, yearHint string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if sixDigitPattern.MatchString(s) {
		if t, err := time.Parse("020106", s); err == nil {
			if yearHint != "" {
				if y, herr := strconv.Atoi(yearHint); herr == nil {
					hinted := time.Date(y, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
					// Feb 29 can normalize away under the hinted year;
					// treat that as unparseable rather than shifting days.
					if hinted.Month() == t.Month() && hinted.Day() == t.Day() {
						return hinted.Format("2006-01-02")
					}
				}
			} else {
				return t.Format("2006-01-02")
			}
		}
	}

	s = trailingMSPattern.ReplaceAllString(s, "")
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// SaleNumberFromString reads a sale number out of an internal cell value.
// Two shapes occur: a sale code like "2024/15" (normalized to "2024-15") and
// a label like "Sale 15" (combined with the year of dateHint, or
// "UnknownYear" when no date is known). Anything else is Unknown.
func SaleNumberFromString(raw, dateHint string) string {
	if raw == "" {
		return UnknownSentinel
	}
	if saleCodePattern.MatchString(raw) {
		return strings.ReplaceAll(raw, "/", "-")
	}
	if strings.Contains(raw, "Sale") {
		m := saleLabelPattern.FindStringSubmatch(raw)
		if m != nil {
			prefix := "UnknownYear"
			if _, err := time.Parse("2006-01-02", dateHint); err == nil {
				prefix = dateHint[:4]
			}
			n, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%s-%02d", prefix, n)
		}
	}
	return UnknownSentinel
}

// ExtractMetadata derives the sale number and date for a file. Sources are
// tried in trust order: the weekly-export filename pattern, the catalogue
// filename pattern, then the sheet's own date and sale-code columns (first
// non-empty value). Whatever remains unresolved is Unknown, never empty.
func ExtractMetadata(filename string, sh *sheet.RawSheet, m *Mapping) Metadata {
	var meta Metadata
	var yearHint string

	if g := weeklyExportPattern.FindStringSubmatch(filename); g != nil {
		yearHint = g[1]
		meta.SaleNumber = g[1] + "-" + g[2]
		meta.SaleDate = ParseDate(g[3], yearHint)
	}

	if meta.SaleNumber == "" {
		if g := cataloguePattern.FindStringSubmatch(filename); g != nil {
			n, _ := strconv.Atoi(g[1])
			meta.SaleNumber = fmt.Sprintf("%s-%02d", g[4], n)
			meta.SaleDate = ParseDate(g[2]+"/"+g[3]+"/"+g[4], "")
		}
	}

	if sh != nil && (meta.SaleNumber == "" || meta.SaleDate == "") {
		cm := ResolveColumns(headerRow(sh), m.LotFields, m.MarkAliases)

		if meta.SaleDate == "" {
			if col, ok := cm.Fields[fieldSaleDate]; ok {
				if v := firstValue(sh, col); v != "" {
					meta.SaleDate = ParseDate(v, "")
				}
			}
		}
		if meta.SaleNumber == "" {
			if col, ok := cm.Fields[fieldSaleNumber]; ok {
				if v := firstValue(sh, col); v != "" {
					meta.SaleNumber = SaleNumberFromString(v, meta.SaleDate)
				}
			}
		}
	}

	if meta.SaleNumber == "" {
		meta.SaleNumber = UnknownSentinel
	}
	if meta.SaleDate == "" {
		meta.SaleDate = UnknownSentinel
	}
	return meta
}

func headerRow(sh *sheet.RawSheet) []string {
	if len(sh.Rows) == 0 {
		return nil
	}
	return sh.Rows[0]
}

// firstValue returns the first non-blank cell of a column, skipping the
// header row.
func firstValue(sh *sheet.RawSheet, col int) string {
	if len(sh.Rows) < 2 {
		return ""
	}
	for _, row := range sh.Rows[1:] {
		if v := strings.TrimSpace(cellAt(row, col)); v != "" {
			return v
		}
	}
	return ""
}
