package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// Content type labels stored on commentary rows. Classification is filename
// driven; the documents themselves carry no reliable markers.
const (
	ContentWeather      = "WEATHER"
	ContentMarketReport = "MARKET_REPORT"
	ContentGeneral      = "GENERAL"
)

// Extractor pulls plain text out of one unstructured document. Implementations
// return trimmed text; an empty result means the document yielded nothing.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// Set bundles the per-format extractors behind one dispatch point.
type Set struct {
	pdf  Extractor
	docx Extractor
	text Extractor
}

// NewSet creates the default extractor set. pdfToTextPath overrides the
// pdftotext binary location; empty means $PATH lookup.
func NewSet(pdfToTextPath string) *Set {
	return &Set{
		pdf:  NewPdfToText(pdfToTextPath),
		docx: Docx{},
		text: Text{},
	}
}

// ForFile returns the extractor responsible for the file's extension, or nil
// when the format is not handled.
func (s *Set) ForFile(path string) Extractor {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return s.pdf
	case ".docx":
		return s.docx
	case ".txt":
		return s.text
	default:
		return nil
	}
}

// Classify buckets a report by filename keywords.
func Classify(filename string) string {
	fn := strings.ToLower(filename)
	switch {
	case strings.Contains(fn, "weather"):
		return ContentWeather
	case strings.Contains(fn, "market report"), strings.Contains(fn, "weekly report"):
		return ContentMarketReport
	default:
		return ContentGeneral
	}
}
