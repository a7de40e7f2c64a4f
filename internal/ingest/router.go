package ingest

import (
	"path/filepath"
	"strings"
)

// Route identifies which handler a directory entry belongs to.
type Route int

const (
	// RouteSkip covers unrecognized formats and known diagnostic files.
	RouteSkip Route = iota
	RouteAuctionSummary
	RouteGeneralReport
	RouteCompleteOfferLots
	RouteCatalogue
	// RouteTimeSeries marks the auction-quantity time series export, which
	// is recognized but not loaded.
	RouteTimeSeries
	RouteUnstructured
)

// String names the route for log lines.
func (r Route) String() string {
	switch r {
	case RouteAuctionSummary:
		return "auction_summary"
	case RouteGeneralReport:
		return "general_report"
	case RouteCompleteOfferLots:
		return "complete_offer_lots"
	case RouteCatalogue:
		return "catalogue"
	case RouteTimeSeries:
		return "time_series"
	case RouteUnstructured:
		return "unstructured"
	default:
		return "skip"
	}
}

// diagnosticFiles are working notes that ship alongside the real reports and
// must never be loaded as commentary.
var diagnosticFiles = map[string]struct{}{
	"header diagnostic.txt": {},
	"mombasa i.txt":         {},
}

// ClassifyFile routes one directory entry by filename. Workbooks route on
// case-insensitive substrings, the contract the brokers' export names have
// kept stable for years; anything unrecognized is skipped rather than
// guessed at. The match order resolves overlaps: a general report whose
// name also mentions a catalogue is still a general report.
func ClassifyFile(filename string) Route {
	fn := strings.ToLower(filename)

	switch filepath.Ext(fn) {
	case ".xlsx":
		switch {
		case strings.Contains(fn, "auctionsummary"):
			return RouteAuctionSummary
		case strings.Contains(fn, "generalreport"):
			return RouteGeneralReport
		case strings.Contains(fn, "completeofferlots"):
			return RouteCompleteOfferLots
		case strings.Contains(fn, "sale") && strings.Contains(fn, "catalogue"):
			return RouteCatalogue
		case strings.Contains(fn, "auction quantity"):
			return RouteTimeSeries
		default:
			return RouteSkip
		}
	case ".pdf", ".docx", ".txt":
		if _, diag := diagnosticFiles[fn]; diag {
			return RouteSkip
		}
		return RouteUnstructured
	default:
		return RouteSkip
	}
}
