package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/teatrade/auction-cli/internal/extract"
	"github.com/teatrade/auction-cli/internal/model"
	"github.com/teatrade/auction-cli/internal/store"
)

// Options configure a directory ingest run.
type Options struct {
	// InputDir holds the broker exports and market reports to load.
	InputDir string
	// SourceLocation stamps every row, e.g. "Mombasa".
	SourceLocation string
	// HeaderScanRows bounds dynamic header detection; zero means the
	// default window.
	HeaderScanRows int
}

// RunStats summarize one ingest run.
type RunStats struct {
	// Files counts directory entries dispatched to a handler.
	Files int
	// Records counts rows inserted or updated across all tables.
	Records int64
	// Failures counts files whose handler gave up entirely; per-sheet
	// problems land in the ledger instead.
	Failures int
}

// Runner walks an input directory and feeds every recognized file through
// its handler. A Runner carries the identity of one ingest run; construct a
// fresh one per invocation.
type Runner struct {
	store   *store.Store
	extract *extract.Set
	mapping *Mapping
	opts    Options
	runID   string
	log     *zap.Logger
}

// NewRunner assembles a run over the given store and extractor set.
func NewRunner(st *store.Store, ex *extract.Set, m *Mapping, opts Options) *Runner {
	runID := uuid.NewString()
	return &Runner{
		store:   st,
		extract: ex,
		mapping: m,
		opts:    opts,
		runID:   runID,
		log:     zap.L().With(zap.String("run_id", runID)),
	}
}

// Run processes the input directory: structured workbooks first, then
// unstructured reports, each list in name order. Only a missing directory
// or a failed migration aborts the run; individual files fail in isolation
// and are tallied in the stats.
func (r *Runner) Run(ctx context.Context) (*RunStats, error) {
	structured, unstructured, err := listInputFiles(r.opts.InputDir)
	if err != nil {
		return nil, err
	}

	if err := r.store.Migrate(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: prepare store")
	}

	r.log.Info("ingest: starting run",
		zap.String("dir", r.opts.InputDir),
		zap.Int("workbooks", len(structured)),
		zap.Int("reports", len(unstructured)),
	)

	stats := &RunStats{}
	for _, filename := range structured {
		r.processFile(ctx, filename, stats)
	}
	for _, filename := range unstructured {
		r.processFile(ctx, filename, stats)
	}

	r.log.Info("ingest: run finished",
		zap.Int("files", stats.Files),
		zap.Int64("records", stats.Records),
		zap.Int("failures", stats.Failures),
	)
	return stats, nil
}

// processFile dispatches one directory entry and folds the result into the
// run totals.
func (r *Runner) processFile(ctx context.Context, filename string, stats *RunStats) {
	route := ClassifyFile(filename)
	path := filepath.Join(r.opts.InputDir, filename)

	var n int64
	var err error
	switch route {
	case RouteAuctionSummary:
		n, err = r.processAuctionSummary(ctx, path, filename)
	case RouteGeneralReport:
		n, err = r.processStandardFormat(ctx, path, filename, model.KindSale, standardOptions{
			targetSheet:   "General Report",
			dropBannerRow: true,
			internalMeta:  true,
		})
	case RouteCompleteOfferLots:
		n, err = r.processCompleteOfferLots(ctx, path, filename)
	case RouteCatalogue:
		n, err = r.processStandardFormat(ctx, path, filename, model.KindOffer, standardOptions{})
	case RouteUnstructured:
		n, err = r.processUnstructured(ctx, path, filename)
	case RouteTimeSeries, RouteSkip:
		r.log.Info("ingest: skipping file",
			zap.String("file", filename), zap.Stringer("route", route))
		return
	default:
		return
	}

	stats.Files++
	stats.Records += n
	if err != nil {
		stats.Failures++
		r.log.Error("ingest: file failed",
			zap.String("file", filename),
			zap.Stringer("route", route),
			zap.Error(err),
		)
	}
}

// listInputFiles enumerates the input directory, splitting workbooks from
// unstructured reports. Excel lock files ("~$" prefix) are dropped here;
// everything else is left for the router to judge.
func listInputFiles(dir string) (structured, unstructured []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "ingest: read directory %s", dir)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx":
			structured = append(structured, name)
		case ".pdf", ".docx", ".txt":
			unstructured = append(unstructured, name)
		}
	}

	sort.Strings(structured)
	sort.Strings(unstructured)
	return structured, unstructured, nil
}
