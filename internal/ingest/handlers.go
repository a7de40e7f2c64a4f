package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/teatrade/auction-cli/internal/extract"
	"github.com/teatrade/auction-cli/internal/model"
	"github.com/teatrade/auction-cli/internal/sheet"
)

// summarySheetConfigs fixes the worksheet layout of the weekly auction
// summary export: an offer detail sheet plus two aggregate sheets whose
// headers sit under a two-row title block.
var summarySheetConfigs = []struct {
	name        string
	header      int
	kind        model.DataKind
	auctionType string
}{
	{name: "Detail", header: 0, kind: model.KindOffer},
	{name: "Main Summary", header: 2, kind: model.KindSummary, auctionType: "Main"},
	{name: "Secondary Summary", header: 2, kind: model.KindSummary, auctionType: "Secondary"},
}

// processAuctionSummary loads the weekly auction summary workbook. Sale
// metadata comes from the filename alone; the sheets carry no usable date or
// sale columns. Absent sheets are skipped so partial exports still load.
func (r *Runner) processAuctionSummary(ctx context.Context, path, filename string) (int64, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return 0, err
	}
	meta := ExtractMetadata(filename, nil, r.mapping)

	var total int64
	for _, sc := range summarySheetConfigs {
		if !wb.Has(sc.name) {
			continue
		}
		sh, err := wb.Sheet(sc.name)
		if err != nil {
			return total, err
		}
		if sc.kind == model.KindSummary {
			total += r.loadSummary(ctx, sh, sc.header, sc.auctionType, meta)
		} else {
			total += r.loadLots(ctx, sh, sc.header, sc.kind, meta, LotOptions{})
		}
	}
	return total, nil
}

// processCompleteOfferLots loads the per-broker offer export: one worksheet
// per broker, named after the broker, with the header row at a position
// that varies by broker. A sheet whose header cannot be located is recorded
// as such and the rest of the workbook still loads.
func (r *Runner) processCompleteOfferLots(ctx context.Context, path, filename string) (int64, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return 0, err
	}
	meta := ExtractMetadata(filename, nil, r.mapping)

	var total int64
	for _, name := range wb.SheetNames() {
		sh, err := wb.Sheet(name)
		if err != nil {
			return total, err
		}

		headerIdx := FindHeaderRow(sh.Rows, r.mapping.HeaderKeywords, r.opts.HeaderScanRows)
		if headerIdx < 0 {
			r.log.Warn("ingest: no header row located",
				zap.String("file", sh.Identifier()))
			r.record(ctx, sh.Identifier(), model.KindOffer, 0, model.StatusFailedDynamicHeader)
			continue
		}

		total += r.loadLots(ctx, sh, headerIdx, model.KindOffer, meta,
			LotOptions{BrokerOverride: name})
	}
	return total, nil
}

// standardOptions tune the generic single-sheet handler per file family.
type standardOptions struct {
	targetSheet   string
	dropBannerRow bool
	internalMeta  bool
}

// processStandardFormat loads a plain header-on-first-row workbook: sale
// catalogues (offers) and general reports (sales). Metadata resolution may
// fall back to the sheet's own columns. A named target sheet that is absent
// means the workbook is a different report under a familiar name, so the
// file is left alone without a ledger entry.
func (r *Runner) processStandardFormat(ctx context.Context, path, filename string, kind model.DataKind, opts standardOptions) (int64, error) {
	wb, err := sheet.Open(path)
	if err != nil {
		return 0, err
	}

	var sh *sheet.RawSheet
	switch {
	case opts.targetSheet != "":
		if !wb.Has(opts.targetSheet) {
			return 0, nil
		}
		sh, err = wb.Sheet(opts.targetSheet)
	case len(wb.SheetNames()) > 0:
		sh, err = wb.SheetAt(0)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	meta := ExtractMetadata(filename, sh, r.mapping)

	if opts.dropBannerRow {
		dropSecondRowNoise(sh)
	}

	return r.loadLots(ctx, sh, 0, kind, meta, LotOptions{InternalMeta: opts.internalMeta}), nil
}

// dropSecondRowNoise removes the first data row when more than half its
// cells are empty. General reports put a merged-cell banner there, which
// would otherwise load as a junk lot row.
func dropSecondRowNoise(sh *sheet.RawSheet) {
	if len(sh.Rows) < 2 {
		return
	}
	cols := len(sh.Rows[0])
	if cols == 0 {
		return
	}

	empty := 0
	for i := 0; i < cols; i++ {
		if strings.TrimSpace(cellAt(sh.Rows[1], i)) == "" {
			empty++
		}
	}
	if 2*empty > cols {
		sh.Rows = append(sh.Rows[:1], sh.Rows[2:]...)
	}
}

// processUnstructured captures the text of a market report, weather note or
// circular. Unlike tabular loads, a document that already succeeded is
// skipped: its content cannot be enriched, only duplicated.
func (r *Runner) processUnstructured(ctx context.Context, path, filename string) (int64, error) {
	done, err := r.store.WasProcessed(ctx, filename, model.KindCommentary)
	if err != nil {
		return 0, err
	}
	if done {
		r.log.Debug("ingest: already captured", zap.String("file", filename))
		return 0, nil
	}

	ex := r.extract.ForFile(filename)
	if ex == nil {
		return 0, nil
	}

	content, err := ex.ExtractText(ctx, path)
	if err != nil || content == "" {
		if err != nil {
			r.log.Warn("ingest: text extraction failed",
				zap.String("file", filename), zap.Error(err))
		}
		r.record(ctx, filename, model.KindCommentary, 0, model.StatusFailedExtraction)
		return 0, nil
	}

	meta := ExtractMetadata(filename, nil, r.mapping)
	reportDate := meta.SaleDate

	n, err := r.store.InsertCommentary(ctx, model.Commentary{
		SourceLocation: r.opts.SourceLocation,
		ReportDate:     &reportDate,
		SaleNumber:     meta.SaleNumber,
		ContentType:    extract.Classify(filename),
		Content:        content,
		SourceFile:     filename,
		ProcessedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		r.log.Error("ingest: commentary insert failed",
			zap.String("file", filename), zap.Error(err))
		r.record(ctx, filename, model.KindCommentary, 0, model.StatusFailedProcessing)
		return 0, nil
	}

	r.record(ctx, filename, model.KindCommentary, n, model.StatusSuccess)
	return n, nil
}

// loadLots normalizes one worksheet of lot rows, merges the batch and
// records the outcome. Normalization failures land in the ledger instead of
// propagating; only the record count flows back to the run totals.
func (r *Runner) loadLots(ctx context.Context, sh *sheet.RawSheet, headerIdx int, kind model.DataKind, meta Metadata, opts LotOptions) int64 {
	fileID := sh.Identifier()
	log := r.log.With(zap.String("file", fileID), zap.String("kind", string(kind)))

	prov := Provenance{
		Location:  r.opts.SourceLocation,
		FileID:    fileID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	batch, err := NormalizeLots(sh, headerIdx, kind, meta, prov, opts, r.mapping)
	switch {
	case eris.Is(err, ErrMissingColumns):
		log.Warn("ingest: identity columns missing")
		r.record(ctx, fileID, kind, 0, model.StatusFailedMissingCols)
		return 0
	case err != nil:
		log.Error("ingest: lot normalization failed", zap.Error(err))
		r.record(ctx, fileID, kind, 0, model.StatusFailedProcessing)
		return 0
	}

	if batch.NoData {
		log.Info("ingest: no usable rows")
		r.record(ctx, fileID, kind, 0, model.StatusSuccessNoData)
		return 0
	}

	var n int64
	if kind == model.KindSale {
		n, err = r.store.UpsertSales(ctx, batch.Sales)
	} else {
		n, err = r.store.UpsertOffers(ctx, batch.Offers)
	}
	if err != nil {
		log.Error("ingest: merge failed", zap.Error(err))
		r.record(ctx, fileID, kind, 0, model.StatusFailedProcessing)
		return 0
	}

	log.Info("ingest: lots merged", zap.Int64("records", n))
	r.record(ctx, fileID, kind, n, model.StatusSuccess)
	return n
}

// loadSummary normalizes and inserts one grade summary worksheet.
func (r *Runner) loadSummary(ctx context.Context, sh *sheet.RawSheet, headerIdx int, auctionType string, meta Metadata) int64 {
	fileID := sh.Identifier()
	log := r.log.With(zap.String("file", fileID), zap.String("auction_type", auctionType))

	prov := Provenance{
		Location:  r.opts.SourceLocation,
		FileID:    fileID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	rows, err := NormalizeSummary(sh, headerIdx, auctionType, meta, prov, r.mapping)
	switch {
	case eris.Is(err, ErrMissingColumns):
		log.Warn("ingest: grade column missing")
		r.record(ctx, fileID, model.KindSummary, 0, model.StatusFailedMissingCols)
		return 0
	case err != nil:
		log.Error("ingest: summary normalization failed", zap.Error(err))
		r.record(ctx, fileID, model.KindSummary, 0, model.StatusFailedProcessing)
		return 0
	}

	n, err := r.store.InsertSummaries(ctx, rows)
	if err != nil {
		log.Error("ingest: summary insert failed", zap.Error(err))
		r.record(ctx, fileID, model.KindSummary, 0, model.StatusFailedProcessing)
		return 0
	}

	log.Info("ingest: summary rows inserted", zap.Int64("records", n))
	r.record(ctx, fileID, model.KindSummary, n, model.StatusSuccess)
	return n
}

// record writes a ledger outcome, demoting ledger write failures to a log
// line so they never mask the data outcome.
func (r *Runner) record(ctx context.Context, fileID string, kind model.DataKind, n int64, status model.Status) {
	if err := r.store.RecordOutcome(ctx, fileID, kind, n, status); err != nil {
		r.log.Warn("ingest: ledger write failed",
			zap.String("file", fileID), zap.Error(err))
	}
}
