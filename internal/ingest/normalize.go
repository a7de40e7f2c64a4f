package ingest

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/teatrade/auction-cli/internal/model"
	"github.com/teatrade/auction-cli/internal/sheet"
)

// ErrMissingColumns reports that a sheet lacks the columns the natural key
// is built from (lot number or broker for lot details, grade for summaries).
// Handlers map it to a dedicated ledger status so a vocabulary gap shows up
// differently from a processing bug.
var ErrMissingColumns = eris.New("ingest: required identity columns missing")

// Provenance stamps every emitted row with where the data came from.
type Provenance struct {
	Location  string // market, e.g. "Mombasa"
	FileID    string // filename or filename::sheet
	Timestamp string // load time, ISO-8601
}

// LotOptions adjust lot normalization per file family.
type LotOptions struct {
	// InternalMeta derives sale date and number per row from the sheet's
	// own columns; used for multi-sale files where one file-level value
	// would mislabel rows.
	InternalMeta bool
	// BrokerOverride stamps a fixed broker on every row, used when the
	// worksheet name carries the broker and the cells do not.
	BrokerOverride string
}

// LotBatch is the outcome of normalizing one sheet of lot rows. Exactly one
// of Offers and Sales is populated, matching the requested kind.
type LotBatch struct {
	Offers []model.Offer
	Sales  []model.Sale
	// NoData reports that metadata filtering removed every row, which the
	// ledger records distinctly from a batch emptied by required-field
	// checks.
	NoData bool
}

// NormalizeLots turns the raw cell grid of one worksheet into typed lot
// records. The steps mirror how the row set is assembled: resolve columns,
// coalesce the mark candidates, derive or backfill sale metadata, coerce
// numerics, clean identifier text, then drop rows that cannot carry the
// natural key or the kind's required fields.
func NormalizeLots(sh *sheet.RawSheet, headerIdx int, kind model.DataKind, meta Metadata, prov Provenance, opts LotOptions, m *Mapping) (*LotBatch, error) {
	if kind != model.KindOffer && kind != model.KindSale {
		return nil, eris.Errorf("ingest: invalid lot kind %q", kind)
	}

	var headers []string
	var data [][]string
	if headerIdx >= 0 && headerIdx < len(sh.Rows) {
		headers = sh.Rows[headerIdx]
		data = sh.Rows[headerIdx+1:]
	}

	cm := ResolveColumns(headers, m.LotFields, m.MarkAliases)

	brokerFromCells := opts.BrokerOverride == ""
	if !cm.Has(fieldLotNumber) || (brokerFromCells && !cm.Has(fieldBroker)) {
		return nil, ErrMissingColumns
	}

	noise := m.noiseSet()
	batch := &LotBatch{}
	kept := 0

	for _, row := range data {
		saleNumber, saleDate := rowSaleMeta(row, cm, meta, opts)
		if saleNumber == UnknownSentinel || saleDate == UnknownSentinel {
			continue
		}
		kept++

		rec := lotRecord{
			saleNumber: saleNumber,
			saleDate:   saleDate,
			mark:       coalesceMark(row, cm.MarkCandidates, noise),
			grade:      cleanField(row, cm, fieldGrade, noise),
			lotNumber:  cleanField(row, cm, fieldLotNumber, noise),
			invoice:    cleanField(row, cm, fieldInvoiceNumber, noise),
			buyer:      cleanField(row, cm, fieldBuyer, noise),
			quantity:   numericField(row, cm, fieldQuantityKgs),
			price:      numericField(row, cm, fieldPrice),
			valuation:  numericField(row, cm, fieldValuation),
			packages:   countField(row, cm, fieldPackageCount),
		}
		if brokerFromCells {
			rec.broker = cleanField(row, cm, fieldBroker, noise)
		} else {
			rec.broker = cleanText(opts.BrokerOverride, noise)
		}

		if rec.lotNumber == nil || rec.broker == nil || rec.mark == nil || rec.grade == nil {
			continue
		}

		switch kind {
		case model.KindOffer:
			batch.Offers = append(batch.Offers, rec.toOffer(prov))
		case model.KindSale:
			if rec.price == nil || rec.buyer == nil {
				continue
			}
			batch.Sales = append(batch.Sales, rec.toSale(prov))
		}
	}

	batch.NoData = kept == 0
	return batch, nil
}

// NormalizeSummary turns an auction summary sheet into grade aggregate rows.
// Country and grand-total aggregates are dropped so the table holds one row
// per actual grade; the summary sheets repeat the per-country rollups that
// downstream consumers compute themselves.
func NormalizeSummary(sh *sheet.RawSheet, headerIdx int, auctionType string, meta Metadata, prov Provenance, m *Mapping) ([]model.GradeSummary, error) {
	var headers []string
	var data [][]string
	if headerIdx >= 0 && headerIdx < len(sh.Rows) {
		headers = sh.Rows[headerIdx]
		data = sh.Rows[headerIdx+1:]
	}

	cm := ResolveColumns(headers, m.SummaryFields, nil)
	if !cm.Has(fieldGrade) {
		return nil, ErrMissingColumns
	}

	noise := m.noiseSet()
	var out []model.GradeSummary

	for _, row := range data {
		grade := cleanField(row, cm, fieldGrade, noise)
		if grade == nil || isAggregateGrade(*grade, m.RegionFilters) {
			continue
		}

		saleDate := meta.SaleDate
		out = append(out, model.GradeSummary{
			SourceLocation: prov.Location,
			SaleDate:       &saleDate,
			SaleNumber:     meta.SaleNumber,
			AuctionType:    auctionType,
			Grade:          *grade,
			Lots:           countField(row, cm, fieldLots),
			QuantityKgs:    numericField(row, cm, fieldQuantityKgs),
			SourceFileID:   prov.FileID,
			ProcessedAt:    prov.Timestamp,
		})
	}
	return out, nil
}

// lotRecord is the normalized superset row before kind-specific conversion.
type lotRecord struct {
	saleNumber string
	saleDate   string
	broker     *string
	mark       *string
	grade      *string
	lotNumber  *string
	invoice    *string
	buyer      *string
	quantity   *float64
	price      *float64
	valuation  *float64
	packages   *int64
}

func (r lotRecord) toOffer(prov Provenance) model.Offer {
	saleDate := r.saleDate
	return model.Offer{
		SourceLocation: prov.Location,
		SaleDate:       &saleDate,
		SaleNumber:     r.saleNumber,
		Broker:         *r.broker,
		Mark:           r.mark,
		Grade:          r.grade,
		LotNumber:      *r.lotNumber,
		InvoiceNumber:  r.invoice,
		QuantityKgs:    r.quantity,
		PackageCount:   r.packages,
		ValuationOrRP:  r.valuation,
		SourceFileID:   prov.FileID,
		ProcessedAt:    prov.Timestamp,
	}
}

func (r lotRecord) toSale(prov Provenance) model.Sale {
	saleDate := r.saleDate
	return model.Sale{
		SourceLocation: prov.Location,
		SaleDate:       &saleDate,
		SaleNumber:     r.saleNumber,
		Broker:         *r.broker,
		Mark:           r.mark,
		Grade:          r.grade,
		LotNumber:      *r.lotNumber,
		InvoiceNumber:  r.invoice,
		QuantityKgs:    r.quantity,
		PackageCount:   r.packages,
		Price:          *r.price,
		Buyer:          *r.buyer,
		SourceFileID:   prov.FileID,
		ProcessedAt:    prov.Timestamp,
	}
}

// rowSaleMeta resolves the sale number and date for one row. With internal
// metadata on, the row's own columns rule: a sale-code cell that reads as
// Unknown stays Unknown rather than borrowing the file-level value, because
// multi-sale files have no single correct fallback. The date falls back to
// the file-level value when the cell is unparseable, but only the row's own
// parsed date may serve as the sale-number year hint.
func rowSaleMeta(row []string, cm ColumnMap, meta Metadata, opts LotOptions) (saleNumber, saleDate string) {
	if !opts.InternalMeta {
		return meta.SaleNumber, meta.SaleDate
	}

	rowDate := ""
	if col, ok := cm.Fields[fieldSaleDate]; ok {
		rowDate = ParseDate(cellAt(row, col), "")
	}
	saleDate = rowDate
	if saleDate == "" {
		saleDate = meta.SaleDate
	}

	saleNumber = meta.SaleNumber
	if col, ok := cm.Fields[fieldSaleNumber]; ok {
		saleNumber = SaleNumberFromString(strings.TrimSpace(cellAt(row, col)), rowDate)
	}
	return saleNumber, saleDate
}

// coalesceMark picks the first non-null mark candidate in rank order.
func coalesceMark(row []string, candidates []MarkCandidate, noise map[string]struct{}) *string {
	for _, c := range candidates {
		if v := cleanText(cellAt(row, c.Col), noise); v != nil {
			return v
		}
	}
	return nil
}

func cleanField(row []string, cm ColumnMap, field string, noise map[string]struct{}) *string {
	col, ok := cm.Fields[field]
	if !ok {
		return nil
	}
	return cleanText(cellAt(row, col), noise)
}

func numericField(row []string, cm ColumnMap, field string) *float64 {
	col, ok := cm.Fields[field]
	if !ok {
		return nil
	}
	return parseFloatPtr(cellAt(row, col))
}

func countField(row []string, cm ColumnMap, field string) *int64 {
	col, ok := cm.Fields[field]
	if !ok {
		return nil
	}
	return parseIntPtr(cellAt(row, col))
}

// isAggregateGrade reports whether a cleaned grade cell is a country or
// grand-total rollup row rather than a real grade.
func isAggregateGrade(grade string, filters []string) bool {
	for _, f := range filters {
		if strings.Contains(grade, f) {
			return true
		}
	}
	return false
}
