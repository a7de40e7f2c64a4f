package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/teatrade/auction-cli/internal/model"
)

// Offers merge field-by-field: a conflicting row only overwrites columns the
// incoming row actually has, so a sparse catalogue can never blank out data
// a richer export already contributed. Provenance always moves to the latest
// contributor. Rows execute one at a time inside the transaction, which lets
// a duplicate key later in the same batch enrich the row written moments
// before.
const upsertOfferSQL = `
INSERT INTO auction_offers (
	source_location, sale_date, sale_number, broker, mark, grade, lot_number,
	invoice_number, quantity_kgs, package_count, valuation_or_rp,
	source_file_identifier, processed_timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source_location, sale_number, lot_number, broker) DO UPDATE SET
	valuation_or_rp        = COALESCE(excluded.valuation_or_rp, valuation_or_rp),
	mark                   = COALESCE(excluded.mark, mark),
	quantity_kgs           = COALESCE(excluded.quantity_kgs, quantity_kgs),
	package_count          = COALESCE(excluded.package_count, package_count),
	invoice_number         = COALESCE(excluded.invoice_number, invoice_number),
	grade                  = COALESCE(excluded.grade, grade),
	sale_date              = COALESCE(excluded.sale_date, sale_date),
	source_file_identifier = excluded.source_file_identifier,
	processed_timestamp    = excluded.processed_timestamp`

// Sales overwrite: a sales report is the authoritative record of the
// transaction, so the latest load replaces every non-key column.
const upsertSaleSQL = `
INSERT INTO auction_sales (
	source_location, sale_date, sale_number, broker, mark, grade, lot_number,
	invoice_number, quantity_kgs, package_count, price, buyer,
	source_file_identifier, processed_timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source_location, sale_number, lot_number, broker) DO UPDATE SET
	sale_date              = excluded.sale_date,
	mark                   = excluded.mark,
	grade                  = excluded.grade,
	invoice_number         = excluded.invoice_number,
	quantity_kgs           = excluded.quantity_kgs,
	package_count          = excluded.package_count,
	price                  = excluded.price,
	buyer                  = excluded.buyer,
	source_file_identifier = excluded.source_file_identifier,
	processed_timestamp    = excluded.processed_timestamp`

const insertSummarySQL = `
INSERT OR IGNORE INTO grade_summary (
	source_location, sale_date, sale_number, auction_type, grade, lots,
	quantity_kgs, source_file_identifier, processed_timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertCommentarySQL = `
INSERT OR IGNORE INTO market_commentary (
	source_location, report_date, sale_number, content_type, content,
	source_file, processed_timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?)`

// UpsertOffers merges a batch of offers and returns the number of rows
// inserted or updated. The batch is one transaction: on error nothing lands.
func (s *Store) UpsertOffers(ctx context.Context, offers []model.Offer) (int64, error) {
	return s.execBatch(ctx, upsertOfferSQL, len(offers), func(i int) []any {
		o := offers[i]
		return []any{
			o.SourceLocation, o.SaleDate, o.SaleNumber, o.Broker, o.Mark, o.Grade,
			o.LotNumber, o.InvoiceNumber, o.QuantityKgs, o.PackageCount,
			o.ValuationOrRP, o.SourceFileID, o.ProcessedAt,
		}
	})
}

// UpsertSales replaces or inserts a batch of sales and returns the number of
// rows affected.
func (s *Store) UpsertSales(ctx context.Context, sales []model.Sale) (int64, error) {
	return s.execBatch(ctx, upsertSaleSQL, len(sales), func(i int) []any {
		v := sales[i]
		return []any{
			v.SourceLocation, v.SaleDate, v.SaleNumber, v.Broker, v.Mark, v.Grade,
			v.LotNumber, v.InvoiceNumber, v.QuantityKgs, v.PackageCount,
			v.Price, v.Buyer, v.SourceFileID, v.ProcessedAt,
		}
	})
}

// InsertSummaries inserts grade summary rows, ignoring natural-key
// duplicates, and returns the number actually inserted.
func (s *Store) InsertSummaries(ctx context.Context, summaries []model.GradeSummary) (int64, error) {
	return s.execBatch(ctx, insertSummarySQL, len(summaries), func(i int) []any {
		g := summaries[i]
		return []any{
			g.SourceLocation, g.SaleDate, g.SaleNumber, g.AuctionType, g.Grade,
			g.Lots, g.QuantityKgs, g.SourceFileID, g.ProcessedAt,
		}
	})
}

// InsertCommentary inserts one commentary row unless the same document was
// already captured, returning 1 or 0.
func (s *Store) InsertCommentary(ctx context.Context, c model.Commentary) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertCommentarySQL,
		c.SourceLocation, c.ReportDate, c.SaleNumber, c.ContentType, c.Content,
		c.SourceFile, c.ProcessedAt,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert commentary")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: rows affected")
}

// execBatch runs one statement per row inside a single transaction and sums
// the affected counts.
func (s *Store) execBatch(ctx context.Context, query string, n int, args func(i int) []any) (int64, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare")
	}
	defer stmt.Close()

	var affected int64
	for i := 0; i < n; i++ {
		res, err := stmt.ExecContext(ctx, args(i)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: exec row %d", i)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		affected += rows
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return affected, nil
}
