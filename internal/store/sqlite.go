package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/teatrade/auction-cli/internal/model"
)

// Store is the embedded auction database, a single SQLite file holding the
// canonical tables plus the processing ledger and the news feed. All writes
// go through the merge methods so the per-table conflict policies cannot be
// bypassed.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at the given path and configures WAL mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

// The natural-key UNIQUE constraints are what the merge policies hang off:
// conflict targets must match them exactly.
const migration = `
CREATE TABLE IF NOT EXISTS processing_log (
	id                  INTEGER PRIMARY KEY,
	file_identifier     TEXT NOT NULL,
	processed_timestamp TEXT NOT NULL,
	records_inserted    INTEGER,
	data_type           TEXT NOT NULL,
	status              TEXT NOT NULL,
	UNIQUE(file_identifier, data_type)
);

CREATE TABLE IF NOT EXISTS auction_offers (
	id                     INTEGER PRIMARY KEY,
	source_location        TEXT NOT NULL,
	sale_date              TEXT,
	sale_number            TEXT,
	broker                 TEXT,
	mark                   TEXT,
	grade                  TEXT,
	lot_number             TEXT NOT NULL,
	invoice_number         TEXT,
	quantity_kgs           REAL,
	package_count          INTEGER,
	valuation_or_rp        REAL,
	source_file_identifier TEXT NOT NULL,
	processed_timestamp    TEXT NOT NULL,
	UNIQUE(source_location, sale_number, lot_number, broker)
);

CREATE TABLE IF NOT EXISTS auction_sales (
	id                     INTEGER PRIMARY KEY,
	source_location        TEXT NOT NULL,
	sale_date              TEXT,
	sale_number            TEXT,
	broker                 TEXT,
	mark                   TEXT,
	grade                  TEXT,
	lot_number             TEXT NOT NULL,
	invoice_number         TEXT,
	quantity_kgs           REAL,
	package_count          INTEGER,
	price                  REAL NOT NULL,
	buyer                  TEXT NOT NULL,
	source_file_identifier TEXT NOT NULL,
	processed_timestamp    TEXT NOT NULL,
	UNIQUE(source_location, sale_number, lot_number, broker)
);

CREATE TABLE IF NOT EXISTS grade_summary (
	id                     INTEGER PRIMARY KEY,
	source_location        TEXT NOT NULL,
	sale_date              TEXT,
	sale_number            TEXT,
	auction_type           TEXT NOT NULL,
	grade                  TEXT NOT NULL,
	lots                   INTEGER,
	quantity_kgs           REAL,
	source_file_identifier TEXT NOT NULL,
	processed_timestamp    TEXT NOT NULL,
	UNIQUE(source_location, sale_number, auction_type, grade)
);

CREATE TABLE IF NOT EXISTS market_commentary (
	id                  INTEGER PRIMARY KEY,
	source_location     TEXT NOT NULL,
	report_date         TEXT,
	sale_number         TEXT,
	content_type        TEXT NOT NULL,
	content             TEXT NOT NULL,
	source_file         TEXT NOT NULL,
	processed_timestamp TEXT NOT NULL,
	UNIQUE(source_location, sale_number, content_type, source_file)
);

CREATE TABLE IF NOT EXISTS articles (
	id           INTEGER PRIMARY KEY,
	headline     TEXT NOT NULL,
	snippet      TEXT,
	source       TEXT NOT NULL,
	link         TEXT NOT NULL UNIQUE,
	scraped_date TEXT NOT NULL,
	article_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_processing_log_timestamp ON processing_log(processed_timestamp);
CREATE INDEX IF NOT EXISTS idx_auction_offers_sale ON auction_offers(sale_number);
CREATE INDEX IF NOT EXISTS idx_auction_sales_sale ON auction_sales(sale_number);
`

// Migrate applies the schema. Safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetOffer fetches one offer by its natural key.
func (s *Store) GetOffer(ctx context.Context, location, saleNumber, lotNumber, broker string) (*model.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_location, sale_date, sale_number, broker, mark, grade,
		        lot_number, invoice_number, quantity_kgs, package_count, valuation_or_rp,
		        source_file_identifier, processed_timestamp
		 FROM auction_offers
		 WHERE source_location = ? AND sale_number = ? AND lot_number = ? AND broker = ?`,
		location, saleNumber, lotNumber, broker,
	)

	var o model.Offer
	var saleDate, mark, grade, invoice sql.NullString
	var quantity, valuation sql.NullFloat64
	var packages sql.NullInt64
	err := row.Scan(&o.ID, &o.SourceLocation, &saleDate, &o.SaleNumber, &o.Broker,
		&mark, &grade, &o.LotNumber, &invoice, &quantity, &packages, &valuation,
		&o.SourceFileID, &o.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get offer")
	}
	o.SaleDate = nullStr(saleDate)
	o.Mark = nullStr(mark)
	o.Grade = nullStr(grade)
	o.InvoiceNumber = nullStr(invoice)
	o.QuantityKgs = nullFloat(quantity)
	o.PackageCount = nullInt(packages)
	o.ValuationOrRP = nullFloat(valuation)
	return &o, nil
}

// GetSale fetches one sale by its natural key.
func (s *Store) GetSale(ctx context.Context, location, saleNumber, lotNumber, broker string) (*model.Sale, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_location, sale_date, sale_number, broker, mark, grade,
		        lot_number, invoice_number, quantity_kgs, package_count, price, buyer,
		        source_file_identifier, processed_timestamp
		 FROM auction_sales
		 WHERE source_location = ? AND sale_number = ? AND lot_number = ? AND broker = ?`,
		location, saleNumber, lotNumber, broker,
	)

	var v model.Sale
	var saleDate, mark, grade, invoice sql.NullString
	var quantity sql.NullFloat64
	var packages sql.NullInt64
	err := row.Scan(&v.ID, &v.SourceLocation, &saleDate, &v.SaleNumber, &v.Broker,
		&mark, &grade, &v.LotNumber, &invoice, &quantity, &packages, &v.Price, &v.Buyer,
		&v.SourceFileID, &v.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get sale")
	}
	v.SaleDate = nullStr(saleDate)
	v.Mark = nullStr(mark)
	v.Grade = nullStr(grade)
	v.InvoiceNumber = nullStr(invoice)
	v.QuantityKgs = nullFloat(quantity)
	v.PackageCount = nullInt(packages)
	return &v, nil
}

// helpers

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
