package model

// Offer is one lot offered for sale in an auction catalogue. Offers are
// assembled incrementally: catalogue files, complete-offer-lot exports and
// summary sheets each contribute a partial view of the same lot, identified
// by its natural key (SourceLocation, SaleNumber, LotNumber, Broker).
type Offer struct {
	ID             int64
	SourceLocation string
	SaleDate       *string
	SaleNumber     string
	Broker         string
	Mark           *string
	Grade          *string
	LotNumber      string
	InvoiceNumber  *string
	QuantityKgs    *float64
	PackageCount   *int64
	ValuationOrRP  *float64
	SourceFileID   string
	ProcessedAt    string
}

// Key returns the natural-key tuple used for conflict detection, suitable
// for in-batch dedup maps.
func (o Offer) Key() string {
	return o.SourceLocation + "\x1f" + o.SaleNumber + "\x1f" + o.LotNumber + "\x1f" + o.Broker
}

// Sale is a concluded transaction for a lot. Unlike offers, a sale row is an
// authoritative snapshot: price and buyer are required and later loads of the
// same lot replace earlier ones wholesale.
type Sale struct {
	ID             int64
	SourceLocation string
	SaleDate       *string
	SaleNumber     string
	Broker         string
	Mark           *string
	Grade          *string
	LotNumber      string
	InvoiceNumber  *string
	QuantityKgs    *float64
	PackageCount   *int64
	Price          float64
	Buyer          string
	SourceFileID   string
	ProcessedAt    string
}

// Key returns the natural-key tuple used for conflict detection.
func (s Sale) Key() string {
	return s.SourceLocation + "\x1f" + s.SaleNumber + "\x1f" + s.LotNumber + "\x1f" + s.Broker
}

// GradeSummary is one aggregate row from an auction summary sheet: lot count
// and volume for a grade within a sale, split by auction type (Main or
// Secondary).
type GradeSummary struct {
	ID             int64
	SourceLocation string
	SaleDate       *string
	SaleNumber     string
	AuctionType    string
	Grade          string
	Lots           *int64
	QuantityKgs    *float64
	SourceFileID   string
	ProcessedAt    string
}

// Key returns the natural-key tuple used for conflict detection.
func (g GradeSummary) Key() string {
	return g.SourceLocation + "\x1f" + g.SaleNumber + "\x1f" + g.AuctionType + "\x1f" + g.Grade
}

// Commentary is the extracted text of one unstructured market document
// (weather note, market report, circular). Content is stored verbatim;
// classification happens at ingest from the filename.
type Commentary struct {
	ID             int64
	SourceLocation string
	ReportDate     *string
	SaleNumber     string
	ContentType    string
	Content        string
	SourceFile     string
	ProcessedAt    string
}
