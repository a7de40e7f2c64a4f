package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrade/auction-cli/internal/model"
)

var testProv = Provenance{
	Location:  "Mombasa",
	FileID:    "test.xlsx::Sheet1",
	Timestamp: "2024-04-08T10:00:00Z",
}

var testMeta = Metadata{SaleNumber: "2024-15", SaleDate: "2024-04-08"}

func TestNormalizeLotsOffers(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade", "Invoice", "Pkgs", "Kilos", "Valuation"},
		{"atbl", "1001", "kapchorua", "bp1", "inv-88", "20", "1,280", "$3.10"},
		{"ATBL", "1002", "CHEMOMI", "PF1", "INV-89", "40.0", "2560", "2.95"},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	require.NoError(t, err)
	require.Len(t, batch.Offers, 2)
	assert.Empty(t, batch.Sales)
	assert.False(t, batch.NoData)

	o := batch.Offers[0]
	assert.Equal(t, "Mombasa", o.SourceLocation)
	assert.Equal(t, "2024-15", o.SaleNumber)
	assert.Equal(t, "2024-04-08", *o.SaleDate)
	assert.Equal(t, "ATBL", o.Broker)
	assert.Equal(t, "1001", o.LotNumber)
	assert.Equal(t, "KAPCHORUA", *o.Mark)
	assert.Equal(t, "BP1", *o.Grade)
	assert.Equal(t, "INV-88", *o.InvoiceNumber)
	assert.Equal(t, int64(20), *o.PackageCount)
	assert.InDelta(t, 1280.0, *o.QuantityKgs, 0.001)
	assert.InDelta(t, 3.10, *o.ValuationOrRP, 0.001)
	assert.Equal(t, "test.xlsx::Sheet1", o.SourceFileID)
	assert.Equal(t, "2024-04-08T10:00:00Z", o.ProcessedAt)

	assert.Equal(t, int64(40), *batch.Offers[1].PackageCount)
}

func TestNormalizeLotsMarkCoalesce(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Grade", "Selling Mark", "Garden"},
		{"ATBL", "1001", "BP1", "KAPCHORUA", "IGNORED"},
		{"ATBL", "1002", "BP1", "-", "CHEMOMI"},
		{"ATBL", "1003", "BP1", "nan", ""},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	require.NoError(t, err)

	// Row 3 loses its mark to noise in every candidate and is dropped.
	require.Len(t, batch.Offers, 2)
	assert.Equal(t, "KAPCHORUA", *batch.Offers[0].Mark)
	assert.Equal(t, "CHEMOMI", *batch.Offers[1].Mark)
	assert.False(t, batch.NoData)
}

func TestNormalizeLotsDropsRowsMissingRequiredFields(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade"},
		{"ATBL", "1001", "KAPCHORUA", "BP1"},
		{"ATBL", "", "KAPCHORUA", "BP1"},
		{"", "1003", "KAPCHORUA", "BP1"},
		{"ATBL", "1004", "KAPCHORUA", "-"},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	require.NoError(t, err)

	require.Len(t, batch.Offers, 1)
	assert.Equal(t, "1001", batch.Offers[0].LotNumber)
	// Rows were present before the required-field checks, so this is an
	// empty result, not a no-data sheet.
	assert.False(t, batch.NoData)
}

func TestNormalizeLotsMissingLotColumn(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Garden", "Grade"},
		{"ATBL", "KAPCHORUA", "BP1"},
	})

	_, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestNormalizeLotsMissingBrokerColumn(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Lot No", "Garden", "Grade"},
		{"1001", "KAPCHORUA", "BP1"},
	})

	_, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestNormalizeLotsBrokerOverride(t *testing.T) {
	m := DefaultMapping()
	// No broker column at all; the worksheet name supplies it.
	sh := rawSheet("ATB Ltd", [][]string{
		{"Lot No", "Garden", "Grade"},
		{"1001", "KAPCHORUA", "BP1"},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{BrokerOverride: "ATB Ltd"}, m)
	require.NoError(t, err)

	require.Len(t, batch.Offers, 1)
	assert.Equal(t, "ATB LTD", batch.Offers[0].Broker)
}

func TestNormalizeLotsBrokerOverrideBeatsColumn(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("CENTL", [][]string{
		{"Broker", "Lot No", "Garden", "Grade"},
		{"SOMEONE ELSE", "1001", "KAPCHORUA", "BP1"},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{BrokerOverride: "CENTL"}, m)
	require.NoError(t, err)

	require.Len(t, batch.Offers, 1)
	assert.Equal(t, "CENTL", batch.Offers[0].Broker)
}

func TestNormalizeLotsUnknownMetadataFiltered(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade"},
		{"ATBL", "1001", "KAPCHORUA", "BP1"},
	})

	unknown := Metadata{SaleNumber: UnknownSentinel, SaleDate: "2024-04-08"}
	batch, err := NormalizeLots(sh, 0, model.KindOffer, unknown, testProv, LotOptions{}, m)
	require.NoError(t, err)

	assert.Empty(t, batch.Offers)
	assert.True(t, batch.NoData)
}

func TestNormalizeLotsInternalMetadata(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade", "Sale Code", "Selling End Time"},
		{"ATBL", "1001", "KAPCHORUA", "BP1", "2024/15", "08/04/2024"},
		{"ATBL", "1002", "KAPCHORUA", "BP1", "Sale 16", "15/04/2024"},
		{"ATBL", "1003", "KAPCHORUA", "BP1", "Sale 17", "not a date"},
		{"ATBL", "1004", "KAPCHORUA", "BP1", "mystery", "22/04/2024"},
	})

	fileMeta := Metadata{SaleNumber: "2024-15", SaleDate: "2024-04-01"}
	batch, err := NormalizeLots(sh, 0, model.KindOffer, fileMeta, testProv, LotOptions{InternalMeta: true}, m)
	require.NoError(t, err)

	// Row 4's sale code resolves to Unknown and the row is dropped; the
	// file-level number is not a fallback when the column exists.
	require.Len(t, batch.Offers, 3)

	assert.Equal(t, "2024-15", batch.Offers[0].SaleNumber)
	assert.Equal(t, "2024-04-08", *batch.Offers[0].SaleDate)

	assert.Equal(t, "2024-16", batch.Offers[1].SaleNumber)
	assert.Equal(t, "2024-04-15", *batch.Offers[1].SaleDate)

	// Row 3: the date cell is unreadable, so the file date backfills the
	// column, but the label year stays unknown because only the row's own
	// date may hint it.
	assert.Equal(t, "UnknownYear-17", batch.Offers[2].SaleNumber)
	assert.Equal(t, "2024-04-01", *batch.Offers[2].SaleDate)

	assert.False(t, batch.NoData)
}

func TestNormalizeLotsInternalMetadataAllUnknown(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade", "Sale Code"},
		{"ATBL", "1001", "KAPCHORUA", "BP1", "mystery"},
		{"ATBL", "1002", "KAPCHORUA", "BP1", ""},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{InternalMeta: true}, m)
	require.NoError(t, err)

	assert.Empty(t, batch.Offers)
	assert.True(t, batch.NoData)
}

func TestNormalizeLotsSales(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade", "Purchased Price", "Buyer", "Kilos"},
		{"ATBL", "1001", "KAPCHORUA", "BP1", "3.42", "GLOBAL TEA", "1280"},
		{"ATBL", "1002", "KAPCHORUA", "BP1", "", "GLOBAL TEA", "1280"},
		{"ATBL", "1003", "KAPCHORUA", "BP1", "3.10", "-", "1280"},
	})

	batch, err := NormalizeLots(sh, 0, model.KindSale, testMeta, testProv, LotOptions{}, m)
	require.NoError(t, err)
	assert.Empty(t, batch.Offers)

	// Unsold and buyer-less lots drop out of the sales set.
	require.Len(t, batch.Sales, 1)
	v := batch.Sales[0]
	assert.Equal(t, "1001", v.LotNumber)
	assert.InDelta(t, 3.42, v.Price, 0.001)
	assert.Equal(t, "GLOBAL TEA", v.Buyer)
	assert.InDelta(t, 1280.0, *v.QuantityKgs, 0.001)
	assert.False(t, batch.NoData)
}

func TestNormalizeLotsInvalidKind(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{{"Broker", "Lot No"}})

	_, err := NormalizeLots(sh, 0, model.KindSummary, testMeta, testProv, LotOptions{}, m)
	assert.Error(t, err)
}

func TestNormalizeLotsHeaderIndexOutOfRange(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{{"Broker", "Lot No"}})

	// No header row means no columns resolve.
	_, err := NormalizeLots(sh, 5, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestNormalizeLotsEmptySheet(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Sheet1", [][]string{
		{"Broker", "Lot No", "Garden", "Grade"},
	})

	batch, err := NormalizeLots(sh, 0, model.KindOffer, testMeta, testProv, LotOptions{}, m)
	require.NoError(t, err)
	assert.Empty(t, batch.Offers)
	assert.True(t, batch.NoData)
}

func TestNormalizeSummary(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Main Summary", [][]string{
		{"Region/Grade", "Lots", "Kilos"},
		{"BP1", "412.0", "523,000"},
		{"PF1", "388", "410000"},
		{"KENYA TOTAL", "800", "933000"},
		{"GRAND TOTAL", "800", "933000"},
		{"", "1", "100"},
	})

	rows, err := NormalizeSummary(sh, 0, "Main", testMeta, testProv, m)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	g := rows[0]
	assert.Equal(t, "Mombasa", g.SourceLocation)
	assert.Equal(t, "2024-15", g.SaleNumber)
	assert.Equal(t, "2024-04-08", *g.SaleDate)
	assert.Equal(t, "Main", g.AuctionType)
	assert.Equal(t, "BP1", g.Grade)
	assert.Equal(t, int64(412), *g.Lots)
	assert.InDelta(t, 523000.0, *g.QuantityKgs, 0.001)

	assert.Equal(t, "PF1", rows[1].Grade)
}

func TestNormalizeSummaryMissingGradeColumn(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Main Summary", [][]string{
		{"Lots", "Kilos"},
		{"412", "523000"},
	})

	_, err := NormalizeSummary(sh, 0, "Main", testMeta, testProv, m)
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestNormalizeSummaryKeepsUnknownMetadata(t *testing.T) {
	m := DefaultMapping()
	sh := rawSheet("Main Summary", [][]string{
		{"Region/Grade", "Lots", "Kilos"},
		{"BP1", "412", "523000"},
	})

	// Summaries are keyed by grade, not sale date, so unresolved metadata
	// is stored as the sentinel instead of dropping the rows.
	unknown := Metadata{SaleNumber: UnknownSentinel, SaleDate: UnknownSentinel}
	rows, err := NormalizeSummary(sh, 0, "Main", unknown, testProv, m)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, UnknownSentinel, rows[0].SaleNumber)
	assert.Equal(t, UnknownSentinel, *rows[0].SaleDate)
}
