package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerSkipsUnhandledFiles(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "~$AuctionSummary_2024-15_080424.xlsx", []testSheet{
		{name: "Detail", rows: [][]string{{"x"}}},
	})
	writeWorkbook(t, dir, "Mombasa Auction Quantity Series.xlsx", []testSheet{
		{name: "Sheet1", rows: [][]string{{"week", "kgs"}}},
	})
	writeWorkbook(t, dir, "Mystery Export.xlsx", []testSheet{
		{name: "Sheet1", rows: [][]string{{"a", "b"}}},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Header Diagnostic.txt"), []byte("columns: ..."), 0o644))

	st := newIngestStore(t)
	stats, err := newTestRunner(st, dir).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Files)
	assert.Equal(t, int64(0), stats.Records)
	assert.Equal(t, 0, stats.Failures)
	assert.Empty(t, ledgerByID(t, st))
}

func TestRunnerMissingDirectory(t *testing.T) {
	st := newIngestStore(t)
	r := newTestRunner(st, filepath.Join(t.TempDir(), "absent"))

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read directory")
}

func TestRunnerCorruptWorkbookIsIsolated(t *testing.T) {
	dir := t.TempDir()
	// Not a zip container at all.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AuctionSummary_broken.xlsx"), []byte("garbage"), 0o644))
	writeWorkbook(t, dir, "Sale 15_Catalogue_08_04_2024.xlsx", []testSheet{
		{name: "Sheet1", rows: [][]string{
			{"Broker", "Lot No", "Garden", "Grade"},
			{"ATBL", "1001", "KAPCHORUA", "BP1"},
		}},
	})

	st := newIngestStore(t)
	stats, err := newTestRunner(st, dir).Run(context.Background())
	require.NoError(t, err)

	// The broken file is counted against the run, the good one still loads.
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, int64(1), stats.Records)

	o, err := st.GetOffer(context.Background(), "Mombasa", "2024-15", "1001", "ATBL")
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestListInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b catalogue.xlsx", "A Report.XLSX", "~$lock.xlsx",
		"report.pdf", "notes.txt", "weather.docx", "data.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0o755))

	structured, unstructured, err := listInputFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"A Report.XLSX", "b catalogue.xlsx"}, structured)
	assert.Equal(t, []string{"notes.txt", "report.pdf", "weather.docx"}, unstructured)
}

func TestListInputFilesMissingDir(t *testing.T) {
	_, _, err := listInputFiles(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestNewRunnerDistinctRunIDs(t *testing.T) {
	st := newIngestStore(t)
	a := newTestRunner(st, t.TempDir())
	b := newTestRunner(st, t.TempDir())
	assert.NotEmpty(t, a.runID)
	assert.NotEqual(t, a.runID, b.runID)
}
