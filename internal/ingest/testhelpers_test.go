package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/teatrade/auction-cli/internal/extract"
	"github.com/teatrade/auction-cli/internal/model"
	"github.com/teatrade/auction-cli/internal/store"
)

// testSheet is one worksheet for writeWorkbook; sheet order is preserved.
type testSheet struct {
	name string
	rows [][]string
}

func writeWorkbook(t *testing.T, dir, filename string, sheets []testSheet) {
	t.Helper()
	f := xlsx.NewFile()
	for _, ts := range sheets {
		sh, err := f.AddSheet(ts.name)
		require.NoError(t, err)
		for _, rowData := range ts.rows {
			row := sh.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	require.NoError(t, f.Save(filepath.Join(dir, filename)))
}

func newIngestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newTestRunner(st *store.Store, dir string) *Runner {
	return NewRunner(st, extract.NewSet(""), DefaultMapping(), Options{
		InputDir:       dir,
		SourceLocation: "Mombasa",
		HeaderScanRows: 20,
	})
}

// ledgerByID indexes ledger entries by "identifier|kind" for assertions.
func ledgerByID(t *testing.T, st *store.Store) map[string]model.LogEntry {
	t.Helper()
	entries, err := st.ListLedger(context.Background())
	require.NoError(t, err)
	m := make(map[string]model.LogEntry, len(entries))
	for _, e := range entries {
		m[e.FileIdentifier+"|"+string(e.DataKind)] = e
	}
	return m
}
