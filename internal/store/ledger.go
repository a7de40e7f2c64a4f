package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"github.com/teatrade/auction-cli/internal/model"
)

// RecordOutcome writes the attempt outcome for a (file, kind) pair. Each
// pair keeps only its latest attempt: re-running a file replaces the old
// entry wholesale, so the ledger always reads as current state rather than
// history.
func (s *Store) RecordOutcome(ctx context.Context, fileID string, kind model.DataKind, records int64, status model.Status) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO processing_log
		   (file_identifier, processed_timestamp, records_inserted, data_type, status)
		 VALUES (?, ?, ?, ?, ?)`,
		fileID, time.Now().UTC().Format(time.RFC3339), records, string(kind), string(status),
	)
	return eris.Wrapf(err, "sqlite: record outcome %s/%s", fileID, kind)
}

// WasProcessed reports whether the pair's latest attempt succeeded. Only the
// unstructured path consults this; tabular files re-run every time so the
// enrichment merge can pick up whatever new columns a re-export carries.
func (s *Store) WasProcessed(ctx context.Context, fileID string, kind model.DataKind) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM processing_log
		 WHERE file_identifier = ? AND data_type = ? AND status = ?`,
		fileID, string(kind), string(model.StatusSuccess),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: check processed %s/%s", fileID, kind)
	}
	return true, nil
}

// ListLedger returns every ledger entry, newest first.
func (s *Store) ListLedger(ctx context.Context) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_identifier, processed_timestamp, records_inserted, data_type, status
		 FROM processing_log
		 ORDER BY processed_timestamp DESC, file_identifier`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list ledger")
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		var kind, status string
		if err := rows.Scan(&e.FileIdentifier, &e.ProcessedAt, &e.RecordsInserted, &kind, &status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ledger entry")
		}
		e.DataKind = model.DataKind(kind)
		e.Status = model.Status(status)
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list ledger iterate")
}
