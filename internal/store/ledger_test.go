package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teatrade/auction-cli/internal/model"
)

func TestWasProcessedUnknownFile(t *testing.T) {
	st := newTestStore(t)

	done, err := st.WasProcessed(context.Background(), "never-seen.pdf", model.KindCommentary)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecordOutcomeSuccess(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.RecordOutcome(ctx, "Market Report W15.pdf", model.KindCommentary, 1, model.StatusSuccess)
	require.NoError(t, err)

	done, err := st.WasProcessed(ctx, "Market Report W15.pdf", model.KindCommentary)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRecordOutcomeFailureIsNotProcessed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.RecordOutcome(ctx, "weather note.docx", model.KindCommentary, 0, model.StatusFailedExtraction)
	require.NoError(t, err)

	// Only SUCCESS counts; failed files stay eligible for retry.
	done, err := st.WasProcessed(ctx, "weather note.docx", model.KindCommentary)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecordOutcomeReplacesPriorAttempt(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	fileID := "CompleteOfferLots_2024-15_080424.xlsx::ATBL"

	require.NoError(t, st.RecordOutcome(ctx, fileID, model.KindOffer, 0, model.StatusFailedProcessing))
	require.NoError(t, st.RecordOutcome(ctx, fileID, model.KindOffer, 240, model.StatusSuccess))

	done, err := st.WasProcessed(ctx, fileID, model.KindOffer)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, countRows(t, st, "processing_log"))

	// A later failed re-run demotes the entry again.
	require.NoError(t, st.RecordOutcome(ctx, fileID, model.KindOffer, 0, model.StatusFailedProcessing))
	done, err = st.WasProcessed(ctx, fileID, model.KindOffer)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, countRows(t, st, "processing_log"))
}

func TestWasProcessedIsPerKind(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	fileID := "AuctionSummary_2024-15_080424.xlsx::Detail"
	require.NoError(t, st.RecordOutcome(ctx, fileID, model.KindOffer, 118, model.StatusSuccess))

	done, err := st.WasProcessed(ctx, fileID, model.KindOffer)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = st.WasProcessed(ctx, fileID, model.KindSummary)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestListLedger(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.RecordOutcome(ctx, "a.xlsx::Detail", model.KindOffer, 10, model.StatusSuccess))
	require.NoError(t, st.RecordOutcome(ctx, "b.xlsx::Main Summary", model.KindSummary, 4, model.StatusSuccess))
	require.NoError(t, st.RecordOutcome(ctx, "c.pdf", model.KindCommentary, 0, model.StatusFailedExtraction))

	entries, err := st.ListLedger(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := make(map[string]model.LogEntry, len(entries))
	for _, e := range entries {
		assert.NotEmpty(t, e.ProcessedAt)
		byID[e.FileIdentifier] = e
	}

	offer, ok := byID["a.xlsx::Detail"]
	require.True(t, ok)
	assert.Equal(t, model.KindOffer, offer.DataKind)
	assert.Equal(t, int64(10), offer.RecordsInserted)
	assert.Equal(t, model.StatusSuccess, offer.Status)

	failed, ok := byID["c.pdf"]
	require.True(t, ok)
	assert.Equal(t, model.StatusFailedExtraction, failed.Status)
	assert.Equal(t, int64(0), failed.RecordsInserted)
}
