package model

// DataKind identifies which table a processing pass feeds. The values are
// stored in the processing ledger and must stay stable across releases.
type DataKind string

const (
	KindOffer      DataKind = "OFFER"
	KindSale       DataKind = "SALE"
	KindSummary    DataKind = "SUMMARY"
	KindCommentary DataKind = "COMMENTARY"
)

// Status is the outcome of one processing attempt for a (file, kind) pair.
type Status string

const (
	// StatusSuccess means rows were merged into the store.
	StatusSuccess Status = "SUCCESS"
	// StatusSuccessNoData means the pass ran cleanly but every row was
	// filtered out (empty sheet, all rows missing required fields).
	StatusSuccessNoData Status = "SUCCESS_NO_DATA"
	// StatusFailedMissingCols means a required source column (lot number or
	// broker, or the grade column for summaries) was absent entirely.
	StatusFailedMissingCols Status = "FAILED_MISSING_COLS"
	// StatusFailedProcessing means normalization or the merge itself errored.
	StatusFailedProcessing Status = "FAILED_PROCESSING"
	// StatusFailedExtraction means an unstructured document yielded no text.
	StatusFailedExtraction Status = "FAILED_EXTRACTION"
	// StatusFailedDynamicHeader means no header row could be located in a
	// sheet that requires dynamic header detection.
	StatusFailedDynamicHeader Status = "FAILED_DYNAMIC_HEADER"
)

// LogEntry is one row of the processing ledger.
type LogEntry struct {
	FileIdentifier  string
	ProcessedAt     string
	RecordsInserted int64
	DataKind        DataKind
	Status          Status
}
