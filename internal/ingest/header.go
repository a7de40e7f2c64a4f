package ingest

// FindHeaderRow scans the top of a sheet for the row that carries column
// headers. Broker exports bury the header under a variable number of title
// and banner rows, so the position cannot be hardcoded: the first row whose
// cells cover at least min(3, len(keywords)) of the keyword set wins.
// Returns -1 when no row within scanWindow qualifies.
func FindHeaderRow(rows [][]string, keywords []string, scanWindow int) int {
	if scanWindow <= 0 {
		scanWindow = 20
	}

	keys := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		keys[normalizeHeader(k)] = struct{}{}
	}

	threshold := 3
	if len(keywords) < threshold {
		threshold = len(keywords)
	}
	if threshold == 0 {
		return -1
	}

	limit := len(rows)
	if limit > scanWindow {
		limit = scanWindow
	}

	for i := 0; i < limit; i++ {
		seen := make(map[string]struct{})
		for _, cell := range rows[i] {
			norm := normalizeHeader(cell)
			if norm == "" {
				continue
			}
			if _, ok := keys[norm]; ok {
				seen[norm] = struct{}{}
			}
		}
		if len(seen) >= threshold {
			return i
		}
	}
	return -1
}
