package ingest

import "sort"

// MarkCandidate is one header matched by a mark alias, tagged with the
// alias's position in the coalesce list (lower rank wins).
type MarkCandidate struct {
	Col  int
	Rank int
}

// ColumnMap is the result of resolving a header row against an alias table:
// canonical field → column index, plus every mark candidate in rank order.
type ColumnMap struct {
	Fields         map[string]int
	MarkCandidates []MarkCandidate
}

// Has reports whether a canonical field was resolved.
func (c ColumnMap) Has(field string) bool {
	_, ok := c.Fields[field]
	return ok
}

// ResolveColumns matches a header row against the lot-detail alias table.
// Matching is case-insensitive on trimmed cells. For each field the aliases
// are tried in preference order and the first one present wins, so "Purchased
// Price" beats a plain "Price" even when both columns exist. Mark is special:
// every matching header is kept as a candidate so the per-row coalesce can
// fall through empty cells to lower-ranked columns. Headers that normalize
// identically collapse to the last occurrence.
func ResolveColumns(headers []string, fields []FieldAliases, markAliases []string) ColumnMap {
	byName := make(map[string]int, len(headers))
	for i, h := range headers {
		byName[normalizeHeader(h)] = i
	}

	cm := ColumnMap{Fields: make(map[string]int)}

	for _, fa := range fields {
		for _, alias := range fa.Aliases {
			idx, ok := byName[normalizeHeader(alias)]
			if !ok {
				continue
			}
			cm.Fields[fa.Field] = idx
			break
		}
	}

	for rank, alias := range markAliases {
		if idx, ok := byName[normalizeHeader(alias)]; ok {
			cm.MarkCandidates = append(cm.MarkCandidates, MarkCandidate{Col: idx, Rank: rank})
		}
	}
	sort.Slice(cm.MarkCandidates, func(i, j int) bool {
		return cm.MarkCandidates[i].Rank < cm.MarkCandidates[j].Rank
	})

	return cm
}
