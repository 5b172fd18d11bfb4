// Package filter narrows row sets by account, year, period and free-text search.
// Every function is order-preserving and returns a new slice.
package filter

import (
	"slices"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
)

// ByAccounts keeps rows whose Accounts value is one of selected.
func ByAccounts(rows []domain.Row, selected []string) []domain.Row {
	return ByField(rows, domain.FieldAccounts, selected)
}

// ByYears keeps rows whose Year value is one of selected.
func ByYears(rows []domain.Row, selected []string) []domain.Row {
	return ByField(rows, domain.FieldYear, selected)
}

// ByPeriods keeps rows whose Week or Month value (per mode) is one of selected.
func ByPeriods(rows []domain.Row, mode domain.PeriodMode, selected []string) []domain.Row {
	return ByField(rows, mode.Field(), selected)
}

// ByField keeps rows whose trimmed field value is in selected. An empty selection keeps
// every row; rows without the field never match a non-empty selection.
func ByField(rows []domain.Row, field string, selected []string) []domain.Row {
	if len(selected) == 0 {
		return slices.Clone(rows)
	}

	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}

	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		if r.Get(field).IsAbsent() {
			continue
		}
		if _, ok := set[r.Field(field)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps rows where any cell contains query, case-insensitively.
// A blank query keeps every row.
func Search(rows []domain.Row, query string) []domain.Row {
	if strings.TrimSpace(query) == "" {
		return slices.Clone(rows)
	}
	needle := strings.ToLower(query)

	out := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		for _, k := range r.Keys() {
			if strings.Contains(strings.ToLower(r.Get(k).String()), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
