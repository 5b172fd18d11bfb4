// Package metadata derives option lists (accounts, years, periods, metrics, columns)
// from a row set. Everything is recomputed from scratch on every call.
package metadata

import (
	"sort"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
)

// Accounts returns distinct non-blank account names in lexicographic order.
func Accounts(rows []domain.Row) []string {
	out := distinct(rows, domain.FieldAccounts)
	sort.Strings(out)
	return out
}

// Years returns distinct non-blank years in numeric order.
func Years(rows []domain.Row) []string {
	out := distinct(rows, domain.FieldYear)
	domain.SortNumeric(out)
	return out
}

// Months returns distinct month names in calendar order.
func Months(rows []domain.Row) []string {
	out := distinct(rows, domain.FieldMonth)
	domain.SortMonths(out)
	return out
}

// Weeks returns distinct week labels ordered by their embedded number.
func Weeks(rows []domain.Row) []string {
	out := distinct(rows, domain.FieldWeek)
	domain.SortWeeks(out)
	return out
}

// Periods returns Weeks or Months depending on mode.
func Periods(rows []domain.Row, mode domain.PeriodMode) []string {
	if mode == domain.PeriodMonth {
		return Months(rows)
	}
	return Weeks(rows)
}

// NumericColumns returns, in discovery order, every column holding at least one value
// that reads as a number. Week and Month are never metrics.
func NumericColumns(rows []domain.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		for _, k := range r.Keys() {
			if k == domain.FieldWeek || k == domain.FieldMonth {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			if _, ok := r.Get(k).Float(); ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	return out
}

// Columns returns the union of row keys in first-seen order.
func Columns(rows []domain.Row) []string {
	return MergeColumns(nil, rows)
}

// MergeColumns appends to base every key found in rows that base does not already name.
func MergeColumns(base []string, rows []domain.Row) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base))
	for _, c := range base {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, r := range rows {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func distinct(rows []domain.Row, field string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		v := r.Field(field)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
