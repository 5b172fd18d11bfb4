package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PeriodMode selects which column buckets rows in time.
type PeriodMode string

const (
	PeriodWeek  PeriodMode = "week"
	PeriodMonth PeriodMode = "month"
)

func ParsePeriodMode(s string) (PeriodMode, error) {
	switch PeriodMode(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period mode %q (expected week or month)", s)
	}
}

// Field is the row column holding the period value for the mode.
func (m PeriodMode) Field() string {
	if m == PeriodMonth {
		return FieldMonth
	}
	return FieldWeek
}

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthIndex returns the calendar position of a canonical month name, -1 otherwise.
func MonthIndex(name string) int {
	return slices.Index(months, name)
}

// WeekNumber extracts the integer formed by every digit in label ("WK 01" -> 1).
// Labels without digits have no number.
func WeekNumber(label string) (float64, bool) {
	var digits strings.Builder
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortMonths orders labels by calendar position. Names outside the canonical twelve all
// share index -1, so they sort ahead of real months and keep their relative order.
func SortMonths(labels []string) {
	slices.SortStableFunc(labels, func(a, b string) int {
		return MonthIndex(a) - MonthIndex(b)
	})
}

// SortWeeks orders labels by their embedded week number. Labels without digits go last
// in their original order.
func SortWeeks(labels []string) {
	sortByKey(labels, WeekNumber)
}

// SortNumeric orders labels by their numeric reading. Non-numeric labels go last in their
// original order.
func SortNumeric(labels []string) {
	sortByKey(labels, ParseNumber)
}

func sortByKey(labels []string, key func(string) (float64, bool)) {
	slices.SortStableFunc(labels, func(a, b string) int {
		na, okA := key(a)
		nb, okB := key(b)
		switch {
		case okA && okB:
			return compareFloat(na, nb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
}

// SortPeriods orders period labels for the mode.
func SortPeriods(mode PeriodMode, labels []string) {
	if mode == PeriodMonth {
		SortMonths(labels)
		return
	}
	SortWeeks(labels)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
