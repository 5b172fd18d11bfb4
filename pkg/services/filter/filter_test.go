package filter

import (
	"testing"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
)

func row(kv ...string) domain.Row {
	r := domain.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], domain.Text(kv[i+1]))
	}
	return r
}

func fixture() []domain.Row {
	rows := []domain.Row{
		row("Accounts", "Alpha", "Year", "2024", "Week", "WK 01", "Month", "January", "Spend", "10"),
		row("Accounts", " Beta ", "Year", "2025", "Week", "WK 02", "Month", "February", "Spend", "20"),
		row("Accounts", "Alpha", "Week", "WK 02", "Spend", "30"),
		row("Spend", "40"),
	}
	numericYear := domain.NewRow()
	numericYear.Set("Accounts", domain.Text("Gamma"))
	numericYear.Set("Year", domain.Number(2024))
	return append(rows, numericYear)
}

func TestFilters_EmptySelectionIsPassThrough(t *testing.T) {
	rows := fixture()

	assert.Equal(t, rows, ByAccounts(rows, nil))
	assert.Equal(t, rows, ByYears(rows, []string{}))
	assert.Equal(t, rows, ByPeriods(rows, domain.PeriodWeek, nil))
	assert.Equal(t, rows, Search(rows, "  "))
}

func TestByAccounts(t *testing.T) {
	rows := fixture()

	got := ByAccounts(rows, []string{"Alpha", "Beta"})

	assert.Len(t, got, 3)
	assert.Equal(t, "10", got[0].Field("Spend"))
	assert.Equal(t, "20", got[1].Field("Spend"), "account values are trimmed before matching")
	assert.Equal(t, "30", got[2].Field("Spend"))
}

func TestByYears_MatchesNumericAndTextYears(t *testing.T) {
	got := ByYears(fixture(), []string{"2024"})

	assert.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Field("Accounts"))
	assert.Equal(t, "Gamma", got[1].Field("Accounts"))
}

func TestByPeriods_UsesModeField(t *testing.T) {
	rows := fixture()

	weeks := ByPeriods(rows, domain.PeriodWeek, []string{"WK 02"})
	assert.Len(t, weeks, 2)

	months := ByPeriods(rows, domain.PeriodMonth, []string{"WK 02"})
	assert.Empty(t, months)

	months = ByPeriods(rows, domain.PeriodMonth, []string{"January"})
	assert.Len(t, months, 1)
}

func TestByField_MissingFieldNeverMatches(t *testing.T) {
	rows := fixture()
	assert.Empty(t, ByField(rows, "Region", []string{""}))
}

func TestFilters_DoNotMutateInput(t *testing.T) {
	rows := fixture()
	before := len(rows)

	out := ByAccounts(rows, []string{"Alpha"})
	out[0] = row("Accounts", "Changed")

	assert.Len(t, rows, before)
	assert.Equal(t, "Alpha", rows[0].Field("Accounts"))
}

func TestSearch(t *testing.T) {
	rows := fixture()

	assert.Len(t, Search(rows, "alpha"), 2)
	assert.Len(t, Search(rows, "FEB"), 1)
	assert.Len(t, Search(rows, "2024"), 2)
	assert.Empty(t, Search(rows, "zzz"))
}
