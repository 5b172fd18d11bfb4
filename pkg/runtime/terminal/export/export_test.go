package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Handle(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.Report{
		Title:   "Spend by week",
		Dataset: "ads.csv",
		Mode:    domain.PeriodWeek,
		Metric:  "Spend",
		Total:   30.5,
		Sections: []domain.ReportSection{{
			Title:   "Periods",
			Summary: map[string]interface{}{"periods": 2},
			Details: []domain.ReportDetail{
				{Name: "WK 1", Value: 10.0, Unit: "Spend"},
				{Name: "WK 2", Value: 20.5, Unit: "Spend", Description: strings.Repeat("x", 80)},
			},
		}},
	}

	require.NoError(t, NewReporter(&buf).Handle(report))

	out := buf.String()
	assert.Contains(t, out, "Spend by week")
	assert.Contains(t, out, "Dataset: ads.csv")
	assert.Contains(t, out, "Total: 30.5")
	assert.Contains(t, out, "=== Periods ===")
	assert.Contains(t, out, "periods: 2")
	assert.Contains(t, out, "| WK 1 ")
	assert.Contains(t, out, "20.5 |")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, strings.Repeat("x", 80))
}

func TestReporter_SectionWithoutDetails(t *testing.T) {
	var buf bytes.Buffer
	report := &domain.Report{
		Title:    "Metadata",
		Dataset:  "ads.csv",
		Mode:     domain.PeriodMonth,
		Sections: []domain.ReportSection{{Title: "Accounts", Summary: map[string]interface{}{"count": 0}}},
	}

	require.NoError(t, NewReporter(&buf).Handle(report))

	assert.NotContains(t, buf.String(), "Total:")
	assert.NotContains(t, buf.String(), "+---")
}

func TestTableWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	rows := []domain.Row{
		domain.NewRow(
			domain.Cell{Key: "Accounts", Value: domain.Text("A")},
			domain.Cell{Key: "Month", Value: domain.Text("February")},
			domain.Cell{Key: "ACOS", Value: domain.Number(20)},
		),
		domain.NewRow(
			domain.Cell{Key: "Accounts", Value: domain.Text("B")},
			domain.Cell{Key: "Month", Value: domain.Text("January")},
			domain.Cell{Key: "ACOS", Value: domain.Absent()},
		),
	}
	verdicts := domain.VerdictMap{"A": {"February": {"ACOS": domain.VerdictWorse}}}

	tw := NewTableWriter(&buf)
	tw.MaxRows = 1
	require.NoError(t, tw.Write([]string{"Accounts", "Month", "ACOS"}, rows, domain.PeriodMonth, verdicts))

	out := buf.String()
	assert.Contains(t, out, "Accounts")
	assert.Contains(t, out, "February")
	assert.Contains(t, out, "20")
	assert.NotContains(t, out, "January")
	assert.Contains(t, out, "showing 1 of 2 rows")
}

func TestRenderChart(t *testing.T) {
	series := domain.Series{Labels: []string{"WK 1", "WK 2", "WK 3"}, Values: []float64{10, 0, 25}}

	tests := []struct {
		name   string
		series domain.Series
		opts   ChartOptions
		prefix string
	}{
		{"bar png", series, ChartOptions{Kind: ChartBar, Metric: "Spend"}, "\x89PNG"},
		{"line png", series, ChartOptions{Kind: ChartLine, Metric: "ACOS"}, "\x89PNG"},
		{"line svg", series, ChartOptions{Kind: ChartLine, Metric: "Custom", SVG: true}, "<svg"},
		{"single point", domain.Series{Labels: []string{"January"}, Values: []float64{5}}, ChartOptions{Kind: ChartLine}, "\x89PNG"},
		{"all zero bars", domain.Series{Labels: []string{"a", "b"}, Values: []float64{0, 0}}, ChartOptions{}, "\x89PNG"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderChart(&buf, tc.series, tc.opts))
			assert.True(t, strings.HasPrefix(buf.String(), tc.prefix))
		})
	}
}

func TestRenderChart_Errors(t *testing.T) {
	assert.ErrorIs(t, RenderChart(&bytes.Buffer{}, domain.Series{}, ChartOptions{}), ErrEmptySeries)

	s := domain.Series{Labels: []string{"a"}, Values: []float64{1}}
	assert.Error(t, RenderChart(&bytes.Buffer{}, s, ChartOptions{Kind: "radar"}))
}

func TestChartHelpers(t *testing.T) {
	assert.Equal(t, "#1a56db", MetricColor("Spend"))
	assert.Equal(t, "#0f172a", MetricColor("Margin"))
	assert.True(t, ChartOptionsForFile("out.SVG").SVG)
	assert.False(t, ChartOptionsForFile("out.png").SVG)

	k, err := ParseChartKind("")
	require.NoError(t, err)
	assert.Equal(t, ChartBar, k)
	k, err = ParseChartKind("Line")
	require.NoError(t, err)
	assert.Equal(t, ChartLine, k)
	_, err = ParseChartKind("doughnut")
	assert.Error(t, err)
}
