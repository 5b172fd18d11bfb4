// Package dashboard holds the state of one analysis session and derives every view of it
// from scratch on request.
package dashboard

import (
	"slices"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
	"github.com/de-tools/metric-atlas/pkg/services/aggregate"
	"github.com/de-tools/metric-atlas/pkg/services/compare"
	"github.com/de-tools/metric-atlas/pkg/services/filter"
	"github.com/de-tools/metric-atlas/pkg/services/formula"
	"github.com/de-tools/metric-atlas/pkg/services/metadata"
)

// FallbackMetric is charted when the dataset has no numeric column.
const FallbackMetric = "Spend"

// Selection holds the filter choices. Empty slices select everything.
type Selection struct {
	Accounts []string `json:"accounts"`
	Years    []string `json:"years"`
	Periods  []string `json:"periods"`
}

// Input is everything a View is derived from.
type Input struct {
	Dataset     domain.Dataset
	Mode        domain.PeriodMode
	Selection   Selection
	CalcColumns []domain.CalcColumn
	Metric      string
	// Watched defaults to every numeric column when nil.
	Watched []string
	Search  string
}

// View is the derived state shown to the user.
type View struct {
	DatasetID   string
	DatasetName string
	TotalRows   int
	Mode        domain.PeriodMode
	Selection   Selection
	CalcColumns []domain.CalcColumn

	// Option domains, taken from the rows after calc columns and before filtering.
	Accounts       []string
	Years          []string
	Periods        []string
	NumericColumns []string

	Metric   string
	Watched  []string
	Series   domain.Series
	Total    float64
	Verdicts domain.VerdictMap

	Columns []string
	// Filtered holds the fully filtered rows; Rows additionally applies the search query.
	Filtered []domain.Row
	Rows     []domain.Row
	Search   string
}

// Compute runs the pipeline: calc columns, metadata, account/year/period filters, then
// chart series and verdicts from the filtered rows, and finally the table search.
func Compute(in Input, obs formula.Observer) View {
	mode := in.Mode
	if mode == "" {
		mode = domain.PeriodWeek
	}

	augmented := formula.ApplyWithObserver(in.Dataset.Rows, in.CalcColumns, obs)

	numeric := metadata.NumericColumns(augmented)
	metric := in.Metric
	if metric == "" {
		metric = DefaultMetric(numeric)
	}
	watched := in.Watched
	if watched == nil {
		watched = numeric
	}

	rows := filter.ByAccounts(augmented, in.Selection.Accounts)
	rows = filter.ByYears(rows, in.Selection.Years)
	rows = filter.ByPeriods(rows, mode, in.Selection.Periods)

	series := aggregate.Summarize(rows, mode, metric)

	return View{
		DatasetID:      in.Dataset.ID,
		DatasetName:    in.Dataset.Name,
		TotalRows:      len(in.Dataset.Rows),
		Mode:           mode,
		Selection:      in.Selection,
		CalcColumns:    slices.Clone(in.CalcColumns),
		Accounts:       metadata.Accounts(augmented),
		Years:          metadata.Years(augmented),
		Periods:        metadata.Periods(augmented, mode),
		NumericColumns: numeric,
		Metric:         metric,
		Watched:        slices.Clone(watched),
		Series:         series,
		Total:          aggregate.Total(series),
		Verdicts:       compare.Compare(rows, mode, in.Selection.Periods, watched),
		Columns:        metadata.MergeColumns(in.Dataset.Columns, augmented),
		Filtered:       rows,
		Rows:           filter.Search(rows, in.Search),
		Search:         in.Search,
	}
}

// DefaultMetric is the first numeric column, or FallbackMetric when there is none.
func DefaultMetric(numeric []string) string {
	if len(numeric) > 0 {
		return numeric[0]
	}
	return FallbackMetric
}
