package aggregate

import "github.com/de-tools/metric-atlas/pkg/models/domain"

// Summarize sums metric per period bucket. Rows with a blank period are skipped;
// non-numeric metric cells count as zero. Labels come back in period order.
func Summarize(rows []domain.Row, mode domain.PeriodMode, metric string) domain.Series {
	field := mode.Field()
	buckets := make(map[string]float64)
	var labels []string

	for _, r := range rows {
		period := r.Field(field)
		if period == "" {
			continue
		}
		if _, ok := buckets[period]; !ok {
			labels = append(labels, period)
		}
		buckets[period] += r.Get(metric).Coerce()
	}

	domain.SortPeriods(mode, labels)

	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = buckets[l]
	}
	return domain.Series{Labels: labels, Values: values}
}

// Total is the sum of every value in the series.
func Total(s domain.Series) float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	return sum
}
