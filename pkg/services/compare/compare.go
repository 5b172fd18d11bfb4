// Package compare classifies how each watched metric moved between two periods.
package compare

import "github.com/de-tools/metric-atlas/pkg/models/domain"

// Polarity tells whether an increase in a metric is good or bad.
type Polarity int

const (
	HigherIsBetter Polarity = iota
	HigherIsWorse
)

var higherIsWorse = map[string]struct{}{
	"ACOS": {},
	"CPC":  {},
}

// ROAS and CTR are listed explicitly even though they share the default direction.
var lowerIsWorse = map[string]struct{}{
	"ROAS": {},
	"CTR":  {},
}

func PolarityOf(metric string) Polarity {
	if _, ok := higherIsWorse[metric]; ok {
		return HigherIsWorse
	}
	if _, ok := lowerIsWorse[metric]; ok {
		return HigherIsBetter
	}
	return HigherIsBetter
}

// Judge classifies current against baseline for metric.
func Judge(metric string, baseline, current float64) domain.Verdict {
	if current == baseline {
		return domain.VerdictSame
	}
	up := current > baseline
	if PolarityOf(metric) == HigherIsWorse {
		up = !up
	}
	if up {
		return domain.VerdictBetter
	}
	return domain.VerdictWorse
}

// Compare aggregates rows per account and period and records, for every account and
// watched metric, how the second selected period fared against the first. The first
// period is the baseline and always reads "same". Anything other than exactly two
// selected periods yields an empty map.
func Compare(rows []domain.Row, mode domain.PeriodMode, selected []string, watched []string) domain.VerdictMap {
	out := domain.VerdictMap{}
	if len(selected) != 2 {
		return out
	}
	p1, p2 := selected[0], selected[1]
	field := mode.Field()

	sums := make(map[string]map[string]map[string]float64)
	for _, r := range rows {
		account := r.Field(domain.FieldAccounts)
		period := r.Field(field)
		if account == "" || period == "" {
			continue
		}
		if period != p1 && period != p2 {
			continue
		}

		byPeriod, ok := sums[account]
		if !ok {
			byPeriod = make(map[string]map[string]float64)
			sums[account] = byPeriod
		}
		byMetric, ok := byPeriod[period]
		if !ok {
			byMetric = make(map[string]float64)
			byPeriod[period] = byMetric
		}
		for _, m := range watched {
			byMetric[m] += r.Get(m).Coerce()
		}
	}

	for account, byPeriod := range sums {
		verdicts := map[string]map[string]domain.Verdict{
			p1: {},
			p2: {},
		}
		for _, m := range watched {
			// missing periods read as zero via the nil-map lookup
			v1 := byPeriod[p1][m]
			v2 := byPeriod[p2][m]
			verdicts[p2][m] = Judge(m, v1, v2)
			verdicts[p1][m] = domain.VerdictSame
		}
		out[account] = verdicts
	}
	return out
}

// Style classes returned by CellClass.
const (
	ClassWorse  = "cell-worse"
	ClassBetter = "cell-better"
)

// CellClass maps a verdict to the style class used when rendering table cells.
func CellClass(m domain.VerdictMap, account, period, metric string) string {
	v, _ := m.Lookup(account, period, metric)
	switch v {
	case domain.VerdictWorse:
		return ClassWorse
	case domain.VerdictBetter:
		return ClassBetter
	default:
		return ""
	}
}
