package domain

// Verdict describes how a metric moved between two periods for one account.
type Verdict string

const (
	VerdictBetter Verdict = "better"
	VerdictWorse  Verdict = "worse"
	VerdictSame   Verdict = "same"
)

// VerdictMap is keyed account -> period -> metric.
type VerdictMap map[string]map[string]map[string]Verdict

func (m VerdictMap) Lookup(account, period, metric string) (Verdict, bool) {
	v, ok := m[account][period][metric]
	return v, ok
}

// Series is a chart-ready aggregate: parallel labels and values.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func (s Series) Len() int { return len(s.Labels) }
