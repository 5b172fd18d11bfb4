package api

import (
	"encoding/json"
	"math"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
)

type Dataset struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

type Selection struct {
	Accounts []string `json:"accounts"`
	Years    []string `json:"years"`
	Periods  []string `json:"periods"`
}

// SelectionRequest replaces the filter selection. Metric, Watched and Search are only
// changed when present.
type SelectionRequest struct {
	Accounts []string  `json:"accounts" validate:"dive,max=256"`
	Years    []string  `json:"years" validate:"dive,max=16"`
	Periods  []string  `json:"periods" validate:"dive,max=64"`
	Metric   *string   `json:"metric,omitempty" validate:"omitempty,max=256"`
	Watched  *[]string `json:"watched,omitempty"`
	Search   *string   `json:"search,omitempty" validate:"omitempty,max=256"`
}

type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=week month"`
}

type CalcColumn struct {
	Name    string `json:"name" validate:"required,max=128"`
	Formula string `json:"formula" validate:"required,max=1024"`
}

type Options struct {
	Accounts       []string `json:"accounts"`
	Years          []string `json:"years"`
	Periods        []string `json:"periods"`
	NumericColumns []string `json:"numeric_columns"`
}

type Chart struct {
	Metric string    `json:"metric"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
}

// MarshalJSON writes non-finite values and totals as null, since a sum of large finite
// cells can overflow.
func (c Chart) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(c.Values))
	for i := range c.Values {
		values[i] = finite(c.Values[i])
	}
	return json.Marshal(struct {
		Metric string     `json:"metric"`
		Labels []string   `json:"labels"`
		Values []*float64 `json:"values"`
		Total  *float64   `json:"total"`
	}{c.Metric, c.Labels, values, finite(c.Total)})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

type Table struct {
	Columns  []string     `json:"columns"`
	Rows     []domain.Row `json:"rows"`
	Matched  int          `json:"matched"`
	Filtered int          `json:"filtered"`
	Search   string       `json:"search"`
}

type View struct {
	Dataset     Dataset           `json:"dataset"`
	Mode        string            `json:"mode"`
	Selection   Selection         `json:"selection"`
	CalcColumns []CalcColumn      `json:"calc_columns"`
	Options     Options           `json:"options"`
	Chart       Chart             `json:"chart"`
	Watched     []string          `json:"watched"`
	Verdicts    domain.VerdictMap `json:"verdicts"`
	Table       Table             `json:"table"`
}

type Error struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
