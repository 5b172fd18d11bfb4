package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/metric-atlas/pkg/models/domain"
)

// ErrInvalidCalcColumn is returned by ValidateCalcColumn.
var ErrInvalidCalcColumn = errors.New("invalid calculated column")

// EvaluationError describes one cell that could not be computed. Apply never returns it;
// it is only handed to an Observer.
type EvaluationError struct {
	Column string
	Row    int
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("column %q, row %d: %v", e.Column, e.Row, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Observer is notified about every cell that evaluated to null.
type Observer interface {
	EvaluationFailed(err *EvaluationError)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(err *EvaluationError)

func (f ObserverFunc) EvaluationFailed(err *EvaluationError) { f(err) }

// ValidateCalcColumn checks that a column has a name and a formula that parses.
func ValidateCalcColumn(c domain.CalcColumn) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCalcColumn)
	}
	if strings.TrimSpace(c.Formula) == "" {
		return fmt.Errorf("%w: formula is required", ErrInvalidCalcColumn)
	}
	if _, err := Compile(c.Formula); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCalcColumn, c.Name, err)
	}
	return nil
}

// Apply evaluates every calc column against every row and returns the augmented rows.
// Input rows are never modified.
func Apply(rows []domain.Row, columns []domain.CalcColumn) []domain.Row {
	return ApplyWithObserver(rows, columns, nil)
}

// ApplyWithObserver is Apply with failure notifications. Columns are evaluated in order;
// a column sees the base row plus the columns already written before it. A failing cell
// is stored as Absent and processing continues.
func ApplyWithObserver(rows []domain.Row, columns []domain.CalcColumn, obs Observer) []domain.Row {
	if len(columns) == 0 {
		return rows
	}

	type compiled struct {
		name string
		expr *Expr
		err  error
	}
	exprs := make([]compiled, len(columns))
	for i, c := range columns {
		e, err := Compile(c.Formula)
		exprs[i] = compiled{name: c.Name, expr: e, err: err}
	}

	out := make([]domain.Row, len(rows))
	for i, row := range rows {
		next := row.Clone()
		scope := scopeOf(next)

		for _, c := range exprs {
			err := c.err
			var v float64
			if err == nil {
				v, err = c.expr.Eval(scope)
			}
			if err != nil {
				next.Set(c.name, domain.Absent())
				scope[c.name] = 0
				if obs != nil {
					obs.EvaluationFailed(&EvaluationError{Column: c.name, Row: i, Err: err})
				}
				continue
			}
			next.Set(c.name, domain.Number(v))
			scope[c.name] = v
		}
		out[i] = next
	}
	return out
}

func scopeOf(row domain.Row) Scope {
	keys := row.Keys()
	scope := make(Scope, len(keys))
	for _, k := range keys {
		scope[k] = row.Get(k).Coerce()
	}
	return scope
}
