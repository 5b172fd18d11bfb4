package domain

import "fmt"

// FormulaProfile is a named, ordered set of calc columns.
type FormulaProfile struct {
	Name    string
	Columns []CalcColumn
}

func (p FormulaProfile) String() string {
	return fmt.Sprintf("%s:%d", p.Name, len(p.Columns))
}
