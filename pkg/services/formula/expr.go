package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUndefinedVariable is returned when a formula names a column the row does not have.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrNonFinite is returned when a formula evaluates to NaN or an infinity.
	ErrNonFinite = errors.New("non-finite result")
)

// Scope maps column names to the numeric values a formula can see.
type Scope map[string]float64

type node interface {
	eval(scope Scope) (float64, error)
	vars(seen map[string]struct{}, out []string) []string
}

type numberNode float64

func (n numberNode) eval(Scope) (float64, error) { return float64(n), nil }

func (n numberNode) vars(_ map[string]struct{}, out []string) []string { return out }

type varNode string

func (n varNode) eval(scope Scope) (float64, error) {
	v, ok := scope[string(n)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndefinedVariable, string(n))
	}
	return v, nil
}

func (n varNode) vars(seen map[string]struct{}, out []string) []string {
	if _, ok := seen[string(n)]; ok {
		return out
	}
	seen[string(n)] = struct{}{}
	return append(out, string(n))
}

type unaryNode struct {
	op      byte
	operand node
}

func (n unaryNode) eval(scope Scope) (float64, error) {
	v, err := n.operand.eval(scope)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

func (n unaryNode) vars(seen map[string]struct{}, out []string) []string {
	return n.operand.vars(seen, out)
}

type binaryNode struct {
	op          byte
	left, right node
}

func (n binaryNode) eval(scope Scope) (float64, error) {
	l, err := n.left.eval(scope)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(scope)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		return l / r, nil
	case '%':
		return math.Mod(l, r), nil
	case '^':
		return math.Pow(l, r), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", n.op)
	}
}

func (n binaryNode) vars(seen map[string]struct{}, out []string) []string {
	out = n.left.vars(seen, out)
	return n.right.vars(seen, out)
}

// Expr is a compiled formula. It only ever reads from the Scope it is evaluated against.
type Expr struct {
	src  string
	root node
}

// Compile parses src into an evaluable expression.
func Compile(src string) (*Expr, error) {
	root, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Expr{src: strings.TrimSpace(src), root: root}, nil
}

func (e *Expr) String() string { return e.src }

// Vars lists the column names the formula references, in order of first use.
func (e *Expr) Vars() []string {
	return e.root.vars(map[string]struct{}{}, nil)
}

// Eval computes the formula. NaN and infinite results are reported as ErrNonFinite.
func (e *Expr) Eval(scope Scope) (float64, error) {
	v, err := e.root.eval(scope)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNonFinite, e.src)
	}
	return v, nil
}

// Evaluate compiles and evaluates src in one step.
func Evaluate(src string, scope Scope) (float64, error) {
	e, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return e.Eval(scope)
}
