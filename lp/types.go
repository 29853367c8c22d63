// Package lp defines a solver-agnostic mixed-integer problem with optional
// quadratic constraints.
//
// A Problem owns named variables, named linear constraints, named quadratic
// constraints and an objective. Names are the identity of every entry:
// adding a constraint whose name is taken fails, ReplaceConstraint swaps the
// stale entry and logs a warning. Problems are safe for concurrent use; all
// collections are guarded by one sync.RWMutex.
//
// Errors:
//
//	ErrEmptyName           - variable or constraint name is empty.
//	ErrDuplicateVariable   - variable name already registered.
//	ErrDuplicateConstraint - constraint name already registered.
//	ErrUnknownVariable     - expression references an unregistered variable.
//	ErrConstraintNotFound  - named constraint does not exist.
//	ErrBadBounds           - lower bound exceeds upper bound or is NaN.
//	ErrNotImplemented      - requested capability is not implemented by a backend.
package lp

import (
	"errors"
	"math"
)

// Sentinel errors for problem construction.
var (
	ErrEmptyName           = errors.New("lp: empty name")
	ErrDuplicateVariable   = errors.New("lp: duplicate variable")
	ErrDuplicateConstraint = errors.New("lp: duplicate constraint")
	ErrUnknownVariable     = errors.New("lp: unknown variable")
	ErrConstraintNotFound  = errors.New("lp: constraint not found")
	ErrBadBounds           = errors.New("lp: lower bound exceeds upper bound")
	ErrNotImplemented      = errors.New("lp: not implemented")
)

// Inf is the bound used for an absent side of a range.
var Inf = math.Inf(1)

// VarKind distinguishes continuous from binary variables.
type VarKind int

const (
	// Continuous variables take any value within their bounds.
	Continuous VarKind = iota
	// Binary variables take 0 or 1.
	Binary
)

// String implements fmt.Stringer.
func (k VarKind) String() string {
	if k == Binary {
		return "binary"
	}

	return "continuous"
}

// Variable is a named decision variable.
type Variable struct {
	Name         string
	Lower, Upper float64
	Kind         VarKind
}

// Term is coefficient·variable.
type Term struct {
	Var  string
	Coef float64
}

// Expr is a linear expression; terms referencing the same variable are
// summed by Compact.
type Expr []Term

// Compact merges repeated variables (first position kept) and drops zero
// coefficients.
func (e Expr) Compact() Expr {
	out := make(Expr, 0, len(e))
	pos := make(map[string]int, len(e))
	for _, t := range e {
		if i, ok := pos[t.Var]; ok {
			out[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}
	kept := out[:0]
	for _, t := range out {
		if t.Coef != 0 {
			kept = append(kept, t)
		}
	}

	return kept
}

// Coefficient returns the summed coefficient of name in e.
func (e Expr) Coefficient(name string) float64 {
	var c float64
	for _, t := range e {
		if t.Var == name {
			c += t.Coef
		}
	}

	return c
}

// Eval returns Σ coef·values[var]; missing variables count as 0.
func (e Expr) Eval(values map[string]float64) float64 {
	var acc float64
	for _, t := range e {
		acc += t.Coef * values[t.Var]
	}

	return acc
}

// Constraint is Lower ≤ Expr ≤ Upper. Use ±Inf for an absent side;
// Lower == Upper is an equality.
type Constraint struct {
	Name         string
	Expr         Expr
	Lower, Upper float64
}

// IsEquality reports whether both sides coincide.
func (c Constraint) IsEquality() bool { return c.Lower == c.Upper }

// Satisfied reports whether values satisfy c within tol.
func (c Constraint) Satisfied(values map[string]float64, tol float64) bool {
	a := c.Expr.Eval(values)

	return a >= c.Lower-tol && a <= c.Upper+tol
}

// QuadTerm is coef·a·b.
type QuadTerm struct {
	A, B string
	Coef float64
}

// QuadConstraint is Σ quad + Σ linear ≤ Upper.
type QuadConstraint struct {
	Name   string
	Quad   []QuadTerm
	Linear Expr
	Upper  float64
}

// Eval returns the left-hand side at values.
func (q QuadConstraint) Eval(values map[string]float64) float64 {
	acc := q.Linear.Eval(values)
	for _, t := range q.Quad {
		acc += t.Coef * values[t.A] * values[t.B]
	}

	return acc
}

// Sense is the optimization direction.
type Sense int

const (
	// Maximize the objective (flux-balance default).
	Maximize Sense = iota
	// Minimize the objective.
	Minimize
)

// Objective is a linear objective with a direction.
type Objective struct {
	Expr  Expr
	Sense Sense
}
