// SPDX-License-Identifier: MIT
// Package thermo: matrix exporter.
//
// The export is a solver-independent dense view of the linear part of the
// base problem. Columns:
//
//	flux (fwd, rev per reaction) | indicators | energies | lnc | met
//
// Rows: mass balance, then per non-excluded reaction directionality_f/r,
// ind_f/r, delG_f/r, then every other linear constraint in insertion order.
// Sense is E or L; a lower-bounded side is negated into an L row, and a
// ranged constraint yields one L row per finite side.
package thermo

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/matrix"
)

// Sense is a row sense code.
type Sense byte

const (
	// SenseEqual marks an equality row.
	SenseEqual Sense = 'E'
	// SenseLess marks a ≤ row.
	SenseLess Sense = 'L'
)

// String implements fmt.Stringer.
func (s Sense) String() string { return string(rune(s)) }

// MarshalText encodes the sense as its one-letter code.
func (s Sense) MarshalText() ([]byte, error) { return []byte{byte(s)}, nil }

// Export is the flattened linear problem.
type Export struct {
	LHS   *matrix.Dense `json:"-"`
	RHS   []float64     `json:"rhs"`
	Names []string      `json:"names"`
	Lower []float64     `json:"lower"`
	Upper []float64     `json:"upper"`
	Sense []Sense       `json:"sense"`

	// Rows names each row after its constraint; the two rows of a ranged
	// constraint carry "_lower" and "_upper" suffixes.
	Rows []string `json:"rows"`
}

// Dims returns (rows, cols).
func (e *Export) Dims() (int, int) { return len(e.Rows), len(e.Names) }

// Feasible reports whether values satisfy every exported bound and row
// within tol.
func (e *Export) Feasible(values map[string]float64, tol float64) bool {
	x := make([]float64, len(e.Names))
	for j, name := range e.Names {
		x[j] = values[name]
		if x[j] < e.Lower[j]-tol || x[j] > e.Upper[j]+tol {
			return false
		}
	}
	ax, err := matrix.MatVec(e.LHS, x)
	if err != nil {
		return false
	}
	for i, v := range ax {
		switch e.Sense[i] {
		case SenseEqual:
			if math.Abs(v-e.RHS[i]) > tol {
				return false
			}
		default:
			if v > e.RHS[i]+tol {
				return false
			}
		}
	}

	return true
}

// ExportMIP flattens the live base problem. Sphere variables and the
// quadratic constraint are never part of it.
func (m *Model) ExportMIP() (*Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}

	vars := m.base.Variables()
	names := make([]string, 0, len(vars))
	col := make(map[string]int, len(vars))
	ex := &Export{}
	for _, v := range vars {
		if strings.HasPrefix(v.Name, PrefixSphere) {
			continue
		}
		col[v.Name] = len(names)
		names = append(names, v.Name)
		ex.Lower = append(ex.Lower, v.Lower)
		ex.Upper = append(ex.Upper, v.Upper)
	}
	ex.Names = names

	order := m.rowOrder()
	type row struct {
		name  string
		expr  lp.Expr
		sign  float64
		rhs   float64
		sense Sense
	}
	var rows []row
	for _, c := range order {
		switch {
		case c.IsEquality():
			rows = append(rows, row{c.Name, c.Expr, 1, c.Upper, SenseEqual})
		case !math.IsInf(c.Lower, -1) && !math.IsInf(c.Upper, 1):
			rows = append(rows,
				row{c.Name + "_lower", c.Expr, -1, -c.Lower, SenseLess},
				row{c.Name + "_upper", c.Expr, 1, c.Upper, SenseLess})
		case !math.IsInf(c.Upper, 1):
			rows = append(rows, row{c.Name, c.Expr, 1, c.Upper, SenseLess})
		case !math.IsInf(c.Lower, -1):
			rows = append(rows, row{c.Name, c.Expr, -1, -c.Lower, SenseLess})
		}
	}

	lhs, err := matrix.NewDense(len(rows), len(names))
	if err != nil {
		return nil, fmt.Errorf("ExportMIP: %w", err)
	}
	for i, r := range rows {
		for _, t := range r.expr {
			j, ok := col[t.Var]
			if !ok {
				return nil, fmt.Errorf("ExportMIP: %s references %q: %w", r.name, t.Var, lp.ErrUnknownVariable)
			}
			prev, _ := lhs.At(i, j)
			if err = lhs.Set(i, j, prev+r.sign*t.Coef); err != nil {
				return nil, fmt.Errorf("ExportMIP: %w", err)
			}
		}
		ex.RHS = append(ex.RHS, r.rhs)
		ex.Sense = append(ex.Sense, r.sense)
		ex.Rows = append(ex.Rows, r.name)
	}
	ex.LHS = lhs

	return ex, nil
}

// rowOrder lists the base constraints in export order.
func (m *Model) rowOrder() []lp.Constraint {
	all := m.base.Constraints()
	byName := make(map[string]lp.Constraint, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}
	used := make(map[string]struct{}, len(all))
	out := make([]lp.Constraint, 0, len(all))
	take := func(name string) {
		if c, ok := byName[name]; ok {
			if _, dup := used[name]; !dup {
				used[name] = struct{}{}
				out = append(out, c)
			}
		}
	}

	for _, met := range m.net.Metabolites() {
		take(PrefixMass + met.ID)
	}
	for _, r := range m.net.Reactions() {
		if m.isExcluded(r.ID) {
			continue
		}
		for _, name := range reactionConstraintNames(r.ID) {
			take(name)
		}
	}
	for _, c := range all {
		take(c.Name)
	}

	return out
}
