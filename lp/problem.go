// SPDX-License-Identifier: MIT
// File: problem.go
// Role: Problem container; variable, constraint and objective lifecycle.
//
// Determinism:
//   - Variables(), Constraints() and Quadratics() follow insertion order.
//   - ReplaceConstraint removes the stale entry and appends the new one.
//
// Concurrency:
//   - Every method takes p.mu.
package lp

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
)

// Option configures a Problem.
type Option func(p *Problem)

// WithLogger sets the logger used for replacement warnings.
func WithLogger(l *slog.Logger) Option {
	return func(p *Problem) {
		if l != nil {
			p.logger = l
		}
	}
}

// Problem is a named mixed-integer program.
type Problem struct {
	mu     sync.RWMutex
	logger *slog.Logger

	vars     map[string]*Variable
	varOrder []string

	cons     map[string]*Constraint
	conOrder []string

	quads     map[string]*QuadConstraint
	quadOrder []string

	objective Objective

	version uint64
}

// NewProblem returns an empty problem.
func NewProblem(opts ...Option) *Problem {
	p := &Problem{
		logger: slog.Default(),
		vars:   make(map[string]*Variable),
		cons:   make(map[string]*Constraint),
		quads:  make(map[string]*QuadConstraint),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Logger returns the logger attached to p.
func (p *Problem) Logger() *slog.Logger { return p.logger }

// Version returns a counter that moves on every successful mutation.
func (p *Problem) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.version
}

// AddVariable registers v. Binary variables are clamped to [0,1].
// Errors: ErrEmptyName, ErrDuplicateVariable, ErrBadBounds.
func (p *Problem) AddVariable(v Variable) error {
	if v.Name == "" {
		return ErrEmptyName
	}
	if v.Kind == Binary {
		v.Lower, v.Upper = math.Max(v.Lower, 0), math.Min(v.Upper, 1)
	}
	if badBounds(v.Lower, v.Upper) {
		return fmt.Errorf("AddVariable(%q): [%g, %g]: %w", v.Name, v.Lower, v.Upper, ErrBadBounds)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.vars[v.Name]; ok {
		return fmt.Errorf("AddVariable(%q): %w", v.Name, ErrDuplicateVariable)
	}
	cp := v
	p.vars[v.Name] = &cp
	p.varOrder = append(p.varOrder, v.Name)
	p.version++

	return nil
}

// SetBounds updates the bounds of an existing variable.
func (p *Problem) SetBounds(name string, lower, upper float64) error {
	if badBounds(lower, upper) {
		return fmt.Errorf("SetBounds(%q): [%g, %g]: %w", name, lower, upper, ErrBadBounds)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.vars[name]
	if !ok {
		return fmt.Errorf("SetBounds(%q): %w", name, ErrUnknownVariable)
	}
	v.Lower, v.Upper = lower, upper
	p.version++

	return nil
}

// Variable returns a copy of the named variable.
func (p *Problem) Variable(name string) (Variable, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.vars[name]
	if !ok {
		return Variable{}, false
	}

	return *v, true
}

// Variables returns copies of all variables in insertion order.
func (p *Problem) Variables() []Variable {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Variable, len(p.varOrder))
	for i, name := range p.varOrder {
		out[i] = *p.vars[name]
	}

	return out
}

// NumVariables returns the variable count.
func (p *Problem) NumVariables() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.varOrder)
}

// AddConstraint registers c. Its expression is compacted and every
// referenced variable must exist.
// Errors: ErrEmptyName, ErrDuplicateConstraint, ErrUnknownVariable, ErrBadBounds.
func (p *Problem) AddConstraint(c Constraint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkConstraint(&c); err != nil {
		return fmt.Errorf("AddConstraint(%q): %w", c.Name, err)
	}
	if _, ok := p.cons[c.Name]; ok {
		return fmt.Errorf("AddConstraint(%q): %w", c.Name, ErrDuplicateConstraint)
	}
	p.insertConstraint(c)

	return nil
}

// ReplaceConstraint adds c, first removing any constraint with the same
// name. A replacement is logged at warn level. Reports whether an entry was
// replaced.
func (p *Problem) ReplaceConstraint(c Constraint) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkConstraint(&c); err != nil {
		return false, fmt.Errorf("ReplaceConstraint(%q): %w", c.Name, err)
	}
	_, replaced := p.cons[c.Name]
	if replaced {
		p.logger.Warn("constraint already in the problem, replacing previous entry",
			slog.String("constraint", c.Name))
		p.deleteConstraint(c.Name)
	}
	p.insertConstraint(c)

	return replaced, nil
}

// RemoveConstraint deletes a linear or quadratic constraint by name.
func (p *Problem) RemoveConstraint(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.cons[name]; ok {
		p.deleteConstraint(name)
		p.version++
		return nil
	}
	if _, ok := p.quads[name]; ok {
		delete(p.quads, name)
		p.quadOrder = removeName(p.quadOrder, name)
		p.version++
		return nil
	}

	return fmt.Errorf("RemoveConstraint(%q): %w", name, ErrConstraintNotFound)
}

// HasConstraint reports whether a linear or quadratic constraint is named name.
func (p *Problem) HasConstraint(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, lin := p.cons[name]
	_, quad := p.quads[name]

	return lin || quad
}

// Constraint returns a copy of the named linear constraint.
func (p *Problem) Constraint(name string) (Constraint, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.cons[name]
	if !ok {
		return Constraint{}, false
	}

	return copyConstraint(c), true
}

// Constraints returns copies of all linear constraints in insertion order.
func (p *Problem) Constraints() []Constraint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Constraint, len(p.conOrder))
	for i, name := range p.conOrder {
		out[i] = copyConstraint(p.cons[name])
	}

	return out
}

// NumConstraints returns the linear constraint count.
func (p *Problem) NumConstraints() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.conOrder)
}

// AddQuadratic registers (or replaces, with a warning) a quadratic constraint.
func (p *Problem) AddQuadratic(q QuadConstraint) error {
	if q.Name == "" {
		return ErrEmptyName
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range q.Quad {
		if err := p.known(t.A, t.B); err != nil {
			return fmt.Errorf("AddQuadratic(%q): %w", q.Name, err)
		}
	}
	q.Linear = q.Linear.Compact()
	for _, t := range q.Linear {
		if err := p.known(t.Var); err != nil {
			return fmt.Errorf("AddQuadratic(%q): %w", q.Name, err)
		}
	}
	if _, ok := p.quads[q.Name]; ok {
		p.logger.Warn("constraint already in the problem, replacing previous entry",
			slog.String("constraint", q.Name))
		p.quadOrder = removeName(p.quadOrder, q.Name)
	}
	cp := q
	cp.Quad = append([]QuadTerm(nil), q.Quad...)
	p.quads[q.Name] = &cp
	p.quadOrder = append(p.quadOrder, q.Name)
	p.version++

	return nil
}

// Quadratics returns copies of all quadratic constraints in insertion order.
func (p *Problem) Quadratics() []QuadConstraint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]QuadConstraint, len(p.quadOrder))
	for i, name := range p.quadOrder {
		q := *p.quads[name]
		q.Quad = append([]QuadTerm(nil), q.Quad...)
		q.Linear = append(Expr(nil), q.Linear...)
		out[i] = q
	}

	return out
}

// SetObjective replaces the objective.
func (p *Problem) SetObjective(o Objective) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	o.Expr = o.Expr.Compact()
	for _, t := range o.Expr {
		if err := p.known(t.Var); err != nil {
			return fmt.Errorf("SetObjective: %w", err)
		}
	}
	p.objective = o
	p.version++

	return nil
}

// Objective returns a copy of the objective.
func (p *Problem) Objective() Objective {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Objective{Expr: append(Expr(nil), p.objective.Expr...), Sense: p.objective.Sense}
}

// Feasible reports whether values satisfy every bound and constraint
// within tol, returning the names of the violated entries.
func (p *Problem) Feasible(values map[string]float64, tol float64) (bool, []string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var bad []string
	for _, name := range p.varOrder {
		v := p.vars[name]
		x := values[name]
		if x < v.Lower-tol || x > v.Upper+tol {
			bad = append(bad, name)
		}
	}
	for _, name := range p.conOrder {
		if !p.cons[name].Satisfied(values, tol) {
			bad = append(bad, name)
		}
	}
	for _, name := range p.quadOrder {
		q := p.quads[name]
		if q.Eval(values) > q.Upper+tol {
			bad = append(bad, name)
		}
	}

	return len(bad) == 0, bad
}

// Clone returns a deep copy sharing only the logger.
func (p *Problem) Clone() *Problem {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c := &Problem{
		logger:    p.logger,
		vars:      make(map[string]*Variable, len(p.vars)),
		varOrder:  append([]string(nil), p.varOrder...),
		cons:      make(map[string]*Constraint, len(p.cons)),
		conOrder:  append([]string(nil), p.conOrder...),
		quads:     make(map[string]*QuadConstraint, len(p.quads)),
		quadOrder: append([]string(nil), p.quadOrder...),
		objective: Objective{Expr: append(Expr(nil), p.objective.Expr...), Sense: p.objective.Sense},
		version:   p.version,
	}
	for name, v := range p.vars {
		cp := *v
		c.vars[name] = &cp
	}
	for name, con := range p.cons {
		cp := copyConstraint(con)
		c.cons[name] = &cp
	}
	for name, q := range p.quads {
		cp := *q
		cp.Quad = append([]QuadTerm(nil), q.Quad...)
		cp.Linear = append(Expr(nil), q.Linear...)
		c.quads[name] = &cp
	}

	return c
}

// checkConstraint validates c under the held lock and compacts its expression.
func (p *Problem) checkConstraint(c *Constraint) error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if badBounds(c.Lower, c.Upper) {
		return ErrBadBounds
	}
	c.Expr = c.Expr.Compact()
	for _, t := range c.Expr {
		if err := p.known(t.Var); err != nil {
			return err
		}
	}

	return nil
}

func (p *Problem) insertConstraint(c Constraint) {
	cp := copyConstraint(&c)
	p.cons[c.Name] = &cp
	p.conOrder = append(p.conOrder, c.Name)
	p.version++
}

func (p *Problem) deleteConstraint(name string) {
	delete(p.cons, name)
	p.conOrder = removeName(p.conOrder, name)
}

func (p *Problem) known(names ...string) error {
	for _, n := range names {
		if _, ok := p.vars[n]; !ok {
			return fmt.Errorf("%q: %w", n, ErrUnknownVariable)
		}
	}

	return nil
}

func badBounds(lo, hi float64) bool {
	return math.IsNaN(lo) || math.IsNaN(hi) || lo > hi
}

func copyConstraint(c *Constraint) Constraint {
	return Constraint{Name: c.Name, Expr: append(Expr(nil), c.Expr...), Lower: c.Lower, Upper: c.Upper}
}

func removeName(order []string, name string) []string {
	for i, n := range order {
		if n == name {
			return append(order[:i], order[i+1:]...)
		}
	}

	return order
}
