package lp

import (
	"context"
	"strings"
)

// Capability is a bit set of problem classes a backend accepts.
type Capability uint8

const (
	// CapLinear: continuous linear programs.
	CapLinear Capability = 1 << iota
	// CapInteger: binary/integer variables.
	CapInteger
	// CapQuadratic: convex quadratic constraints.
	CapQuadratic
)

// Has reports whether every bit of want is set in c.
func (c Capability) Has(want Capability) bool { return c&want == want }

// String lists the set bits, e.g. "linear|integer".
func (c Capability) String() string {
	var parts []string
	if c.Has(CapLinear) {
		parts = append(parts, "linear")
	}
	if c.Has(CapInteger) {
		parts = append(parts, "integer")
	}
	if c.Has(CapQuadratic) {
		parts = append(parts, "quadratic")
	}
	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// Backend describes a solver without binding to it.
type Backend interface {
	Name() string
	Capabilities() Capability
}

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Solution carries a solver result.
type Solution struct {
	Status    Status
	Objective float64
	Values    map[string]float64
}

// Solver is a Backend that can optimize a Problem.
type Solver interface {
	Backend
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

type descriptor struct {
	name string
	caps Capability
}

func (d descriptor) Name() string             { return d.name }
func (d descriptor) Capabilities() Capability { return d.caps }

// NewBackend returns a plain descriptor.
func NewBackend(name string, caps Capability) Backend {
	return descriptor{name: name, caps: caps}
}

// LinearBackend describes a MILP-only solver such as GLPK.
func LinearBackend(name string) Backend {
	return NewBackend(name, CapLinear|CapInteger)
}

// QuadraticBackend describes a solver that also accepts quadratic
// constraints, such as Gurobi or CPLEX.
func QuadraticBackend(name string) Backend {
	return NewBackend(name, CapLinear|CapInteger|CapQuadratic)
}

// SupportsQuadratic reports whether b accepts quadratic constraints.
func SupportsQuadratic(b Backend) bool {
	return b != nil && b.Capabilities().Has(CapQuadratic)
}
