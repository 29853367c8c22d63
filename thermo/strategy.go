package thermo

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/tfa/lp"
)

// Strategy selects the problem a backend solves. It is chosen at
// configuration time by name, never by inspecting the solver.
type Strategy interface {
	Name() string
	Problem(m *Model, b lp.Backend) (*lp.Problem, error)
}

// Strategy names.
const (
	StrategyBox  = "box"
	StrategyMIQC = "miqc"
)

// BoxStrategy solves the linear problem: box bounds on every formation
// error plus covariance-pair bounds. Any backend qualifies.
type BoxStrategy struct{}

// Name implements Strategy.
func (BoxStrategy) Name() string { return StrategyBox }

// Problem returns a clone of the base problem.
func (BoxStrategy) Problem(m *Model, _ lp.Backend) (*lp.Problem, error) {
	p, err := m.Problem()
	if err != nil {
		return nil, err
	}

	return p.Clone(), nil
}

// EllipsoidStrategy adds the tight-cluster ellipsoid. The backend must
// accept quadratic constraints.
type EllipsoidStrategy struct{}

// Name implements Strategy.
func (EllipsoidStrategy) Name() string { return StrategyMIQC }

// Problem returns a copy of the memoized quadratic problem.
func (EllipsoidStrategy) Problem(m *Model, b lp.Backend) (*lp.Problem, error) {
	return m.QuadraticProblem(b)
}

// StrategyByName resolves "box" or "miqc" (case-insensitive).
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case StrategyBox:
		return BoxStrategy{}, nil
	case StrategyMIQC:
		return EllipsoidStrategy{}, nil
	default:
		return nil, fmt.Errorf("StrategyByName(%q): %w", name, ErrUnknownStrategy)
	}
}
