package thermo

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/matrix"
)

// Quadratic constraint and relation names of the ellipsoid.
const (
	EllipseConstraint = "ellipse"
	PrefixRelation    = "relation_"
)

// Ellipsoid is the joint confidence region of the tight cluster:
//
//	met = sqrt(q)·L·u,  Σ u² ≤ 1,  u ∈ [−1,1]^m
//
// with L the Cholesky factor of the members' covariance and q the
// chi-square quantile with m degrees of freedom.
type Ellipsoid struct {
	// Members are tight identifiers with σ ≤ QuadraticSigma, index order.
	Members []string

	// Cov is the members' covariance block (nearest-PD repaired when
	// needed) and Chol its factor; Bounds derive from the same Cov.
	Cov  *matrix.Dense
	Chol *matrix.Dense

	// Quantile is q.
	Quantile float64

	// Bounds[i] = sqrt(q·Σ_k λ_k·V_ik²), the per-axis extent of member i.
	Bounds []float64
}

// ellipsoidMembers selects tight identifiers with σ ≤ QuadraticSigma.
func (m *Model) ellipsoidMembers() []string {
	var out []string
	for _, id := range m.clusters.TightIDs() {
		if m.cov.StdDev[m.cov.Index[id]] <= m.opts.quadraticSigma {
			out = append(out, id)
		}
	}

	return out
}

// computeEllipsoid derives the ellipsoid geometry for the tight cluster.
// A cluster without members yields an empty Ellipsoid.
func (m *Model) computeEllipsoid() (*Ellipsoid, error) {
	members := m.ellipsoidMembers()
	e := &Ellipsoid{Members: members}
	if len(members) == 0 {
		return e, nil
	}

	idx := make([]int, len(members))
	for i, id := range members {
		idx[i] = m.cov.Index[id]
	}
	sub, err := m.cov.Block(idx)
	if err != nil {
		return nil, fmt.Errorf("Ellipsoid: %w", err)
	}
	l, sub, rep, err := matrix.CholeskyPD(sub, m.opts.matrixOpts...)
	if err != nil {
		return nil, fmt.Errorf("Ellipsoid: %w", err)
	}
	if rep != (matrix.PDReport{}) {
		m.logger.Warn("cluster covariance not positive definite, using nearest positive definite matrix",
			slog.Int("iterations", rep.Shifts),
			slog.Float64("min_eigenvalue", rep.MinEigenvalue))
	}

	// extents and factor describe the same matrix
	vals, vecs, err := matrix.EigenSym(sub, m.opts.matrixOpts...)
	if err != nil {
		return nil, fmt.Errorf("Ellipsoid: %w", err)
	}
	q := distuv.ChiSquared{K: float64(len(members))}.Quantile(m.opts.confidence)

	bounds := make([]float64, len(members))
	var i, k int
	var acc, v float64
	for i = range members {
		acc = 0
		for k = range vals {
			v, _ = vecs.At(i, k)
			acc += math.Max(vals[k], 0) * v * v
		}
		bounds[i] = math.Sqrt(q * acc)
	}

	e.Cov, e.Chol, e.Quantile, e.Bounds = sub, l, q, bounds

	return e, nil
}

// applyEllipsoid adds sphere variables, the quadratic constraint and the
// sphere-to-error relations to p and re-bounds the members' met_ variables.
func applyEllipsoid(p *lp.Problem, e *Ellipsoid) error {
	n := len(e.Members)
	if n == 0 {
		return nil
	}
	sphere := make([]string, n)
	quad := make([]lp.QuadTerm, n)
	for i, id := range e.Members {
		sphere[i] = SphereVar(id)
		if err := p.AddVariable(lp.Variable{Name: sphere[i], Lower: -1, Upper: 1}); err != nil {
			return err
		}
		if err := p.SetBounds(FormationVar(id), -e.Bounds[i], e.Bounds[i]); err != nil {
			return err
		}
		quad[i] = lp.QuadTerm{A: sphere[i], B: sphere[i], Coef: 1}
	}
	if err := p.AddQuadratic(lp.QuadConstraint{Name: EllipseConstraint, Quad: quad, Upper: 1}); err != nil {
		return err
	}

	sq := math.Sqrt(e.Quantile)
	for i, id := range e.Members {
		expr := lp.Expr{{Var: FormationVar(id), Coef: 1}}
		for k := 0; k <= i; k++ {
			lik, _ := e.Chol.At(i, k)
			if lik != 0 {
				expr = append(expr, lp.Term{Var: sphere[k], Coef: -sq * lik})
			}
		}
		c := lp.Constraint{Name: PrefixRelation + FormationVar(id), Expr: expr, Lower: 0, Upper: 0}
		if _, err := p.ReplaceConstraint(c); err != nil {
			return err
		}
	}

	return nil
}
