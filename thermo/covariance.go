// SPDX-License-Identifier: MIT
// Package thermo: covariance engine.
//
// Covariance is computed over distinct chemical identifiers, so metabolites
// of one chemical in several compartments share a single row. Species without
// a usable estimate (NaN mean, NaN variance or a row with no non-zero entry)
// are removed before factorization and re-inserted as zero rows of the
// Cholesky factor. A NaN cross entry means "no correlation data" and is read
// as 0.
package thermo

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/tfa/matrix"
)

// Covariance is the formation-energy uncertainty model over distinct
// identifiers in first-seen order.
type Covariance struct {
	// IDs are the distinct identifiers; IDs[i] owns row i.
	IDs []string

	// Index maps an identifier to its row.
	Index map[string]int

	// Mean holds formation-energy means (NaN when unestimable).
	Mean []float64

	// StdDev holds sqrt(diag(Cov)) (NaN when unestimable).
	StdDev []float64

	// Cov is the symmetrized estimate (NaN entries preserved).
	Cov *matrix.Dense

	// Chol is the lower Cholesky factor of the usable block, zero-padded to
	// the full dimension.
	Chol *matrix.Dense

	// Repair describes the nearest positive definite correction, if any.
	Repair matrix.PDReport

	// Repaired is true when Chol factors a corrected matrix.
	Repaired bool
}

// Len returns the number of distinct identifiers.
func (c *Covariance) Len() int { return len(c.IDs) }

// Var returns cov(a,b) by identifier; ok is false for unknown identifiers.
func (c *Covariance) Var(a, b string) (float64, bool) {
	i, ok := c.Index[a]
	if !ok {
		return 0, false
	}
	j, ok := c.Index[b]
	if !ok {
		return 0, false
	}
	v, err := c.Cov.At(i, j)

	return v, err == nil
}

// Usable reports whether row i has a finite mean, a finite variance and at
// least one finite non-zero entry. NaN cross entries do not disqualify a row.
func (c *Covariance) Usable(i int) bool {
	if math.IsNaN(c.Mean[i]) {
		return false
	}
	row := c.Cov.Row(i)
	if d := row[i]; math.IsNaN(d) || math.IsInf(d, 0) {
		return false
	}
	for _, v := range row {
		if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}

	return false
}

// Block returns the covariance restricted to the rows idx, with non-finite
// cross entries replaced by 0.
func (c *Covariance) Block(idx []int) (*matrix.Dense, error) {
	b, err := c.Cov.Induced(idx, idx)
	if err != nil {
		return nil, err
	}
	err = b.Apply(func(i, j int, v float64) float64 {
		if i != j && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return 0
		}
		return v
	})

	return b, err
}

// ComputeCovariance deduplicates ids (first-seen order), asks est for the
// estimate and factorizes its usable block.
//
// Implementation:
//   - Stage 1: dedup and estimate; validate shapes.
//   - Stage 2: symmetrize; pick usable rows.
//   - Stage 3: CholeskyPD of the usable block; a NearestPD repair is
//     logged at warn level.
//   - Stage 4: scatter the factor back into an n×n zero matrix.
//
// Errors: ErrNilEstimator, ErrEstimateShape, estimator errors,
// matrix.ErrNumericalInstability when the repair does not converge.
func ComputeCovariance(ids []string, est Estimator, opts ...Option) (*Covariance, error) {
	if est == nil {
		return nil, ErrNilEstimator
	}
	o := NewOptions(opts...)

	distinct := make([]string, 0, len(ids))
	index := make(map[string]int, len(ids))
	for _, id := range ids {
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(distinct)
		distinct = append(distinct, id)
	}
	n := len(distinct)

	mean, raw, err := est.Estimate(distinct)
	if err != nil {
		return nil, fmt.Errorf("ComputeCovariance: %w", err)
	}
	if len(mean) != n || raw == nil || raw.Rows() != n || raw.Cols() != n {
		return nil, fmt.Errorf("ComputeCovariance: %d identifiers: %w", n, ErrEstimateShape)
	}
	cov, err := matrix.Symmetrize(raw)
	if err != nil {
		return nil, fmt.Errorf("ComputeCovariance: %w", err)
	}
	std := make([]float64, n)
	for i, v := range cov.Diag() {
		std[i] = math.Sqrt(v)
	}

	c := &Covariance{IDs: distinct, Index: index, Mean: mean, StdDev: std, Cov: cov}

	usable := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if c.Usable(i) {
			usable = append(usable, i)
		}
	}
	block, err := c.Block(usable)
	if err != nil {
		return nil, fmt.Errorf("ComputeCovariance: %w", err)
	}

	l, _, rep, err := matrix.CholeskyPD(block, o.matrixOpts...)
	if err != nil {
		return nil, fmt.Errorf("ComputeCovariance: %w", err)
	}
	if rep != (matrix.PDReport{}) {
		o.logger.Warn("covariance matrix not positive definite, using nearest positive definite matrix",
			slog.Int("iterations", rep.Shifts),
			slog.Int("clipped", rep.Clipped),
			slog.Float64("min_eigenvalue", rep.MinEigenvalue))
		c.Repair, c.Repaired = rep, true
	}

	chol, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	var a, b int
	for a = range usable {
		for b = 0; b <= a; b++ {
			v, _ := l.At(a, b)
			if err = chol.Set(usable[a], usable[b], v); err != nil {
				return nil, fmt.Errorf("ComputeCovariance: %w", err)
			}
		}
	}
	c.Chol = chol

	return c, nil
}
