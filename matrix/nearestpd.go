// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// PDReport describes the correction NearestPD applied.
type PDReport struct {
	// MinEigenvalue is the smallest eigenvalue of the symmetrized input.
	MinEigenvalue float64
	// Clipped counts the negative eigenvalues that were clipped to zero.
	Clipped int
	// Shifts counts the diagonal shifts needed after clipping.
	Shifts int
}

// NearestPD returns the nearest (Frobenius norm) symmetric positive definite
// matrix to a symmetric m, following Higham (1988). m must be symmetric
// within the option epsilon; callers holding a noisy estimate symmetrize it
// first.
//
// Implementation:
//   - Stage 1: validate symmetry; B = (A + Aᵀ)/2 removes the residual noise.
//   - Stage 2: B = QΛQᵀ; A₂ = Q·max(Λ,0)·Qᵀ, which equals (B + H)/2 with H the
//     symmetric polar factor of B. Symmetrize A₂.
//   - Stage 3: while Cholesky(A₂) fails, A₂ += (−λmin·k² + spacing(‖A‖F))·I,
//     k = 1,2,… up to the shift budget.
//
// A matrix that is already positive definite is returned as a symmetrized copy
// with an empty report.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAsymmetry,
//   - validation errors of Eigen,
//   - ErrNumericalInstability when the shift budget is exhausted.
//
// Complexity: Time O((1+shifts)·sweeps·n³), Space O(n²).
func NearestPD(m Matrix, opts ...Option) (*Dense, PDReport, error) {
	var rep PDReport
	o := NewOptions(opts...)

	if err := ValidateSymmetric(m, o.eps); err != nil {
		return nil, rep, matrixErrorf(opNearestPD, err)
	}
	b, err := Symmetrize(m)
	if err != nil {
		return nil, rep, matrixErrorf(opNearestPD, err)
	}
	n := b.r
	if n == 0 || IsPositiveDefinite(b) {
		return b, rep, nil
	}

	vals, q, err := Eigen(b, o.eps, o.maxSweeps)
	if err != nil {
		return nil, rep, matrixErrorf(opNearestPD, err)
	}
	rep.MinEigenvalue = vals[0]

	// A₂ = Σ_k max(λk,0)·q_k·q_kᵀ
	a2 := newResult(n, n)
	var i, j, k int
	var lam float64
	for k = 0; k < n; k++ {
		lam = vals[k]
		if lam <= 0 {
			if lam < 0 {
				rep.Clipped++
			}
			continue
		}
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				a2.data[i*n+j] += lam * q.data[i*n+k] * q.data[j*n+k]
			}
		}
	}
	a3, err := Symmetrize(a2)
	if err != nil {
		return nil, rep, matrixErrorf(opNearestPD, err)
	}
	if IsPositiveDefinite(a3) {
		return a3, rep, nil
	}

	norm, _ := FrobeniusNorm(m)
	spacing := math.Nextafter(norm, math.Inf(1)) - norm
	var shift float64
	for k = 1; k <= o.maxShifts; k++ {
		vals, _, err = Eigen(a3, o.eps, o.maxSweeps)
		if err != nil {
			return nil, rep, matrixErrorf(opNearestPD, err)
		}
		shift = -vals[0]*float64(k*k) + spacing
		for i = 0; i < n; i++ {
			a3.data[i*n+i] += shift
		}
		rep.Shifts = k
		if IsPositiveDefinite(a3) {
			return a3, rep, nil
		}
	}

	return nil, rep, matrixErrorf(opNearestPD, fmt.Errorf("after %d shifts: %w", o.maxShifts, ErrNumericalInstability))
}

// CholeskyPD factors a symmetric m, repairing it with NearestPD first when
// it is not positive definite. It returns the factor l and the matrix a it
// factors: m itself when no repair was needed (the report is then empty),
// otherwise the repaired copy.
// Errors: ErrAsymmetry for a non-symmetric m, plus those of NearestPD.
func CholeskyPD(m Matrix, opts ...Option) (l, a *Dense, rep PDReport, err error) {
	if err = ValidateSymmetric(m, NewOptions(opts...).eps); err != nil {
		return nil, nil, rep, matrixErrorf(opNearestPD, err)
	}
	if a, err = toDense(m); err != nil {
		return nil, nil, rep, matrixErrorf(opNearestPD, err)
	}
	if l, err = Cholesky(a); err == nil {
		return l, a, rep, nil
	}
	if a, rep, err = NearestPD(m, opts...); err != nil {
		return nil, nil, rep, err
	}
	if l, err = Cholesky(a); err != nil {
		return nil, nil, rep, matrixErrorf(opNearestPD, fmt.Errorf("%v: %w", err, ErrNumericalInstability))
	}

	return l, a, rep, nil
}
