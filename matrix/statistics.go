// SPDX-License-Identifier: MIT
// Package matrix: column statistics over sample matrices and covariance
// matrices.
//
// Notes:
//   - Sample statistics use the unbiased (r−1) denominator.
//   - Results are allocated with NaN validation off: NaN in a covariance marks
//     a species without an estimate and must survive to the caller.
package matrix

import "math"

// Covariance returns the c×c sample covariance of the columns of X (r×c)
// and the column means. Requires r >= 2 when c > 0.
//
// Implementation:
//   - Stage 1: column means.
//   - Stage 2: Cov = (Xcᵀ·Xc)/(r−1) with Xc the centered copy.
//
// Complexity: Time O(r·c²), Space O(r·c + c²).
func Covariance(X Matrix) (*Dense, []float64, error) {
	d, err := toDense(X)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	r, c := d.r, d.c
	if c == 0 {
		return newResult(0, 0), []float64{}, nil
	}
	if r < 2 {
		return nil, nil, matrixErrorf(opCovariance, ErrDimensionMismatch)
	}

	means := make([]float64, c)
	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			means[j] += d.data[i*c+j]
		}
	}
	for j = 0; j < c; j++ {
		means[j] /= float64(r)
	}

	xc := newResult(r, c)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			xc.data[i*c+j] = d.data[i*c+j] - means[j]
		}
	}
	xct, err := Transpose(xc)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	g, err := Mul(xct, xc)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	cov, err := Scale(g, 1.0/float64(r-1))
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}

	return cov, means, nil
}

// StdDevs returns sqrt of the diagonal of a square covariance matrix.
// Negative variances (numerical noise) yield NaN.
func StdDevs(cov Matrix) ([]float64, error) {
	if err := ValidateSquare(cov); err != nil {
		return nil, err
	}
	d, err := toDense(cov)
	if err != nil {
		return nil, err
	}
	out := d.Diag()
	for i, v := range out {
		out[i] = math.Sqrt(v)
	}

	return out, nil
}

// CovToCorr converts a covariance matrix to a correlation matrix:
// corr(i,j) = cov(i,j) / (σi·σj).
//
// Behavior highlights:
//   - corr(i,j) = 0 when cov(i,j) == 0 or either variance is 0.
//   - NaN in cov(i,j) (or in a variance) propagates to corr(i,j).
//
// Complexity: Time O(n²), Space O(n²).
func CovToCorr(cov Matrix) (*Dense, error) {
	if err := ValidateSquare(cov); err != nil {
		return nil, matrixErrorf(opCovToCorr, err)
	}
	d, err := toDense(cov)
	if err != nil {
		return nil, matrixErrorf(opCovToCorr, err)
	}
	std, err := StdDevs(d)
	if err != nil {
		return nil, matrixErrorf(opCovToCorr, err)
	}
	n := d.r
	corr := newResult(n, n)
	var i, j int
	var cij, den float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			cij = d.data[i*n+j]
			den = std[i] * std[j]
			switch {
			case math.IsNaN(cij) || math.IsNaN(den):
				corr.data[i*n+j] = math.NaN()
			case cij == 0 || den == 0:
				corr.data[i*n+j] = 0
			default:
				corr.data[i*n+j] = cij / den
			}
		}
	}

	return corr, nil
}
