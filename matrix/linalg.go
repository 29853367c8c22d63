// SPDX-License-Identifier: MIT
// Package matrix: dense linear-algebra kernels used by the covariance engine
// and the ellipsoid builder.
//
// Notes:
//   - Every kernel validates its inputs through validators.go, allocates a
//     fresh *Dense and never mutates its operands.
//   - Fixed i→j→k loop orders keep results bit-for-bit reproducible.
package matrix

import (
	"fmt"
	"math"
)

// Operation name constants for unified error wrapping.
const (
	opAdd        = "Add"
	opSub        = "Sub"
	opMul        = "Mul"
	opTranspose  = "Transpose"
	opScale      = "Scale"
	opMatVec     = "MatVec"
	opSymmetrize = "Symmetrize"
	opEigen      = "Eigen"
	opCholesky   = "Cholesky"
	opNearestPD  = "NearestPD"
	opCovariance = "Covariance"
	opCovToCorr  = "CovToCorr"
)

// matrixErrorf keeps a stable "Op: underlying" shape. Call only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// newResult allocates a result buffer that accepts whatever the kernels
// produce; NaN handling is the caller's policy, not the kernel's.
func newResult(r, c int) *Dense {
	return &Dense{r: r, c: c, data: make([]float64, r*c)}
}

func addSub(a, b Matrix, sign float64, opTag string) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	res := newResult(da.r, da.c)
	for k := range res.data {
		res.data[k] = da.data[k] + sign*db.data[k]
	}

	return res, nil
}

// Add computes C = A + B.
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub computes C = A - B.
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Mul computes C = A × B.
// Errors: ErrNilMatrix, ErrDimensionMismatch (a.Cols != b.Rows).
// Complexity: Time O(n·m·p), Space O(n·p).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if a.Cols() != b.Rows() {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	n, m, p := da.r, da.c, db.c
	res := newResult(n, p)
	var i, j, k int
	var aik float64
	for i = 0; i < n; i++ {
		for k = 0; k < m; k++ {
			aik = da.data[i*m+k]
			if aik == 0 {
				continue
			}
			for j = 0; j < p; j++ {
				res.data[i*p+j] += aik * db.data[k*p+j]
			}
		}
	}

	return res, nil
}

// Transpose returns mᵀ.
func Transpose(m Matrix) (*Dense, error) {
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res := newResult(d.c, d.r)
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			res.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}

	return res, nil
}

// Scale returns alpha·m.
func Scale(m Matrix, alpha float64) (*Dense, error) {
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res := newResult(d.r, d.c)
	for k, v := range d.data {
		res.data[k] = alpha * v
	}

	return res, nil
}

// MatVec computes y = m·x.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err = ValidateVecLen(x, d.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.r)
	var i, j int
	var acc float64
	for i = 0; i < d.r; i++ {
		acc = 0
		for j = 0; j < d.c; j++ {
			acc += d.data[i*d.c+j] * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// Symmetrize returns (m + mᵀ)/2 for a square m.
func Symmetrize(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opSymmetrize, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opSymmetrize, err)
	}
	n := d.r
	res := newResult(n, n)
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			res.data[i*n+j] = 0.5 * (d.data[i*n+j] + d.data[j*n+i])
		}
	}

	return res, nil
}

// FrobeniusNorm returns sqrt(Σ m[i,j]²).
func FrobeniusNorm(m Matrix) (float64, error) {
	d, err := toDense(m)
	if err != nil {
		return 0, err
	}
	var acc float64
	for _, v := range d.data {
		acc += v * v
	}

	return math.Sqrt(acc), nil
}
