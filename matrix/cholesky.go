// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// Cholesky factors a symmetric positive definite matrix as A = L·Lᵀ and
// returns the lower-triangular L. Only the lower triangle of A is read.
//
// Implementation:
//   - Cholesky–Banachiewicz, row by row: L[i,j] = (A[i,j] − Σ_k<j L[i,k]L[j,k]) / L[j,j],
//     L[i,i] = sqrt(A[i,i] − Σ_k<i L[i,k]²).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (non-square),
//   - ErrNaNInf (a NaN/Inf entry in the lower triangle),
//   - ErrNotPositiveDefinite (a pivot ≤ 0).
//
// Complexity: Time O(n³/3), Space O(n²).
func Cholesky(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	a, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	n := a.r
	l := newResult(n, n)

	var i, j, k int
	var sum, aij float64
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			aij = a.data[i*n+j]
			if math.IsNaN(aij) || math.IsInf(aij, 0) {
				return nil, matrixErrorf(opCholesky, denseErrorf(ctxAt, i, j, ErrNaNInf))
			}
			sum = aij
			for k = 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if sum <= 0 {
					return nil, matrixErrorf(opCholesky, fmt.Errorf("pivot %d = %g: %w", i, sum, ErrNotPositiveDefinite))
				}
				l.data[i*n+i] = math.Sqrt(sum)
				continue
			}
			l.data[i*n+j] = sum / l.data[j*n+j]
		}
	}

	return l, nil
}

// IsPositiveDefinite reports whether Cholesky succeeds on m.
func IsPositiveDefinite(m Matrix) bool {
	_, err := Cholesky(m)

	return err == nil
}
