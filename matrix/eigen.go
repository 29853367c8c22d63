// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"sort"
)

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix with
// cyclic Jacobi sweeps.
//
// Implementation:
//   - Stage 1: validate a square matrix symmetric within tol.
//   - Stage 2: per sweep, rotate every (p,q), p<q, with a non-zero entry;
//     stop once the off-diagonal Frobenius mass is ≤ tol·max(1, ‖A‖F).
//   - Stage 3: sort eigenvalues ascending and permute the eigenvector
//     columns accordingly.
//
// Returns:
//   - []float64: eigenvalues, ascending.
//   - *Dense: Q whose column k is the unit eigenvector of value k (A = QΛQᵀ).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrAsymmetry (validation),
//     ErrEigenFailed (sweep budget exhausted).
//
// Complexity:
//   - Time O(maxSweeps·n³), Space O(n²).
func Eigen(m Matrix, tol float64, maxSweeps int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	src, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := src.r
	a := src.copyDense()
	q := newResult(n, n)
	var i, j int
	for i = 0; i < n; i++ {
		q.data[i*n+i] = 1
	}
	if n == 0 {
		return []float64{}, q, nil
	}

	norm, _ := FrobeniusNorm(a)
	limit := tol * math.Max(1, norm)

	var (
		sweep, p, r                  int
		app, aqq, apq, theta, t, c, s float64
		arp, arq                      float64
		converged                     bool
	)
	for sweep = 0; sweep < maxSweeps; sweep++ {
		if offDiagonal(a) <= limit {
			converged = true
			break
		}
		for p = 0; p < n-1; p++ {
			for r = p + 1; r < n; r++ {
				apq = a.data[p*n+r]
				if apq == 0 {
					continue
				}
				app = a.data[p*n+p]
				aqq = a.data[r*n+r]
				// θ = (aqq−app)/(2·apq); t is the smaller root of t²+2θt−1=0.
				theta = (aqq - app) / (2 * apq)
				t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
				c = 1.0 / math.Sqrt(t*t+1)
				s = t * c

				for i = 0; i < n; i++ {
					if i == p || i == r {
						continue
					}
					arp = a.data[i*n+p]
					arq = a.data[i*n+r]
					a.data[i*n+p] = c*arp - s*arq
					a.data[p*n+i] = a.data[i*n+p]
					a.data[i*n+r] = s*arp + c*arq
					a.data[r*n+i] = a.data[i*n+r]
				}
				a.data[p*n+p] = app - t*apq
				a.data[r*n+r] = aqq + t*apq
				a.data[p*n+r], a.data[r*n+p] = 0, 0

				for i = 0; i < n; i++ {
					arp = q.data[i*n+p]
					arq = q.data[i*n+r]
					q.data[i*n+p] = c*arp - s*arq
					q.data[i*n+r] = s*arp + c*arq
				}
			}
		}
	}
	if !converged && offDiagonal(a) > limit {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}

	vals := a.Diag()
	order := make([]int, n)
	for i = range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return vals[order[x]] < vals[order[y]] })

	sortedVals := make([]float64, n)
	vecs := newResult(n, n)
	for j = 0; j < n; j++ {
		sortedVals[j] = vals[order[j]]
		for i = 0; i < n; i++ {
			vecs.data[i*n+j] = q.data[i*n+order[j]]
		}
	}

	return sortedVals, vecs, nil
}

// offDiagonal returns sqrt(Σ_{i≠j} a[i,j]²).
func offDiagonal(a *Dense) float64 {
	n := a.r
	var acc float64
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if i != j {
				acc += a.data[i*n+j] * a.data[i*n+j]
			}
		}
	}

	return math.Sqrt(acc)
}

// EigenSym is Eigen with tolerance and sweep budget resolved from options.
func EigenSym(m Matrix, opts ...Option) ([]float64, *Dense, error) {
	o := NewOptions(opts...)

	return Eigen(m, o.eps, o.maxSweeps)
}
