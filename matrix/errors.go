// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All routines return these sentinels (optionally wrapped with an op tag via
// fmt.Errorf("Op: %w", ErrX)); tests and callers match with errors.Is.
// No routine panics on user-triggered conditions.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." so log lines can be grepped
// regardless of how deep the wrapping chain is.
var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are negative.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be >= 0")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible operand shapes.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry within the configured epsilon.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrEigenFailed indicates that the Jacobi sweeps did not drive the
	// off-diagonal mass below tolerance within the sweep budget.
	ErrEigenFailed = errors.New("matrix: eigen decomposition did not converge")

	// ErrNotPositiveDefinite is returned by Cholesky when a non-positive pivot
	// is met, i.e. the input is not (numerically) positive definite.
	ErrNotPositiveDefinite = errors.New("matrix: matrix is not positive definite")

	// ErrNumericalInstability is returned by NearestPD when the diagonal shift
	// loop could not produce a factorizable matrix within its iteration budget.
	ErrNumericalInstability = errors.New("matrix: nearest positive definite correction did not converge")
)
