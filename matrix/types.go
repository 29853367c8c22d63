// SPDX-License-Identifier: MIT

// Package matrix: the Matrix interface accepted by every kernel.
package matrix

// Matrix is a mutable r×c array of float64. Kernels accept any Matrix and
// copy foreign implementations into a Dense before working on them.
type Matrix interface {
	Rows() int
	Cols() int

	// At returns element (i, j) or ErrOutOfRange.
	At(i, j int) (float64, error)

	// Set writes element (i, j); ErrOutOfRange for bad indices, ErrNaNInf
	// for non-finite values when the implementation validates them.
	Set(i, j int, v float64) error

	// Clone returns a deep copy.
	Clone() Matrix
}
