// SPDX-License-Identifier: Apache-2.0
// Package matrix_test contains unit tests for the matrix validators.
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/tfa/matrix"
	"github.com/stretchr/testify/require"
)

// TestValidateSquare covers nil inputs, square and non-square cases.
func TestValidateSquare(t *testing.T) {
	t.Parallel()

	zeros := func(r, c int) matrix.Matrix {
		m, err := matrix.NewDense(r, c)
		require.NoError(t, err)
		return m
	}
	var nilDense *matrix.Dense

	tests := []struct {
		name string
		m    matrix.Matrix
		want error
	}{
		{"nil", nil, matrix.ErrNilMatrix},
		{"typed nil", nilDense, matrix.ErrNilMatrix},
		{"1x1", zeros(1, 1), nil},
		{"3x3", zeros(3, 3), nil},
		{"2x3", zeros(2, 3), matrix.ErrDimensionMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := matrix.ValidateSquare(tc.m)
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

// TestValidateSymmetric checks tolerance handling and NaN entries.
func TestValidateSymmetric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rows [][]float64
		tol  float64
		want error
	}{
		{"symmetric", [][]float64{{1, 2}, {2, 1}}, 0, nil},
		{"within tol", [][]float64{{1, 2}, {2 + 1e-12, 1}}, 1e-9, nil},
		{"beyond tol", [][]float64{{1, 2}, {2.1, 1}}, 1e-9, matrix.ErrAsymmetry},
		{"nan", [][]float64{{1, math.NaN()}, {math.NaN(), 1}}, 1e-9, matrix.ErrAsymmetry},
		{"non-square", [][]float64{{1, 2}}, 1e-9, matrix.ErrDimensionMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m, err := matrix.NewDenseFrom(tc.rows, matrix.WithNoValidateNaNInf())
			require.NoError(t, err)
			err = matrix.ValidateSymmetric(m, tc.tol)
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidateVecLen(t *testing.T) {
	t.Parallel()

	require.NoError(t, matrix.ValidateVecLen([]float64{1, 2}, 2))
	require.ErrorIs(t, matrix.ValidateVecLen([]float64{1}, 2), matrix.ErrDimensionMismatch)
}
