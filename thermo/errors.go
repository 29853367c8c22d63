// SPDX-License-Identifier: MIT
// Package thermo: sentinel error set.
// Numerical failures surface as matrix sentinels (ErrNumericalInstability,
// ErrNotPositiveDefinite); structural ones as the sentinels below.

package thermo

import "errors"

var (
	// ErrQuadraticUnsupported indicates the selected backend cannot accept
	// quadratic constraints; callers fall back to the box/linear form.
	ErrQuadraticUnsupported = errors.New("thermo: quadratic constraints not supported")

	// ErrUnknownStrategy indicates a solve strategy name with no implementation.
	ErrUnknownStrategy = errors.New("thermo: unknown solve strategy")

	// ErrNilEstimator indicates New was called without a formation-energy estimator.
	ErrNilEstimator = errors.New("thermo: nil estimator")

	// ErrNilNetwork indicates New was called without a network.
	ErrNilNetwork = errors.New("thermo: nil network")

	// ErrExcludedReaction indicates a thermodynamic query on an excluded reaction.
	ErrExcludedReaction = errors.New("thermo: reaction excluded from thermodynamic treatment")

	// ErrEstimateShape indicates an estimator returned vectors or matrices
	// whose size does not match the requested identifiers.
	ErrEstimateShape = errors.New("thermo: estimate shape mismatch")

	// ErrBadRatio indicates an inverted or NaN concentration-ratio range.
	ErrBadRatio = errors.New("thermo: invalid concentration ratio range")
)
