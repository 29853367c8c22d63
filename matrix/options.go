// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the numeric policy and the
// iterative routines (Jacobi sweeps, nearest positive definite repair).
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - Safe by construction: panic only on nonsensical parameters (programmer error).
//   - Options fields are unexported; public APIs consume ...Option.
package matrix

import (
	"fmt"
	"math"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the tolerance used by symmetry checks and as the
	// off-diagonal convergence threshold of the Jacobi eigen solver.
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation in Set.
	DefaultValidateNaNInf = true

	// DefaultMaxSweeps caps the number of cyclic Jacobi sweeps.
	DefaultMaxSweeps = 100

	// DefaultMaxShifts caps the number of diagonal shifts NearestPD applies
	// after eigenvalue clipping before giving up with ErrNumericalInstability.
	DefaultMaxShifts = 100
)

// Options holds the resolved configuration. Use NewOptions or pass Option
// setters to the public entry points.
type Options struct {
	eps            float64
	validateNaNInf bool
	maxSweeps      int
	maxShifts      int
}

// Option mutates Options. Invalid arguments panic: they are programmer errors.
type Option func(*Options)

// WithEpsilon sets the numeric tolerance. eps must be finite and >= 0.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(fmt.Sprintf("matrix: WithEpsilon(%v): eps must be finite and >= 0", eps))
	}

	return func(o *Options) { o.eps = eps }
}

// WithNoValidateNaNInf disables NaN/Inf rejection in Set. Estimation tables
// use NaN to mark species without a usable estimate.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// WithMaxSweeps bounds the Jacobi eigen solver. n must be > 0.
func WithMaxSweeps(n int) Option {
	if n <= 0 {
		panic(fmt.Sprintf("matrix: WithMaxSweeps(%d): must be > 0", n))
	}

	return func(o *Options) { o.maxSweeps = n }
}

// WithMaxShifts bounds the NearestPD diagonal-shift loop. n must be > 0.
func WithMaxShifts(n int) Option {
	if n <= 0 {
		panic(fmt.Sprintf("matrix: WithMaxShifts(%d): must be > 0", n))
	}

	return func(o *Options) { o.maxShifts = n }
}

// NewOptions resolves setters against the documented defaults (last writer wins).
func NewOptions(opts ...Option) Options {
	o := Options{
		eps:            DefaultEpsilon,
		validateNaNInf: DefaultValidateNaNInf,
		maxSweeps:      DefaultMaxSweeps,
		maxShifts:      DefaultMaxShifts,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

// Epsilon returns the resolved tolerance.
func (o Options) Epsilon() float64 { return o.eps }

// MaxSweeps returns the resolved Jacobi sweep budget.
func (o Options) MaxSweeps() int { return o.maxSweeps }
