// SPDX-License-Identifier: MIT

// Package thermo: functional configuration of the thermodynamic model.
//
// Design goals:
//   - Every tunable has a documented Default* constant (single source of truth).
//   - Panic only on nonsensical parameters (programmer error); data problems
//     surface as errors from New.
//   - The three variance cutoffs are independent knobs.
package thermo

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/tfa/matrix"
)

// ---------- Defaults (single source of truth) ----------

const (
	// R is the gas constant in kJ/(mol·K).
	R = 8.314e-3

	// Faraday is the Faraday constant in kJ/(mol·V).
	Faraday = 96.485

	// DefaultVmax caps |flux| in the directionality constraints.
	DefaultVmax = 1000.0

	// DefaultBigM is the energy cap K of the indicator constraints.
	DefaultBigM = 1e5

	// DefaultEnergyBound bounds every reaction free-energy variable.
	DefaultEnergyBound = 1e5

	// DefaultBoxZ is the two-sided 95% normal quantile used for box bounds
	// and covariance-pair bounds.
	DefaultBoxZ = 1.96

	// DefaultConfidence is the ellipsoid confidence level.
	DefaultConfidence = 0.95

	// DefaultClusterSigma: species with σ above it are clustering candidates.
	DefaultClusterSigma = 25.0

	// DefaultQuadraticSigma: tight species with σ above it stay out of the ellipsoid.
	DefaultQuadraticSigma = 50.0

	// DefaultPairSigma: loose partners with σ above it receive pair bounds.
	DefaultPairSigma = 10.0

	// DefaultCorrelationCutoff is the strict |corr| threshold for partners.
	DefaultCorrelationCutoff = 0.7

	// DefaultMinConcentration and DefaultMaxConcentration are molar bounds
	// used for metabolites absent from the concentration table.
	DefaultMinConcentration = 1e-5
	DefaultMaxConcentration = 2e-2

	// DefaultTemperature (K), DefaultPH and DefaultIonicStrength (M) apply to
	// compartments absent from the compartment table.
	DefaultTemperature   = 298.15
	DefaultPH            = 7.0
	DefaultIonicStrength = 0.0
)

// DefaultProtonIDs are identifiers treated as the proton: never problematic
// and omitted from energy balances.
var DefaultProtonIDs = []string{"C00080", "cpd00067"}

// Compartment holds the physiological conditions of one compartment.
type Compartment struct {
	PH            float64
	IonicStrength float64
	Temperature   float64
}

// DefaultCompartment returns the conditions used for unknown compartments.
func DefaultCompartment() Compartment {
	return Compartment{PH: DefaultPH, IonicStrength: DefaultIonicStrength, Temperature: DefaultTemperature}
}

// Range is a closed molar concentration interval.
type Range struct {
	Min, Max float64
}

// ConcentrationTable maps metabolite IDs to concentration ranges.
type ConcentrationTable map[string]Range

// MembranePotential maps from-compartment → to-compartment → potential (mV).
type MembranePotential map[string]map[string]float64

// Options holds the resolved configuration.
type Options struct {
	logger *slog.Logger

	vmax        float64
	bigM        float64
	energyBound float64
	boxZ        float64
	confidence  float64

	clusterSigma   float64
	quadraticSigma float64
	pairSigma      float64
	corrCutoff     float64

	protons map[string]struct{}

	defaultConc    Range
	concentrations ConcentrationTable
	compartments   map[string]Compartment
	potentials     MembranePotential

	exclude []string

	matrixOpts []matrix.Option
}

// Option mutates Options.
type Option func(*Options)

func positive(name string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		panic(fmt.Sprintf("thermo: %s(%v): must be finite and > 0", name, v))
	}
}

// WithLogger sets the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVmax sets the flux cap of the directionality constraints.
func WithVmax(v float64) Option {
	positive("WithVmax", v)
	return func(o *Options) { o.vmax = v }
}

// WithBigM sets the energy cap K of the indicator constraints.
func WithBigM(k float64) Option {
	positive("WithBigM", k)
	return func(o *Options) { o.bigM = k }
}

// WithEnergyBound sets |G_r| bounds of the reaction energy variables.
func WithEnergyBound(b float64) Option {
	positive("WithEnergyBound", b)
	return func(o *Options) { o.energyBound = b }
}

// WithBoxZ sets the normal quantile of box and pair bounds.
func WithBoxZ(z float64) Option {
	positive("WithBoxZ", z)
	return func(o *Options) { o.boxZ = z }
}

// WithConfidence sets the ellipsoid confidence level, in (0,1).
func WithConfidence(c float64) Option {
	if math.IsNaN(c) || c <= 0 || c >= 1 {
		panic(fmt.Sprintf("thermo: WithConfidence(%v): must be in (0,1)", c))
	}
	return func(o *Options) { o.confidence = c }
}

// WithClusterSigma sets the clustering σ cutoff.
func WithClusterSigma(s float64) Option {
	positive("WithClusterSigma", s)
	return func(o *Options) { o.clusterSigma = s }
}

// WithQuadraticSigma sets the ellipsoid membership σ cutoff.
func WithQuadraticSigma(s float64) Option {
	positive("WithQuadraticSigma", s)
	return func(o *Options) { o.quadraticSigma = s }
}

// WithPairSigma sets the σ cutoff for covariance-pair bounds.
func WithPairSigma(s float64) Option {
	positive("WithPairSigma", s)
	return func(o *Options) { o.pairSigma = s }
}

// WithCorrelationCutoff sets the strict |corr| partner threshold, in (0,1].
func WithCorrelationCutoff(c float64) Option {
	if math.IsNaN(c) || c <= 0 || c > 1 {
		panic(fmt.Sprintf("thermo: WithCorrelationCutoff(%v): must be in (0,1]", c))
	}
	return func(o *Options) { o.corrCutoff = c }
}

// WithProtonIDs replaces the proton identifier set.
func WithProtonIDs(ids ...string) Option {
	return func(o *Options) {
		o.protons = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			o.protons[id] = struct{}{}
		}
	}
}

// WithDefaultConcentration sets the range of metabolites absent from the table.
func WithDefaultConcentration(lo, hi float64) Option {
	positive("WithDefaultConcentration", lo)
	positive("WithDefaultConcentration", hi)
	if lo > hi {
		panic(fmt.Sprintf("thermo: WithDefaultConcentration(%v, %v): min > max", lo, hi))
	}
	return func(o *Options) { o.defaultConc = Range{Min: lo, Max: hi} }
}

// WithConcentrations sets per-metabolite concentration ranges.
func WithConcentrations(t ConcentrationTable) Option {
	return func(o *Options) { o.concentrations = t }
}

// WithCompartments sets per-compartment pH, ionic strength and temperature.
func WithCompartments(c map[string]Compartment) Option {
	return func(o *Options) { o.compartments = c }
}

// WithMembranePotential sets the inter-compartment potential table (mV).
func WithMembranePotential(p MembranePotential) Option {
	return func(o *Options) { o.potentials = p }
}

// WithExclude adds reaction IDs excluded from thermodynamic treatment
// (typically exchange, sink and demand reactions).
func WithExclude(ids ...string) Option {
	return func(o *Options) { o.exclude = append(o.exclude, ids...) }
}

// WithMatrixOptions forwards options to the eigen and nearest-PD routines.
func WithMatrixOptions(opts ...matrix.Option) Option {
	return func(o *Options) { o.matrixOpts = append(o.matrixOpts, opts...) }
}

// NewOptions resolves setters against the defaults (last writer wins).
func NewOptions(opts ...Option) Options {
	o := Options{
		logger:         slog.Default(),
		vmax:           DefaultVmax,
		bigM:           DefaultBigM,
		energyBound:    DefaultEnergyBound,
		boxZ:           DefaultBoxZ,
		confidence:     DefaultConfidence,
		clusterSigma:   DefaultClusterSigma,
		quadraticSigma: DefaultQuadraticSigma,
		pairSigma:      DefaultPairSigma,
		corrCutoff:     DefaultCorrelationCutoff,
		defaultConc:    Range{Min: DefaultMinConcentration, Max: DefaultMaxConcentration},
	}
	WithProtonIDs(DefaultProtonIDs...)(&o)
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

// isProton reports whether identifier is in the proton set.
func (o Options) isProton(identifier string) bool {
	_, ok := o.protons[identifier]
	return ok
}

// concentration returns the range of metID.
func (o Options) concentration(metID string) Range {
	if r, ok := o.concentrations[metID]; ok && r.Min > 0 && r.Max >= r.Min {
		return r
	}

	return o.defaultConc
}

// compartment returns the conditions of id.
func (o Options) compartment(id string) Compartment {
	if c, ok := o.compartments[id]; ok {
		if c.Temperature <= 0 {
			c.Temperature = DefaultTemperature
		}
		return c
	}

	return DefaultCompartment()
}

// potential returns ψ(from→to) in mV, 0 when unknown.
func (o Options) potential(from, to string) float64 {
	if row, ok := o.potentials[from]; ok {
		return row[to]
	}

	return 0
}
