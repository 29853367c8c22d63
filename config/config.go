// Package config loads the YAML configuration of a thermodynamic model:
// numeric thresholds, physical constants per compartment and concentration
// tables. A Config converts into thermo options; a Problem (see problem.go)
// describes a network with its estimates.
//
// Example:
//
//	confidence: 0.95
//	clusterSigma: 25
//	concentration: {min: 1.0e-5, max: 0.02}
//	compartments:
//	  c: {pH: 7.2, ionicStrength: 0.25, temperature: 298.15}
//	  e: {pH: 7.0}
//	membranePotential:
//	  c: {e: -150}
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/tfa/thermo"
)

// ErrInvalid marks a configuration value rejected by Validate.
var ErrInvalid = errors.New("config: invalid value")

// Range is a molar concentration interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Compartment holds the conditions of one compartment. Absent fields fall back
// to the thermo defaults.
type Compartment struct {
	PH            *float64 `yaml:"pH,omitempty" json:"pH,omitempty"`
	IonicStrength *float64 `yaml:"ionicStrength,omitempty" json:"ionicStrength,omitempty"`
	Temperature   *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
}

// Config is the file configuration of a model.
type Config struct {
	// Strategy selects the solve strategy: "box" or "miqc".
	Strategy string `yaml:"strategy" json:"strategy"`

	Confidence  float64 `yaml:"confidence" json:"confidence"`
	Vmax        float64 `yaml:"vmax" json:"vmax"`
	BigM        float64 `yaml:"bigM" json:"bigM"`
	EnergyBound float64 `yaml:"energyBound" json:"energyBound"`
	BoxZ        float64 `yaml:"boxZ" json:"boxZ"`

	// ClusterSigma, QuadraticSigma and PairSigma are σ cutoffs (kJ/mol).
	ClusterSigma      float64 `yaml:"clusterSigma" json:"clusterSigma"`
	QuadraticSigma    float64 `yaml:"quadraticSigma" json:"quadraticSigma"`
	PairSigma         float64 `yaml:"pairSigma" json:"pairSigma"`
	CorrelationCutoff float64 `yaml:"correlationCutoff" json:"correlationCutoff"`

	ProtonIDs []string `yaml:"protonIds" json:"protonIds"`

	// Concentration is the default range; Concentrations overrides it per
	// metabolite ID.
	Concentration  Range            `yaml:"concentration" json:"concentration"`
	Concentrations map[string]Range `yaml:"concentrations,omitempty" json:"concentrations,omitempty"`

	Compartments      map[string]Compartment        `yaml:"compartments,omitempty" json:"compartments,omitempty"`
	MembranePotential map[string]map[string]float64 `yaml:"membranePotential,omitempty" json:"membranePotential,omitempty"`
}

// Default returns the configuration matching the thermo defaults.
func Default() *Config {
	return &Config{
		Strategy:          thermo.StrategyBox,
		Confidence:        thermo.DefaultConfidence,
		Vmax:              thermo.DefaultVmax,
		BigM:              thermo.DefaultBigM,
		EnergyBound:       thermo.DefaultEnergyBound,
		BoxZ:              thermo.DefaultBoxZ,
		ClusterSigma:      thermo.DefaultClusterSigma,
		QuadraticSigma:    thermo.DefaultQuadraticSigma,
		PairSigma:         thermo.DefaultPairSigma,
		CorrelationCutoff: thermo.DefaultCorrelationCutoff,
		ProtonIDs:         append([]string(nil), thermo.DefaultProtonIDs...),
		Concentration:     Range{Min: thermo.DefaultMinConcentration, Max: thermo.DefaultMaxConcentration},
	}
}

// Parse decodes YAML over the defaults and validates the result. Keys
// absent from data keep their default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return Parse(data)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if _, err := thermo.StrategyByName(c.Strategy); err != nil {
		return invalid("strategy must be %q or %q, got %q", thermo.StrategyBox, thermo.StrategyMIQC, c.Strategy)
	}
	if !(c.Confidence > 0 && c.Confidence < 1) {
		return invalid("confidence must be between 0 and 1, got %.3f", c.Confidence)
	}
	if !(c.CorrelationCutoff > 0 && c.CorrelationCutoff <= 1) {
		return invalid("correlationCutoff must be in (0, 1], got %.3f", c.CorrelationCutoff)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"vmax", c.Vmax},
		{"bigM", c.BigM},
		{"energyBound", c.EnergyBound},
		{"boxZ", c.BoxZ},
		{"clusterSigma", c.ClusterSigma},
		{"quadraticSigma", c.QuadraticSigma},
		{"pairSigma", c.PairSigma},
	} {
		if !finitePositive(f.v) {
			return invalid("%s must be > 0, got %g", f.name, f.v)
		}
	}
	if err := c.Concentration.validate("concentration"); err != nil {
		return err
	}
	for id, r := range c.Concentrations {
		if err := r.validate("concentrations." + id); err != nil {
			return err
		}
	}
	for id, comp := range c.Compartments {
		if comp.PH != nil && (*comp.PH < 0 || *comp.PH > 14) {
			return invalid("compartments.%s.pH must be between 0 and 14, got %.2f", id, *comp.PH)
		}
		if comp.IonicStrength != nil && *comp.IonicStrength < 0 {
			return invalid("compartments.%s.ionicStrength must be >= 0, got %.3f", id, *comp.IonicStrength)
		}
		if comp.Temperature != nil && !finitePositive(*comp.Temperature) {
			return invalid("compartments.%s.temperature must be > 0, got %.2f", id, *comp.Temperature)
		}
	}
	for from, row := range c.MembranePotential {
		for to, mv := range row {
			if math.IsNaN(mv) || math.IsInf(mv, 0) {
				return invalid("membranePotential.%s.%s must be finite", from, to)
			}
		}
	}
	for _, id := range c.ProtonIDs {
		if strings.TrimSpace(id) == "" {
			return invalid("protonIds must not contain empty identifiers")
		}
	}

	return nil
}

func (r Range) validate(field string) error {
	if !finitePositive(r.Min) || !finitePositive(r.Max) {
		return invalid("%s bounds must be > 0, got [%g, %g]", field, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return invalid("%s.min (%g) should be <= max (%g)", field, r.Min, r.Max)
	}

	return nil
}

// compartments resolves the table against the thermo defaults.
func (c *Config) compartments() map[string]thermo.Compartment {
	if len(c.Compartments) == 0 {
		return nil
	}
	out := make(map[string]thermo.Compartment, len(c.Compartments))
	for id, comp := range c.Compartments {
		tc := thermo.DefaultCompartment()
		if comp.PH != nil {
			tc.PH = *comp.PH
		}
		if comp.IonicStrength != nil {
			tc.IonicStrength = *comp.IonicStrength
		}
		if comp.Temperature != nil {
			tc.Temperature = *comp.Temperature
		}
		out[id] = tc
	}

	return out
}

// ModelOptions converts the configuration into thermo options. Call
// Validate first; option constructors panic on values Validate rejects.
func (c *Config) ModelOptions() []thermo.Option {
	opts := []thermo.Option{
		thermo.WithConfidence(c.Confidence),
		thermo.WithVmax(c.Vmax),
		thermo.WithBigM(c.BigM),
		thermo.WithEnergyBound(c.EnergyBound),
		thermo.WithBoxZ(c.BoxZ),
		thermo.WithClusterSigma(c.ClusterSigma),
		thermo.WithQuadraticSigma(c.QuadraticSigma),
		thermo.WithPairSigma(c.PairSigma),
		thermo.WithCorrelationCutoff(c.CorrelationCutoff),
		thermo.WithDefaultConcentration(c.Concentration.Min, c.Concentration.Max),
	}
	if c.ProtonIDs != nil {
		opts = append(opts, thermo.WithProtonIDs(c.ProtonIDs...))
	}
	if len(c.Concentrations) > 0 {
		table := make(thermo.ConcentrationTable, len(c.Concentrations))
		for id, r := range c.Concentrations {
			table[id] = thermo.Range{Min: r.Min, Max: r.Max}
		}
		opts = append(opts, thermo.WithConcentrations(table))
	}
	if comps := c.compartments(); comps != nil {
		opts = append(opts, thermo.WithCompartments(comps))
	}
	if len(c.MembranePotential) > 0 {
		opts = append(opts, thermo.WithMembranePotential(thermo.MembranePotential(c.MembranePotential)))
	}

	return opts
}

// SolveStrategy resolves the configured strategy.
func (c *Config) SolveStrategy() (thermo.Strategy, error) {
	return thermo.StrategyByName(c.Strategy)
}
