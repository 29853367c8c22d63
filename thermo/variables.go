package thermo

import (
	"math"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/network"
)

// Variable name prefixes. External tooling filters variables by these
// prefixes; they are part of the public contract.
const (
	PrefixConcentration = "lnc_"
	PrefixFormation     = "met_"
	PrefixEnergy        = "G_r_"
	PrefixIndicator     = "indicator_"
	PrefixSphere        = "Sphere_"
	ReverseSuffix       = "_reverse"
)

// Directions returns the forward and reverse direction names of a reaction,
// which are also the names of its flux variables.
func Directions(rxnID string) (fwd, rev string) {
	return rxnID, rxnID + ReverseSuffix
}

// ConcentrationVar names the log-concentration variable of a metabolite.
func ConcentrationVar(metID string) string { return PrefixConcentration + metID }

// FormationVar names the formation-energy-error variable of an identifier.
func FormationVar(identifier string) string { return PrefixFormation + identifier }

// EnergyVar names the free-energy variable of a reaction direction.
func EnergyVar(dir string) string { return PrefixEnergy + dir }

// IndicatorVar names the binary indicator of a reaction direction.
func IndicatorVar(dir string) string { return PrefixIndicator + dir }

// SphereVar names the unit-sphere variable of an ellipsoid member.
func SphereVar(identifier string) string { return PrefixSphere + identifier }

// fluxBounds splits net bounds [lo, hi] into forward and reverse bounds.
func fluxBounds(lo, hi float64) (fLo, fHi, rLo, rHi float64) {
	return math.Max(lo, 0), math.Max(hi, 0), math.Max(-hi, 0), math.Max(-lo, 0)
}

// addVariables creates every variable of the base problem. Insertion order
// is the export column order: flux, indicators, energies, concentrations,
// formation errors.
func (m *Model) addVariables(p *lp.Problem, rxns []network.Reaction, mets []network.Metabolite) error {
	for _, r := range rxns {
		fwd, rev := Directions(r.ID)
		fLo, fHi, rLo, rHi := fluxBounds(r.Lower, r.Upper)
		if err := p.AddVariable(lp.Variable{Name: fwd, Lower: fLo, Upper: fHi}); err != nil {
			return err
		}
		if err := p.AddVariable(lp.Variable{Name: rev, Lower: rLo, Upper: rHi}); err != nil {
			return err
		}
	}

	for _, r := range rxns {
		if m.isExcluded(r.ID) {
			continue
		}
		fwd, rev := Directions(r.ID)
		for _, dir := range []string{fwd, rev} {
			if err := p.AddVariable(lp.Variable{Name: IndicatorVar(dir), Lower: 0, Upper: 1, Kind: lp.Binary}); err != nil {
				return err
			}
		}
	}

	b := m.opts.energyBound
	for _, r := range rxns {
		if m.isExcluded(r.ID) {
			continue
		}
		fwd, rev := Directions(r.ID)
		for _, dir := range []string{fwd, rev} {
			if err := p.AddVariable(lp.Variable{Name: EnergyVar(dir), Lower: -b, Upper: b}); err != nil {
				return err
			}
		}
	}

	for _, met := range mets {
		rg := m.opts.concentration(met.ID)
		v := lp.Variable{Name: ConcentrationVar(met.ID), Lower: math.Log(rg.Min), Upper: math.Log(rg.Max)}
		if err := p.AddVariable(v); err != nil {
			return err
		}
	}

	for i, id := range m.cov.IDs {
		lo, hi := m.boxBound(i)
		if err := p.AddVariable(lp.Variable{Name: FormationVar(id), Lower: lo, Upper: hi}); err != nil {
			return err
		}
	}

	return nil
}

// boxBound returns ±BoxZ·σ for identifier row i, or [0,0] when the
// identifier is problematic or has no finite σ.
func (m *Model) boxBound(i int) (float64, float64) {
	s := m.cov.StdDev[i]
	if m.clusters.IsProblematic(m.cov.IDs[i]) || math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, 0
	}
	b := m.opts.boxZ * s

	return -b, b
}
