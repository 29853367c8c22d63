package thermo

import (
	"math"

	"github.com/katalvlaran/tfa/network"
)

// Extended Debye–Hückel parameters of the Alberty transform.
const (
	albertyAlpha298 = 2.91482 // RT·α at 298.15 K, kJ/mol
	albertyB        = 1.6     // 1/sqrt(M)
)

// protonTransform returns the pH and ionic-strength correction of one
// metabolite: nH·RT·ln10·pH − RTα·(z² − nH)·√I/(1+B√I).
func protonTransform(m network.Metabolite, c Compartment) float64 {
	rt := R * c.Temperature
	rtAlpha := albertyAlpha298 * c.Temperature / DefaultTemperature
	sqrtI := math.Sqrt(math.Max(c.IonicStrength, 0))
	debye := rtAlpha * (m.Charge*m.Charge - m.Hydrogens) * sqrtI / (1 + albertyB*sqrtI)

	return m.Hydrogens*rt*math.Ln10*c.PH - debye
}

// referenceCompartment is the compartment of the first substrate, or of the
// first participant when the reaction has no substrate.
func referenceCompartment(r network.Reaction, mets map[string]network.Metabolite) string {
	for _, t := range r.Terms {
		if t.Coefficient < 0 {
			return mets[t.Metabolite].Compartment
		}
	}
	if len(r.Terms) > 0 {
		return mets[r.Terms[0].Metabolite].Compartment
	}

	return ""
}

// transformTerm returns T_r, the constant side of the energy balance:
//
//	Σ s·μ(id) + Σ s·Δ(pH,I) + Σ s·z·F·ψ(ref→comp)/1000
//
// Protons contribute nothing. Potentials are in mV.
func transformTerm(
	r network.Reaction,
	mets map[string]network.Metabolite,
	ids network.IdentifierMap,
	cov *Covariance,
	o Options,
) float64 {
	ref := referenceCompartment(r, mets)
	var acc float64
	for _, t := range r.Terms {
		id := ids.Lookup(t.Metabolite)
		if o.isProton(id) {
			continue
		}
		m := mets[t.Metabolite]
		s := t.Coefficient
		if i, ok := cov.Index[id]; ok && !math.IsNaN(cov.Mean[i]) {
			acc += s * cov.Mean[i]
		}
		acc += s * protonTransform(m, o.compartment(m.Compartment))
		if m.Compartment != ref {
			acc += s * m.Charge * Faraday * o.potential(ref, m.Compartment) / 1000
		}
	}

	return acc
}
