// SPDX-License-Identifier: MIT
// Package thermo: constraint generator.
//
// Per non-excluded reaction r with directions d ∈ {r, r_reverse}:
//
//	directionality_d:  v_d − Vmax·z_d ≤ 0
//	ind_d:             G_r_d + K·z_d ≤ K            (G − K(1−z) ≤ 0)
//	delG_r:            G_r_r − RT·Σs·lnc − Σs·met = T_r
//	delG_r_reverse:    G_r_r_reverse + RT·Σs·lnc + Σs·met = −T_r
//
// plus mass balance per metabolite and covariance-pair bounds for the loose
// cluster. Every constraint goes through lp.Problem.ReplaceConstraint, so
// regenerating is idempotent by name.
package thermo

import (
	"math"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/network"
)

// Constraint name prefixes.
const (
	PrefixMass           = "mass_"
	PrefixDirectionality = "directionality_"
	PrefixIndicatorCons  = "ind_"
	PrefixEnergyBalance  = "delG_"
	PrefixCovariance     = "covar_"
	PrefixRatio          = "ratio_"
)

// reactionConstraintNames lists the six per-reaction constraint names in
// generation and export order.
func reactionConstraintNames(rxnID string) []string {
	fwd, rev := Directions(rxnID)

	return []string{
		PrefixDirectionality + fwd, PrefixDirectionality + rev,
		PrefixIndicatorCons + fwd, PrefixIndicatorCons + rev,
		PrefixEnergyBalance + fwd, PrefixEnergyBalance + rev,
	}
}

func covarNames(a, b string) (lo, hi string) {
	base := PrefixCovariance + a + "_" + b

	return base + "_lb", base + "_ub"
}

// generateConstraints (re)writes every generated constraint of p.
func (m *Model) generateConstraints(p *lp.Problem, rxns []network.Reaction, mets []network.Metabolite) error {
	if err := m.massBalance(p, rxns, mets); err != nil {
		return err
	}
	metByID := make(map[string]network.Metabolite, len(mets))
	for _, met := range mets {
		metByID[met.ID] = met
	}
	for _, r := range rxns {
		if m.isExcluded(r.ID) {
			continue
		}
		if err := m.reactionConstraints(p, r, metByID); err != nil {
			return err
		}
	}
	if err := m.pairBounds(p); err != nil {
		return err
	}
	for _, rt := range m.ratios {
		if _, err := p.ReplaceConstraint(rt.constraint()); err != nil {
			return err
		}
	}

	return nil
}

// massBalance adds S·(v_f − v_r) = 0 for every metabolite used by a reaction.
func (m *Model) massBalance(p *lp.Problem, rxns []network.Reaction, mets []network.Metabolite) error {
	rows := make(map[string]lp.Expr, len(mets))
	for _, r := range rxns {
		fwd, rev := Directions(r.ID)
		for _, t := range r.Terms {
			rows[t.Metabolite] = append(rows[t.Metabolite],
				lp.Term{Var: fwd, Coef: t.Coefficient},
				lp.Term{Var: rev, Coef: -t.Coefficient})
		}
	}
	for _, met := range mets {
		expr, ok := rows[met.ID]
		if !ok {
			continue
		}
		c := lp.Constraint{Name: PrefixMass + met.ID, Expr: expr, Lower: 0, Upper: 0}
		if _, err := p.ReplaceConstraint(c); err != nil {
			return err
		}
	}

	return nil
}

// energyTerms returns RT·Σs·lnc + Σs·met (protons omitted) and T_r.
func (m *Model) energyTerms(r network.Reaction, metByID map[string]network.Metabolite) (lp.Expr, float64) {
	ref := referenceCompartment(r, metByID)
	rt := R * m.opts.compartment(ref).Temperature

	expr := make(lp.Expr, 0, 2*len(r.Terms))
	for _, t := range r.Terms {
		id := m.ids.Lookup(t.Metabolite)
		if m.opts.isProton(id) {
			continue
		}
		expr = append(expr,
			lp.Term{Var: ConcentrationVar(t.Metabolite), Coef: rt * t.Coefficient},
			lp.Term{Var: FormationVar(id), Coef: t.Coefficient})
	}

	return expr, transformTerm(r, metByID, m.ids, m.cov, m.opts)
}

func (m *Model) reactionConstraints(p *lp.Problem, r network.Reaction, metByID map[string]network.Metabolite) error {
	fwd, rev := Directions(r.ID)
	vmax, k := m.opts.vmax, m.opts.bigM
	sum, tr := m.energyTerms(r, metByID)

	neg := make(lp.Expr, 0, len(sum)+1)
	pos := make(lp.Expr, 0, len(sum)+1)
	neg = append(neg, lp.Term{Var: EnergyVar(fwd), Coef: 1})
	pos = append(pos, lp.Term{Var: EnergyVar(rev), Coef: 1})
	for _, t := range sum {
		neg = append(neg, lp.Term{Var: t.Var, Coef: -t.Coef})
		pos = append(pos, t)
	}

	cons := []lp.Constraint{
		{Name: PrefixDirectionality + fwd, Expr: lp.Expr{{Var: fwd, Coef: 1}, {Var: IndicatorVar(fwd), Coef: -vmax}}, Lower: -lp.Inf, Upper: 0},
		{Name: PrefixDirectionality + rev, Expr: lp.Expr{{Var: rev, Coef: 1}, {Var: IndicatorVar(rev), Coef: -vmax}}, Lower: -lp.Inf, Upper: 0},
		{Name: PrefixIndicatorCons + fwd, Expr: lp.Expr{{Var: EnergyVar(fwd), Coef: 1}, {Var: IndicatorVar(fwd), Coef: k}}, Lower: -lp.Inf, Upper: k},
		{Name: PrefixIndicatorCons + rev, Expr: lp.Expr{{Var: EnergyVar(rev), Coef: 1}, {Var: IndicatorVar(rev), Coef: k}}, Lower: -lp.Inf, Upper: k},
		{Name: PrefixEnergyBalance + fwd, Expr: neg, Lower: tr, Upper: tr},
		{Name: PrefixEnergyBalance + rev, Expr: pos, Lower: -tr, Upper: -tr},
	}
	for _, c := range cons {
		if _, err := p.ReplaceConstraint(c); err != nil {
			return err
		}
	}

	return nil
}

// pairBounds adds |met_a − met_b| ≤ BoxZ·sqrt(var_a + var_b − 2cov_ab) for
// each unordered loose pair whose partner has σ > PairSigma.
func (m *Model) pairBounds(p *lp.Problem) error {
	seen := make(map[pair]struct{})
	for _, a := range m.clusters.LooseIDs() {
		for _, b := range m.clusters.Loose[a] {
			if a == b {
				continue
			}
			if !(m.cov.StdDev[m.cov.Index[b]] > m.opts.pairSigma) {
				continue
			}
			key := orderedPair(a, b)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			bound := m.pairBound(a, b)
			expr := lp.Expr{{Var: FormationVar(a), Coef: 1}, {Var: FormationVar(b), Coef: -1}}
			lo, hi := covarNames(a, b)
			if _, err := p.ReplaceConstraint(lp.Constraint{Name: lo, Expr: expr, Lower: -bound, Upper: lp.Inf}); err != nil {
				return err
			}
			if _, err := p.ReplaceConstraint(lp.Constraint{Name: hi, Expr: expr, Lower: -lp.Inf, Upper: bound}); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *Model) pairBound(a, b string) float64 {
	va, _ := m.cov.Var(a, a)
	vb, _ := m.cov.Var(b, b)
	cab, _ := m.cov.Var(a, b)

	return m.opts.boxZ * math.Sqrt(math.Max(va+vb-2*cab, 0))
}

// ratio is a stored concentration-ratio bound.
type ratio struct {
	a, b   string
	lo, hi float64
}

func (rt ratio) constraint() lp.Constraint {
	return lp.Constraint{
		Name:  PrefixRatio + rt.a + "_" + rt.b,
		Expr:  lp.Expr{{Var: ConcentrationVar(rt.a), Coef: 1}, {Var: ConcentrationVar(rt.b), Coef: -1}},
		Lower: rt.lo,
		Upper: rt.hi,
	}
}
