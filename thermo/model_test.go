package thermo_test

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/matrix"
	"github.com/katalvlaran/tfa/network"
	"github.com/katalvlaran/tfa/thermo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abcModel is the A <-> B <-> C toy network: identical means 0, σ = 5, no
// correlation.
func abcModel(t *testing.T, opts ...thermo.Option) (*thermo.Model, *network.Network) {
	t.Helper()
	net := chain(t, "A", "B", "C")
	est := thermo.NewStaticEstimates().Set("A", 0, 5).Set("B", 0, 5).Set("C", 0, 5)
	opts = append([]thermo.Option{thermo.WithLogger(discard())}, opts...)
	m, err := thermo.New(net, nil, est, opts...)
	require.NoError(t, err)

	return m, net
}

func TestModel_ToyChainBoxBounds(t *testing.T) {
	m, _ := abcModel(t)
	p, err := m.Problem()
	require.NoError(t, err)

	for _, id := range []string{"A", "B", "C"} {
		v, ok := p.Variable(thermo.FormationVar(id))
		require.True(t, ok, id)
		assert.InDelta(t, -9.8, v.Lower, 1e-12, id)
		assert.InDelta(t, 9.8, v.Upper, 1e-12, id)

		lnc, ok := p.Variable(thermo.ConcentrationVar(id))
		require.True(t, ok)
		assert.InDelta(t, math.Log(thermo.DefaultMinConcentration), lnc.Lower, 1e-12)
		assert.InDelta(t, math.Log(thermo.DefaultMaxConcentration), lnc.Upper, 1e-12)
	}

	cl, err := m.Clusters()
	require.NoError(t, err)
	assert.Empty(t, cl.Tight)
	assert.Empty(t, cl.Loose)

	q, err := m.QuadraticProblem(lp.QuadraticBackend("gurobi"))
	require.NoError(t, err)
	assert.Empty(t, q.Quadratics(), "variance below threshold: no ellipsoid")
	assert.Equal(t, p.NumVariables(), q.NumVariables())

	assert.Equal(t, 18, p.NumVariables())
	assert.Equal(t, 15, p.NumConstraints())
}

func TestModel_ReactionConstraints(t *testing.T) {
	m, _ := abcModel(t)
	p, err := m.Problem()
	require.NoError(t, err)

	dir, ok := p.Constraint("directionality_R1")
	require.True(t, ok)
	assert.Equal(t, lp.Expr{{Var: "R1", Coef: 1}, {Var: "indicator_R1", Coef: -thermo.DefaultVmax}}, dir.Expr)
	assert.Equal(t, 0.0, dir.Upper)
	assert.True(t, math.IsInf(dir.Lower, -1))

	ind, ok := p.Constraint("ind_R1_reverse")
	require.True(t, ok)
	assert.Equal(t, lp.Expr{{Var: "G_r_R1_reverse", Coef: 1}, {Var: "indicator_R1_reverse", Coef: thermo.DefaultBigM}}, ind.Expr)
	assert.Equal(t, thermo.DefaultBigM, ind.Upper)

	rt := thermo.R * thermo.DefaultTemperature
	fwd, ok := p.Constraint("delG_R1")
	require.True(t, ok)
	assert.True(t, fwd.IsEquality())
	assert.Equal(t, 1.0, fwd.Expr.Coefficient("G_r_R1"))
	assert.InDelta(t, rt, fwd.Expr.Coefficient("lnc_A"), 1e-12)
	assert.InDelta(t, -rt, fwd.Expr.Coefficient("lnc_B"), 1e-12)
	assert.Equal(t, 1.0, fwd.Expr.Coefficient("met_A"))
	assert.Equal(t, -1.0, fwd.Expr.Coefficient("met_B"))

	rev, ok := p.Constraint("delG_R1_reverse")
	require.True(t, ok)
	assert.Equal(t, 1.0, rev.Expr.Coefficient("G_r_R1_reverse"))
	assert.InDelta(t, -rt, rev.Expr.Coefficient("lnc_A"), 1e-12)
	assert.Equal(t, 1.0, rev.Expr.Coefficient("met_B"))
	assert.Equal(t, -fwd.Lower, rev.Lower)

	mass, ok := p.Constraint("mass_B")
	require.True(t, ok)
	assert.Equal(t, lp.Expr{
		{Var: "R1", Coef: 1}, {Var: "R1_reverse", Coef: -1},
		{Var: "R2", Coef: -1}, {Var: "R2_reverse", Coef: 1},
	}, mass.Expr)
}

func TestModel_ExcludedReactionsHaveNoThermo(t *testing.T) {
	net := chain(t, "A", "B", "Z")
	require.NoError(t, net.AddReaction(network.Reaction{ID: "EX_A", Terms: []network.Term{{Metabolite: "A", Coefficient: -1}}}))
	est := thermo.NewStaticEstimates().Set("A", -5, 2).Set("B", -3, 2)

	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()), thermo.WithExclude("EX_A"))
	require.NoError(t, err)

	excluded, err := m.Excluded()
	require.NoError(t, err)
	assert.Equal(t, []string{"R2", "EX_A"}, excluded)

	bad, err := m.ProblemMetabolites()
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, bad)

	p, err := m.Problem()
	require.NoError(t, err)
	for _, rxn := range excluded {
		fwd, rev := thermo.Directions(rxn)
		for _, dir := range []string{fwd, rev} {
			_, ok := p.Variable(thermo.EnergyVar(dir))
			assert.False(t, ok, dir)
			_, ok = p.Variable(thermo.IndicatorVar(dir))
			assert.False(t, ok, dir)
			for _, prefix := range []string{"directionality_", "ind_", "delG_"} {
				assert.False(t, p.HasConstraint(prefix+dir), prefix+dir)
			}
		}
		// flux variables stay: mass balance still needs them
		_, ok := p.Variable(fwd)
		assert.True(t, ok)
	}

	z, ok := p.Variable("met_Z")
	require.True(t, ok)
	assert.Equal(t, 0.0, z.Lower)
	assert.Equal(t, 0.0, z.Upper)

	_, _, err = m.EnergyRange("R2")
	require.ErrorIs(t, err, thermo.ErrExcludedReaction)
	_, _, err = m.EnergyRange("nope")
	require.ErrorIs(t, err, network.ErrReactionNotFound)
}

func TestModel_SharedIdentifierAndProtons(t *testing.T) {
	net := network.New()
	for _, met := range []network.Metabolite{
		{ID: "atp_c", Compartment: "c"},
		{ID: "atp_e", Compartment: "e"},
		{ID: "h_c", Compartment: "c"},
		{ID: "h_e", Compartment: "e"},
	} {
		require.NoError(t, net.AddMetabolite(met))
	}
	require.NoError(t, net.AddReaction(network.Reaction{ID: "ATPt", Terms: []network.Term{
		{Metabolite: "atp_e", Coefficient: -1},
		{Metabolite: "h_e", Coefficient: -1},
		{Metabolite: "atp_c", Coefficient: 1},
		{Metabolite: "h_c", Coefficient: 1},
	}}))
	ids := network.IdentifierMap{"atp_c": "C00002", "atp_e": "C00002", "h_c": "C00080", "h_e": "C00080"}
	est := thermo.NewStaticEstimates().Set("C00002", -2290, 3)

	m, err := thermo.New(net, ids, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	cov, err := m.Covariance()
	require.NoError(t, err)
	require.Equal(t, 2, cov.Len())
	assert.Equal(t, cov.Index[ids.Lookup("atp_c")], cov.Index[ids.Lookup("atp_e")])

	excluded, err := m.Excluded()
	require.NoError(t, err)
	assert.Empty(t, excluded, "protons never make a reaction problematic")

	p, err := m.Problem()
	require.NoError(t, err)
	var mets []string
	for _, name := range varNames(p) {
		if strings.HasPrefix(name, thermo.PrefixFormation) {
			mets = append(mets, name)
		}
	}
	assert.Equal(t, []string{"met_C00002", "met_C00080"}, mets)

	c, ok := p.Constraint("delG_ATPt")
	require.True(t, ok)
	assert.Equal(t, 0.0, c.Expr.Coefficient("met_C00002"), "same chemical on both sides cancels")
	assert.Equal(t, 0.0, c.Expr.Coefficient("lnc_h_c"), "protons are omitted")
	assert.NotEqual(t, 0.0, c.Expr.Coefficient("lnc_atp_c"))
	assert.InDelta(t, 0.0, c.Lower, 1e-9)
}

func TestModel_TransformTerm(t *testing.T) {
	net := network.New()
	require.NoError(t, net.AddMetabolite(network.Metabolite{ID: "a_c", Compartment: "c", Hydrogens: 1}))
	require.NoError(t, net.AddMetabolite(network.Metabolite{ID: "b_e", Compartment: "e", Charge: -1}))
	require.NoError(t, net.AddReaction(network.Reaction{ID: "T", Terms: []network.Term{
		{Metabolite: "a_c", Coefficient: -1},
		{Metabolite: "b_e", Coefficient: 1},
	}}))
	est := thermo.NewStaticEstimates().Set("a_c", -10, 2).Set("b_e", -4, 2)

	m, err := thermo.New(net, nil, est,
		thermo.WithLogger(discard()),
		thermo.WithCompartments(map[string]thermo.Compartment{
			"c": {PH: 7, IonicStrength: 0, Temperature: 298.15},
			"e": {PH: 7, IonicStrength: 0, Temperature: 298.15},
		}),
		thermo.WithMembranePotential(thermo.MembranePotential{"c": {"e": 100}}),
	)
	require.NoError(t, err)

	rt := thermo.R * 298.15
	want := (-4.0 + 10.0) - rt*math.Ln10*7 + (-1)*thermo.Faraday*100/1000
	p, err := m.Problem()
	require.NoError(t, err)
	c, ok := p.Constraint("delG_T")
	require.True(t, ok)
	assert.InDelta(t, want, c.Lower, 1e-9)
}

func TestModel_LoosePairBound(t *testing.T) {
	net := chain(t, "H", "L", "M")
	est := thermo.NewStaticEstimates().
		Set("H", 0, 30).Set("L", 0, 12).Set("M", 0, 8).
		SetCorrelation("H", "L", 0.8).
		SetCorrelation("H", "M", 0.1)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	p, err := m.Problem()
	require.NoError(t, err)
	cov, err := m.Covariance()
	require.NoError(t, err)
	va, _ := cov.Var("H", "H")
	vb, _ := cov.Var("L", "L")
	cab, _ := cov.Var("H", "L")
	want := 1.96 * math.Sqrt(va+vb-2*cab)

	lb, ok := p.Constraint("covar_H_L_lb")
	require.True(t, ok)
	ub, ok := p.Constraint("covar_H_L_ub")
	require.True(t, ok)
	assert.Equal(t, want, ub.Upper)
	assert.Equal(t, -ub.Upper, lb.Lower)
	assert.True(t, math.IsInf(lb.Upper, 1))
	assert.True(t, math.IsInf(ub.Lower, -1))
	assert.Equal(t, lp.Expr{{Var: "met_H", Coef: 1}, {Var: "met_L", Coef: -1}}, ub.Expr)
}

func TestModel_NoPairBoundBelowPairSigma(t *testing.T) {
	net := chain(t, "H", "L")
	est := thermo.NewStaticEstimates().Set("H", 0, 30).Set("L", 0, 8).SetCorrelation("H", "L", 0.9)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	cl, err := m.Clusters()
	require.NoError(t, err)
	assert.Equal(t, []string{"L"}, cl.Loose["H"])

	p, err := m.Problem()
	require.NoError(t, err)
	for _, name := range constraintNames(p) {
		assert.False(t, strings.HasPrefix(name, thermo.PrefixCovariance), name)
	}
}

func TestModel_TightClusterEllipsoid(t *testing.T) {
	net := chain(t, "X", "Y")
	est := thermo.NewStaticEstimates().Set("X", 0, 30).Set("Y", 0, 35).SetCorrelation("X", "Y", 0.9)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	cl, err := m.Clusters()
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, cl.TightIDs())

	base, err := m.Problem()
	require.NoError(t, err)
	for _, name := range constraintNames(base) {
		assert.False(t, strings.HasPrefix(name, thermo.PrefixCovariance), "tight pairs get no linear pair bound")
	}

	q, err := m.QuadraticProblem(lp.QuadraticBackend("cplex"))
	require.NoError(t, err)

	var spheres []string
	for _, name := range varNames(q) {
		if strings.HasPrefix(name, thermo.PrefixSphere) {
			spheres = append(spheres, name)
		}
	}
	assert.Equal(t, []string{"Sphere_X", "Sphere_Y"}, spheres)

	quads := q.Quadratics()
	require.Len(t, quads, 1)
	assert.Equal(t, thermo.EllipseConstraint, quads[0].Name)
	assert.Equal(t, 1.0, quads[0].Upper)
	assert.Len(t, quads[0].Quad, 2)

	chi := -2 * math.Log(0.05) // chi-square quantile, 2 dof
	sq := math.Sqrt(chi)
	rel, ok := q.Constraint("relation_met_Y")
	require.True(t, ok)
	assert.Equal(t, 1.0, rel.Expr.Coefficient("met_Y"))
	assert.InDelta(t, -sq*31.5, rel.Expr.Coefficient("Sphere_X"), 1e-5)
	assert.InDelta(t, -sq*math.Sqrt(1225-31.5*31.5), rel.Expr.Coefficient("Sphere_Y"), 1e-5)

	x, _ := q.Variable("met_X")
	assert.InDelta(t, 30*sq, x.Upper, 1e-5)
	assert.InDelta(t, -30*sq, x.Lower, 1e-5)
	baseX, _ := base.Variable("met_X")
	assert.InDelta(t, 58.8, baseX.Upper, 1e-12, "base keeps its box bounds")
	assert.False(t, base.HasConstraint(thermo.EllipseConstraint))

	e1, err := m.Ellipsoid()
	require.NoError(t, err)
	e2, err := m.Ellipsoid()
	require.NoError(t, err)
	assert.Same(t, e1, e2, "geometry memoized until the model changes")
}

func TestModel_QuadraticProblemIsACopy(t *testing.T) {
	net := chain(t, "X", "Y")
	est := thermo.NewStaticEstimates().Set("X", 0, 30).Set("Y", 0, 35).SetCorrelation("X", "Y", 0.9)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)
	backend := lp.QuadraticBackend("cplex")

	q, err := m.QuadraticProblem(backend)
	require.NoError(t, err)
	require.NoError(t, q.RemoveConstraint(thermo.EllipseConstraint))
	require.NoError(t, q.RemoveConstraint("relation_met_X"))

	again, err := thermo.EllipsoidStrategy{}.Problem(m, backend)
	require.NoError(t, err)
	assert.NotSame(t, q, again)
	assert.True(t, again.HasConstraint(thermo.EllipseConstraint))
	assert.True(t, again.HasConstraint("relation_met_X"))

	// A repair loop working on a solver's copy leaves later solves intact.
	solver := newFakeSolver(backend)
	_, err = m.Optimize(context.Background(), solver, thermo.EllipsoidStrategy{})
	require.NoError(t, err)
	require.NoError(t, solver.last.RemoveConstraint(thermo.EllipseConstraint))
	_, err = m.Optimize(context.Background(), solver, thermo.EllipsoidStrategy{})
	require.NoError(t, err)
	assert.True(t, solver.last.HasConstraint(thermo.EllipseConstraint))
}

func TestModel_QuadraticProblemFollowsBaseEdits(t *testing.T) {
	net := chain(t, "X", "Y")
	est := thermo.NewStaticEstimates().Set("X", 0, 30).Set("Y", 0, 35).SetCorrelation("X", "Y", 0.9)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)
	backend := lp.QuadraticBackend("cplex")

	q, err := m.QuadraticProblem(backend)
	require.NoError(t, err)
	lnc, _ := q.Variable(thermo.ConcentrationVar("X"))
	assert.InDelta(t, math.Log(thermo.DefaultMinConcentration), lnc.Lower, 1e-12)

	base, err := m.Problem()
	require.NoError(t, err)
	require.NoError(t, base.SetBounds(thermo.ConcentrationVar("X"), -5, -4))

	q, err = m.QuadraticProblem(backend)
	require.NoError(t, err)
	lnc, _ = q.Variable(thermo.ConcentrationVar("X"))
	assert.Equal(t, -5.0, lnc.Lower)
	assert.Equal(t, -4.0, lnc.Upper)
	assert.True(t, q.HasConstraint(thermo.EllipseConstraint))
}

func TestModel_EllipsoidExtents(t *testing.T) {
	net := chain(t, "a", "b", "c")
	est := thermo.NewStaticEstimates().
		Set("a", 0, 30).Set("b", 0, 40).Set("c", 0, 55).
		SetCorrelation("a", "b", 0.9).SetCorrelation("a", "c", 0.85).SetCorrelation("b", "c", 0.8)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	e, err := m.Ellipsoid()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, e.Members, "c exceeds the quadratic σ cutoff")

	for i := range e.Members {
		// max over the unit sphere of sqrt(q)·(L·u)_i is sqrt(q)·‖L_i‖.
		var norm2 float64
		for k := 0; k <= i; k++ {
			v, _ := e.Chol.At(i, k)
			norm2 += v * v
		}
		reach := math.Sqrt(e.Quantile * norm2)
		assert.LessOrEqual(t, reach, e.Bounds[i]+1e-6)
		assert.InDelta(t, e.Bounds[i], reach, 1e-6)
	}
}

func TestModel_QuadraticUnsupported(t *testing.T) {
	net := chain(t, "X", "Y")
	est := thermo.NewStaticEstimates().Set("X", 0, 30).Set("Y", 0, 35).SetCorrelation("X", "Y", 0.9)
	var buf bytes.Buffer
	m, err := thermo.New(net, nil, est, thermo.WithLogger(capture(&buf)))
	require.NoError(t, err)

	solver := newFakeSolver(lp.LinearBackend("glpk"))
	_, err = m.Optimize(context.Background(), solver, thermo.EllipsoidStrategy{})
	require.ErrorIs(t, err, thermo.ErrQuadraticUnsupported)
	assert.Nil(t, solver.last)
	assert.Contains(t, buf.String(), "quadratic constraints not supported")
	assert.Contains(t, buf.String(), "backend=glpk")

	base, err := m.Problem()
	require.NoError(t, err)
	assert.Empty(t, base.Quadratics())
	_, ok := base.Variable("Sphere_X")
	assert.False(t, ok)

	sol, err := m.Optimize(context.Background(), solver, thermo.BoxStrategy{})
	require.NoError(t, err)
	assert.Equal(t, lp.StatusOptimal, sol.Status)
	require.NotNil(t, solver.last)
	assert.NotSame(t, base, solver.last)
}

func TestStrategyByName(t *testing.T) {
	s, err := thermo.StrategyByName("MIQC")
	require.NoError(t, err)
	assert.Equal(t, thermo.StrategyMIQC, s.Name())

	s, err = thermo.StrategyByName("box")
	require.NoError(t, err)
	assert.Equal(t, thermo.StrategyBox, s.Name())

	_, err = thermo.StrategyByName("simplex")
	require.ErrorIs(t, err, thermo.ErrUnknownStrategy)
}

func TestModel_UpdateIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	net := chain(t, "A", "B", "C")
	est := thermo.NewStaticEstimates().Set("A", 0, 5).Set("B", 0, 5).Set("C", 0, 5)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(capture(&buf)))
	require.NoError(t, err)
	require.NoError(t, m.ConcentrationRatio("A", "B", -1, 1))

	p, err := m.Problem()
	require.NoError(t, err)
	before := constraintNames(p)
	assert.Empty(t, buf.String())

	require.NoError(t, m.Update())
	after1 := constraintNames(p)
	require.NoError(t, m.Update())
	after2 := constraintNames(p)

	assert.Equal(t, len(before), len(after1))
	assert.Equal(t, after1, after2)
	assert.ElementsMatch(t, before, after1)
	assert.Contains(t, buf.String(), "replacing previous entry")
}

func TestModel_InvalidatesOnNetworkChange(t *testing.T) {
	m, net := abcModel(t)
	cov, err := m.Covariance()
	require.NoError(t, err)
	require.Equal(t, 3, cov.Len())

	require.NoError(t, net.AddMetabolite(network.Metabolite{ID: "D", Compartment: "c"}))
	require.NoError(t, net.AddReaction(network.Reaction{ID: "R3", Terms: []network.Term{
		{Metabolite: "C", Coefficient: -1}, {Metabolite: "D", Coefficient: 1},
	}}))

	cov, err = m.Covariance()
	require.NoError(t, err)
	assert.Equal(t, 4, cov.Len())

	excluded, err := m.Excluded()
	require.NoError(t, err)
	assert.Equal(t, []string{"R3"}, excluded, "D has no estimate")

	p, err := m.Problem()
	require.NoError(t, err)
	_, ok := p.Variable("R3")
	assert.True(t, ok)
}

func TestModel_MissingCrossCovarianceKeepsReactions(t *testing.T) {
	net := chain(t, "A", "B", "C")
	est := thermo.NewStaticEstimates().
		Set("A", 0, 5).Set("B", 0, 5).Set("C", 0, 5).
		SetCovariance("A", "B", math.NaN())
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	mets, err := m.ProblemMetabolites()
	require.NoError(t, err)
	assert.Empty(t, mets)
	excluded, err := m.Excluded()
	require.NoError(t, err)
	assert.Empty(t, excluded)

	p, err := m.Problem()
	require.NoError(t, err)
	a, ok := p.Variable(thermo.FormationVar("A"))
	require.True(t, ok)
	assert.InDelta(t, 9.8, a.Upper, 1e-12)
	assert.True(t, p.HasConstraint("delG_R1"))
	assert.True(t, p.HasConstraint("delG_R2"))
}

func TestModel_EllipsoidFromRepairedCovariance(t *testing.T) {
	net := chain(t, "X", "Y", "Z")
	// pairwise consistent, jointly indefinite
	est := thermo.NewStaticEstimates().
		Set("X", 0, 30).Set("Y", 0, 30).Set("Z", 0, 30).
		SetCorrelation("X", "Y", 0.9).SetCorrelation("X", "Z", 0.9).SetCorrelation("Y", "Z", -0.9)
	var buf bytes.Buffer
	m, err := thermo.New(net, nil, est, thermo.WithLogger(capture(&buf)))
	require.NoError(t, err)

	e, err := m.Ellipsoid()
	require.NoError(t, err)
	require.Equal(t, []string{"X", "Y", "Z"}, e.Members)
	assert.Contains(t, buf.String(), "cluster covariance not positive definite")
	assert.True(t, matrix.IsPositiveDefinite(e.Cov))

	// extent of met_i is sqrt(q)·‖L row i‖ and matches Bounds
	for i := range e.Members {
		var sum float64
		for k := 0; k <= i; k++ {
			lik, _ := e.Chol.At(i, k)
			sum += lik * lik
		}
		cii, _ := e.Cov.At(i, i)
		assert.InDelta(t, cii, sum, 1e-6)
		assert.InDelta(t, math.Sqrt(e.Quantile*sum), e.Bounds[i], 1e-6)
	}
}

func TestModel_EnergyRange(t *testing.T) {
	m, _ := abcModel(t)
	lo, hi, err := m.EnergyRange("R1")
	require.NoError(t, err)

	rt := thermo.R * thermo.DefaultTemperature
	width := math.Log(thermo.DefaultMaxConcentration) - math.Log(thermo.DefaultMinConcentration)
	assert.InDelta(t, -rt*width-19.6, lo, 1e-9)
	assert.InDelta(t, rt*width+19.6, hi, 1e-9)
}

func TestModel_ConcentrationRatio(t *testing.T) {
	m, _ := abcModel(t)
	require.ErrorIs(t, m.ConcentrationRatio("A", "B", 2, 1), thermo.ErrBadRatio)
	require.ErrorIs(t, m.ConcentrationRatio("A", "nope", 0, 1), network.ErrMetaboliteNotFound)

	require.NoError(t, m.ConcentrationRatio("A", "B", -2, 2))
	require.NoError(t, m.ConcentrationRatio("A", "B", -1, 1))
	p, err := m.Problem()
	require.NoError(t, err)
	c, ok := p.Constraint("ratio_A_B")
	require.True(t, ok)
	assert.Equal(t, -1.0, c.Lower)
	assert.Equal(t, 1.0, c.Upper)

	require.NoError(t, m.Refresh())
	p, err = m.Problem()
	require.NoError(t, err)
	assert.True(t, p.HasConstraint("ratio_A_B"), "ratios survive rebuilds")
}

func TestModel_SetObjective(t *testing.T) {
	m, _ := abcModel(t)
	require.ErrorIs(t, m.SetObjective("nope", lp.Maximize), network.ErrReactionNotFound)
	require.NoError(t, m.SetObjective("R2", lp.Maximize))

	p, err := m.Problem()
	require.NoError(t, err)
	assert.Equal(t, lp.Expr{{Var: "R2", Coef: 1}, {Var: "R2_reverse", Coef: -1}}, p.Objective().Expr)

	require.NoError(t, m.Refresh())
	p, err = m.Problem()
	require.NoError(t, err)
	assert.Len(t, p.Objective().Expr, 2)
}

func TestNew_Errors(t *testing.T) {
	_, err := thermo.New(nil, nil, thermo.NewStaticEstimates())
	require.ErrorIs(t, err, thermo.ErrNilNetwork)
	_, err = thermo.New(network.New(), nil, nil)
	require.ErrorIs(t, err, thermo.ErrNilEstimator)
}
