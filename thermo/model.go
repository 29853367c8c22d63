// SPDX-License-Identifier: MIT
// File: model.go
// Role: Model lifecycle; memoized covariance, clustering and problems.
//
// Concurrency:
//   - Every exported method takes m.mu; problem construction is exclusive
//     and never leaves a partially built problem behind.
//
// Caching:
//   - Covariance, clustering and the base problem belong to one network
//     version. Any accessor rebuilds them when network.Version() moved.
//   - The ellipsoid problem is dropped on every base-problem mutation.
package thermo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/network"
)

// Model augments a stoichiometric network with thermodynamic variables and
// constraints. It references the network; it never copies or owns it.
type Model struct {
	mu     sync.Mutex
	net    *network.Network
	ids    network.IdentifierMap
	est    Estimator
	opts   Options
	logger *slog.Logger

	version  uint64
	cov      *Covariance
	clusters *Clusters
	excluded map[string]struct{}
	base     *lp.Problem
	ratios   []ratio
	obj      *objective

	ellipsoid     *Ellipsoid
	ellipsoidProb *lp.Problem // private; callers get clones
	ellipsoidBase uint64      // base.Version() ellipsoidProb was cloned from
}

type objective struct {
	rxnID string
	sense lp.Sense
}

// New builds a thermodynamic model over net.
//
// Steps: covariance over the distinct identifiers of net's metabolites,
// clustering, exclusion set, variables, constraints.
//
// Errors: ErrNilNetwork, ErrNilEstimator, estimator and matrix errors.
func New(net *network.Network, ids network.IdentifierMap, est Estimator, opts ...Option) (*Model, error) {
	if net == nil {
		return nil, ErrNilNetwork
	}
	if est == nil {
		return nil, ErrNilEstimator
	}
	o := NewOptions(opts...)
	m := &Model{net: net, ids: ids, est: est, opts: o, logger: o.logger}
	if err := m.rebuild(); err != nil {
		return nil, err
	}

	return m, nil
}

// rebuild recomputes every cache from the current network. On error the
// previous state is kept.
func (m *Model) rebuild() error {
	version := m.net.Version()
	mets := m.net.Metabolites()
	rxns := m.net.Reactions()

	metIDs := make([]string, len(mets))
	for i, met := range mets {
		metIDs[i] = met.ID
	}
	cov, err := ComputeCovariance(m.ids.Distinct(metIDs), m.est,
		WithLogger(m.logger), WithMatrixOptions(m.opts.matrixOpts...))
	if err != nil {
		return err
	}
	clusters, err := Cluster(cov, m.clusterOptions()...)
	if err != nil {
		return err
	}

	prev := struct {
		cov      *Covariance
		clusters *Clusters
		excluded map[string]struct{}
	}{m.cov, m.clusters, m.excluded}

	m.cov, m.clusters = cov, clusters
	m.excluded = m.exclusionSet(rxns, mets)

	p := lp.NewProblem(lp.WithLogger(m.logger))
	if err = m.addVariables(p, rxns, mets); err == nil {
		err = m.generateConstraints(p, rxns, mets)
	}
	if err == nil {
		err = m.applyObjective(p)
	}
	if err != nil {
		m.cov, m.clusters, m.excluded = prev.cov, prev.clusters, prev.excluded
		return err
	}

	m.base, m.version = p, version
	m.ellipsoid, m.ellipsoidProb = nil, nil

	if n := len(m.excluded); n > 0 {
		m.logger.Warn("reactions excluded from thermodynamic treatment", slog.Int("count", n))
	}
	m.logger.Info("thermodynamic model built",
		slog.Int("metabolites", len(mets)),
		slog.Int("reactions", len(rxns)),
		slog.Int("excluded", len(m.excluded)),
		slog.Int("tight", len(clusters.Tight)),
		slog.Int("loose", len(clusters.Loose)))

	return nil
}

func (m *Model) clusterOptions() []Option {
	o := m.opts
	protons := make([]string, 0, len(o.protons))
	for id := range o.protons {
		protons = append(protons, id)
	}

	return []Option{
		WithClusterSigma(o.clusterSigma),
		WithCorrelationCutoff(o.corrCutoff),
		WithProtonIDs(protons...),
	}
}

// exclusionSet = caller exclusions ∪ reactions touching a metabolite with a
// problematic identifier.
func (m *Model) exclusionSet(rxns []network.Reaction, mets []network.Metabolite) map[string]struct{} {
	out := make(map[string]struct{}, len(m.opts.exclude))
	for _, id := range m.opts.exclude {
		out[id] = struct{}{}
	}
	bad := make(map[string]struct{})
	for _, met := range mets {
		if m.clusters.IsProblematic(m.ids.Lookup(met.ID)) {
			bad[met.ID] = struct{}{}
		}
	}
	for _, r := range rxns {
		for _, t := range r.Terms {
			if _, hit := bad[t.Metabolite]; hit {
				out[r.ID] = struct{}{}
				break
			}
		}
	}

	return out
}

func (m *Model) isExcluded(rxnID string) bool {
	_, ok := m.excluded[rxnID]
	return ok
}

// ensure rebuilds when the network changed since the last build.
func (m *Model) ensure() error {
	if m.net.Version() == m.version && m.base != nil {
		return nil
	}

	return m.rebuild()
}

// Refresh recomputes covariance, clustering and the base problem
// regardless of the network version.
func (m *Model) Refresh() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rebuild()
}

// Update regenerates every thermodynamic constraint on the base problem.
// Existing names are replaced (with a warning), never duplicated.
func (m *Model) Update() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.net.Version() != m.version {
		return m.rebuild()
	}
	if err := m.generateConstraints(m.base, m.net.Reactions(), m.net.Metabolites()); err != nil {
		return err
	}
	m.ellipsoid, m.ellipsoidProb = nil, nil

	return nil
}

// Problem returns the live base problem (linear constraints, box bounds).
// Direct edits are allowed: the quadratic problem and the export are derived
// from the base as it is at call time.
func (m *Model) Problem() (*lp.Problem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}

	return m.base, nil
}

// Covariance returns the memoized covariance.
func (m *Model) Covariance() (*Covariance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}

	return m.cov, nil
}

// Clusters returns the memoized clustering.
func (m *Model) Clusters() (*Clusters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}

	return m.clusters, nil
}

// Excluded returns the excluded reaction IDs in network order.
func (m *Model) Excluded() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}
	var out []string
	for _, r := range m.net.Reactions() {
		if m.isExcluded(r.ID) {
			out = append(out, r.ID)
		}
	}

	return out, nil
}

// ProblemMetabolites returns the metabolites whose identifier has no usable
// estimate, in network order.
func (m *Model) ProblemMetabolites() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}
	var out []string
	for _, met := range m.net.Metabolites() {
		if m.clusters.IsProblematic(m.ids.Lookup(met.ID)) {
			out = append(out, met.ID)
		}
	}

	return out, nil
}

// ConcentrationRatio bounds lnc_a − lnc_b to [lo, hi] (log space). The
// constraint survives rebuilds.
func (m *Model) ConcentrationRatio(a, b string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return fmt.Errorf("ConcentrationRatio(%q, %q): [%g, %g]: %w", a, b, lo, hi, ErrBadRatio)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return err
	}
	for _, id := range []string{a, b} {
		if _, err := m.net.Metabolite(id); err != nil {
			return fmt.Errorf("ConcentrationRatio: %w", err)
		}
	}
	rt := ratio{a: a, b: b, lo: lo, hi: hi}
	if _, err := m.base.ReplaceConstraint(rt.constraint()); err != nil {
		return err
	}
	kept := m.ratios[:0]
	for _, old := range m.ratios {
		if old.a != a || old.b != b {
			kept = append(kept, old)
		}
	}
	m.ratios = append(kept, rt)
	m.ellipsoid, m.ellipsoidProb = nil, nil

	return nil
}

// SetObjective optimizes the net flux of rxnID (v_f − v_r).
func (m *Model) SetObjective(rxnID string, sense lp.Sense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return err
	}
	if _, err := m.net.Reaction(rxnID); err != nil {
		return fmt.Errorf("SetObjective: %w", err)
	}
	prev := m.obj
	m.obj = &objective{rxnID: rxnID, sense: sense}
	if err := m.applyObjective(m.base); err != nil {
		m.obj = prev
		return err
	}
	m.ellipsoid, m.ellipsoidProb = nil, nil

	return nil
}

func (m *Model) applyObjective(p *lp.Problem) error {
	if m.obj == nil {
		return nil
	}
	fwd, rev := Directions(m.obj.rxnID)

	return p.SetObjective(lp.Objective{
		Expr:  lp.Expr{{Var: fwd, Coef: 1}, {Var: rev, Coef: -1}},
		Sense: m.obj.sense,
	})
}

// Ellipsoid returns the memoized ellipsoid geometry of the tight cluster.
func (m *Model) Ellipsoid() (*Ellipsoid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}

	return m.ellipsoidLocked()
}

func (m *Model) ellipsoidLocked() (*Ellipsoid, error) {
	if m.ellipsoid != nil {
		return m.ellipsoid, nil
	}
	e, err := m.computeEllipsoid()
	if err != nil {
		return nil, err
	}
	m.ellipsoid = e

	return e, nil
}

// QuadraticProblem returns a clone of the base problem extended with the
// ellipsoid constraint. backend must report lp.CapQuadratic; otherwise a
// warning is logged, nothing is built and ErrQuadraticUnsupported returned.
// The extended problem is memoized until the base problem changes; every
// call returns a fresh copy the caller may modify.
func (m *Model) QuadraticProblem(backend lp.Backend) (*lp.Problem, error) {
	if !lp.SupportsQuadratic(backend) {
		name := "<nil>"
		if backend != nil {
			name = backend.Name()
		}
		m.logger.Warn("quadratic constraints not supported by backend, use the box strategy",
			slog.String("backend", name))
		return nil, fmt.Errorf("QuadraticProblem(%s): %w", name, ErrQuadraticUnsupported)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensure(); err != nil {
		return nil, err
	}
	if m.ellipsoidProb != nil && m.ellipsoidBase == m.base.Version() {
		return m.ellipsoidProb.Clone(), nil
	}
	e, err := m.ellipsoidLocked()
	if err != nil {
		return nil, err
	}
	p := m.base.Clone()
	if err = applyEllipsoid(p, e); err != nil {
		return nil, err
	}
	m.ellipsoidProb, m.ellipsoidBase = p, m.base.Version()

	return p.Clone(), nil
}

// EnergyRange returns the interval of G_r for rxnID implied by the current
// variable bounds, read off the forward energy balance.
func (m *Model) EnergyRange(rxnID string) (lo, hi float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err = m.ensure(); err != nil {
		return 0, 0, err
	}
	if _, err = m.net.Reaction(rxnID); err != nil {
		return 0, 0, fmt.Errorf("EnergyRange: %w", err)
	}
	if m.isExcluded(rxnID) {
		return 0, 0, fmt.Errorf("EnergyRange(%q): %w", rxnID, ErrExcludedReaction)
	}
	fwd, _ := Directions(rxnID)
	c, ok := m.base.Constraint(PrefixEnergyBalance + fwd)
	if !ok {
		return 0, 0, fmt.Errorf("EnergyRange(%q): %w", rxnID, lp.ErrConstraintNotFound)
	}

	// G = T − Σ c·x over the non-G terms.
	lo, hi = c.Lower, c.Lower
	g := EnergyVar(fwd)
	for _, t := range c.Expr {
		if t.Var == g {
			continue
		}
		v, _ := m.base.Variable(t.Var)
		a, b := -t.Coef*v.Lower, -t.Coef*v.Upper
		lo += math.Min(a, b)
		hi += math.Max(a, b)
	}

	return lo, hi, nil
}

// Optimize builds the strategy's problem for solver and solves it. The base
// problem is never modified.
func (m *Model) Optimize(ctx context.Context, solver lp.Solver, s Strategy) (*lp.Solution, error) {
	if s == nil {
		return nil, fmt.Errorf("Optimize: %w", ErrUnknownStrategy)
	}
	if solver == nil {
		return nil, fmt.Errorf("Optimize(%s): nil solver: %w", s.Name(), lp.ErrNotImplemented)
	}
	p, err := s.Problem(m, solver)
	if err != nil {
		return nil, fmt.Errorf("Optimize(%s): %w", s.Name(), err)
	}

	return solver.Solve(ctx, p)
}
