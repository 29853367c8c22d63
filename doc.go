// Package tfa builds thermodynamic flux analysis (TFA) models: a
// stoichiometric network augmented with Gibbs energy variables whose
// formation-energy errors are correlated.
//
// What is tfa?
//
//	A small, deterministic library and CLI that turns a network plus
//	formation-energy estimates into a mixed-integer problem:
//		• Big-M indicator constraints tie flux direction to the sign of ΔrG
//		• Formation-energy errors are bounded per species (boxes), per
//		  loosely correlated pair, and by a confidence ellipsoid for the
//		  tightly correlated cluster
//		• The flattened problem is exported as a dense matrix with senses
//		  and bounds for any external MILP/MIQCP solver
//
// Layout:
//
//	network/   metabolites, reactions, stoichiometry and chemical identifiers
//	matrix/    dense linear algebra: Jacobi eigen, Cholesky, nearest-PD repair
//	lp/        solver-neutral problem model (variables, constraints, objective)
//	thermo/    covariance, clustering, variables, constraints, strategies, export
//	driver/    IIS-driven repair of infeasible problems
//	config/    YAML configuration and problem files
//	cmd/tfa    cobra command line
//
// Quick start:
//
//	m, err := thermo.New(net, ids, estimates, thermo.WithConfidence(0.95))
//	p, err := m.Problem()                               // box bounds, MILP
//	q, err := m.QuadraticProblem(lp.QuadraticBackend("gurobi")) // ellipsoid, MIQCP
//	ex, err := m.ExportMIP()
package tfa
