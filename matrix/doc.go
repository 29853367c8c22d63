// Package matrix provides the dense linear algebra behind the thermodynamic
// constraint system.
//
// What & Why:
//
//	Formation-energy uncertainty is described by a covariance matrix over
//	chemical species. Turning it into solver constraints needs a small, fully
//	deterministic toolkit:
//
//	  - Dense: row-major storage with error-returning At/Set and Induced
//	    sub-matrices (cluster restriction).
//	  - Eigen: cyclic Jacobi eigen-decomposition of symmetric matrices
//	    (per-axis ellipsoid extents, nearest-PD clipping).
//	  - Cholesky / CholeskyPD: lower-triangular factor, optionally after
//	    NearestPD repair of an indefinite estimate.
//	  - NearestPD: Higham's nearest symmetric positive definite matrix.
//	  - Covariance, StdDevs, CovToCorr: sample and covariance statistics.
//
// Errors are package sentinels (errors.go) wrapped with an op tag; match them
// with errors.Is.
//
// Complexity:
//
//	At/Set are O(1); factorizations are O(n³); Eigen is O(sweeps·n³).
package matrix
