package thermo

import (
	"fmt"
	"math"

	"github.com/katalvlaran/tfa/matrix"
)

// Estimator supplies formation-energy means and their covariance for a list
// of distinct chemical identifiers.
//
// Contract:
//   - len(mean) == len(ids); cov is len(ids)×len(ids).
//   - Unknown identifiers yield a NaN mean and a zero row/column.
type Estimator interface {
	Estimate(ids []string) (mean []float64, cov *matrix.Dense, err error)
}

type pair struct{ a, b string }

func orderedPair(a, b string) pair {
	if b < a {
		a, b = b, a
	}

	return pair{a, b}
}

// StaticEstimates is an in-memory table of means and (co)variances, typically
// loaded from a precomputed component-contribution export.
type StaticEstimates struct {
	means map[string]float64
	cov   map[pair]float64
}

// NewStaticEstimates returns an empty table.
func NewStaticEstimates() *StaticEstimates {
	return &StaticEstimates{means: make(map[string]float64), cov: make(map[pair]float64)}
}

// Set records the mean and standard deviation of id.
func (s *StaticEstimates) Set(id string, mean, stdDev float64) *StaticEstimates {
	s.means[id] = mean
	s.cov[pair{id, id}] = stdDev * stdDev

	return s
}

// SetCovariance records cov(a,b) (symmetric).
func (s *StaticEstimates) SetCovariance(a, b string, v float64) *StaticEstimates {
	s.cov[orderedPair(a, b)] = v

	return s
}

// SetCorrelation records cov(a,b) = rho·σa·σb from the variances already set.
func (s *StaticEstimates) SetCorrelation(a, b string, rho float64) *StaticEstimates {
	sa := math.Sqrt(s.cov[pair{a, a}])
	sb := math.Sqrt(s.cov[pair{b, b}])

	return s.SetCovariance(a, b, rho*sa*sb)
}

// Estimate implements Estimator.
func (s *StaticEstimates) Estimate(ids []string) ([]float64, *matrix.Dense, error) {
	n := len(ids)
	mean := make([]float64, n)
	cov, err := matrix.NewDense(n, n, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, nil, err
	}
	var i, j int
	for i = 0; i < n; i++ {
		m, ok := s.means[ids[i]]
		if !ok {
			mean[i] = math.NaN()
			continue
		}
		mean[i] = m
		for j = 0; j < n; j++ {
			if _, known := s.means[ids[j]]; !known {
				continue
			}
			if err = cov.Set(i, j, s.cov[orderedPair(ids[i], ids[j])]); err != nil {
				return nil, nil, err
			}
		}
	}

	return mean, cov, nil
}

// GroupContribution estimates formation energies from group decompositions:
// mean = G·μg and cov = G·Σg·Gᵀ, where row i of G is the group-count vector
// of identifier i.
type GroupContribution struct {
	// GroupMeans is μg (length g).
	GroupMeans []float64

	// GroupCov is Σg (g×g).
	GroupCov *matrix.Dense

	// Counts maps an identifier to its group-count vector (length g).
	Counts map[string][]float64
}

// Estimate implements Estimator.
// Complexity: O(n·g² + n²·g).
func (gc *GroupContribution) Estimate(ids []string) ([]float64, *matrix.Dense, error) {
	g := len(gc.GroupMeans)
	if gc.GroupCov == nil || gc.GroupCov.Rows() != g || gc.GroupCov.Cols() != g {
		return nil, nil, fmt.Errorf("GroupContribution: group covariance for %d groups: %w", g, ErrEstimateShape)
	}
	n := len(ids)
	G, err := matrix.NewDense(n, g)
	if err != nil {
		return nil, nil, err
	}
	known := make([]bool, n)
	var i, k int
	for i = 0; i < n; i++ {
		row, ok := gc.Counts[ids[i]]
		if !ok {
			continue
		}
		if len(row) != g {
			return nil, nil, fmt.Errorf("GroupContribution: %q has %d counts, want %d: %w", ids[i], len(row), g, ErrEstimateShape)
		}
		known[i] = true
		for k = 0; k < g; k++ {
			if err = G.Set(i, k, row[k]); err != nil {
				return nil, nil, err
			}
		}
	}

	mean, err := matrix.MatVec(G, gc.GroupMeans)
	if err != nil {
		return nil, nil, fmt.Errorf("GroupContribution: %w", err)
	}
	Gt, err := matrix.Transpose(G)
	if err != nil {
		return nil, nil, fmt.Errorf("GroupContribution: %w", err)
	}
	GS, err := matrix.Mul(G, gc.GroupCov)
	if err != nil {
		return nil, nil, fmt.Errorf("GroupContribution: %w", err)
	}
	cov, err := matrix.Mul(GS, Gt)
	if err != nil {
		return nil, nil, fmt.Errorf("GroupContribution: %w", err)
	}
	for i = 0; i < n; i++ {
		if !known[i] {
			mean[i] = math.NaN()
		}
	}

	return mean, cov, nil
}

// SampleEstimates derives means and covariance from joint draws, e.g. a
// Monte Carlo sample of formation energies. Column j of Samples holds the
// draws of IDs[j].
type SampleEstimates struct {
	IDs     []string
	Samples *matrix.Dense
}

// Estimate implements Estimator.
func (se *SampleEstimates) Estimate(ids []string) ([]float64, *matrix.Dense, error) {
	if se.Samples == nil || se.Samples.Cols() != len(se.IDs) {
		return nil, nil, fmt.Errorf("SampleEstimates: %d columns for %d ids: %w", colsOf(se.Samples), len(se.IDs), ErrEstimateShape)
	}
	full, means, err := matrix.Covariance(se.Samples)
	if err != nil {
		return nil, nil, fmt.Errorf("SampleEstimates: %w", err)
	}
	col := make(map[string]int, len(se.IDs))
	for j, id := range se.IDs {
		col[id] = j
	}

	n := len(ids)
	mean := make([]float64, n)
	cov, err := matrix.NewDense(n, n, matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, nil, err
	}
	var i, j int
	for i = 0; i < n; i++ {
		ci, ok := col[ids[i]]
		if !ok {
			mean[i] = math.NaN()
			continue
		}
		mean[i] = means[ci]
		for j = 0; j < n; j++ {
			cj, ok := col[ids[j]]
			if !ok {
				continue
			}
			v, _ := full.At(ci, cj)
			if err = cov.Set(i, j, v); err != nil {
				return nil, nil, err
			}
		}
	}

	return mean, cov, nil
}

func colsOf(m *matrix.Dense) int {
	if m == nil {
		return 0
	}

	return m.Cols()
}
