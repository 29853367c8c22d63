package thermo

import (
	"fmt"
	"math"

	"github.com/katalvlaran/tfa/matrix"
)

// Clusters partitions identifiers by how their formation-energy uncertainty
// must be constrained.
//
//   - Problematic: no usable estimate; their reactions are excluded.
//   - LowVariance: σ ≤ ClusterSigma; box bounds only.
//   - Independent: σ > ClusterSigma with no correlated partner; box bounds only.
//   - Tight: σ > ClusterSigma, every partner also high-variance; ellipsoid.
//   - Loose: σ > ClusterSigma, some partner low-variance; pair bounds.
//
// Slices and partner lists follow covariance-index order.
type Clusters struct {
	Problematic []string
	LowVariance []string
	Independent []string
	Tight       map[string][]string
	Loose       map[string][]string

	problem    map[string]struct{}
	tightOrder []string
	looseOrder []string
}

// TightIDs returns the tight-cluster identifiers in index order.
func (c *Clusters) TightIDs() []string { return append([]string(nil), c.tightOrder...) }

// LooseIDs returns the loose-cluster identifiers in index order.
func (c *Clusters) LooseIDs() []string { return append([]string(nil), c.looseOrder...) }

// IsProblematic reports whether id has no usable estimate.
func (c *Clusters) IsProblematic(id string) bool {
	_, ok := c.problem[id]
	return ok
}

// Cluster classifies every identifier of cov.
//
// Implementation:
//   - Stage 1: corr = CovToCorr(cov).
//   - Stage 2: problematic = not a proton and (NaN mean, NaN/zero σ, or a
//     correlation row with no defined entry).
//   - Stage 3: high = usable with σ > ClusterSigma.
//   - Stage 4: partners(i) = {j ≠ i usable : |corr(i,j)| > CorrelationCutoff};
//     none → Independent, ⊆ high → Tight, else Loose.
//
// Complexity: O(n²).
func Cluster(cov *Covariance, opts ...Option) (*Clusters, error) {
	o := NewOptions(opts...)
	corr, err := matrix.CovToCorr(cov.Cov)
	if err != nil {
		return nil, fmt.Errorf("Cluster: %w", err)
	}

	n := cov.Len()
	cl := &Clusters{
		Tight:   make(map[string][]string),
		Loose:   make(map[string][]string),
		problem: make(map[string]struct{}),
	}
	usable := make([]bool, n)
	high := make([]bool, n)
	var i, j int
	for i = 0; i < n; i++ {
		id := cov.IDs[i]
		if o.isProton(id) {
			usable[i] = true
			continue
		}
		if problematic(cov, corr.Row(i), i) {
			cl.Problematic = append(cl.Problematic, id)
			cl.problem[id] = struct{}{}
			continue
		}
		usable[i] = true
		high[i] = cov.StdDev[i] > o.clusterSigma
	}

	for i = 0; i < n; i++ {
		if !usable[i] {
			continue
		}
		id := cov.IDs[i]
		if !high[i] {
			cl.LowVariance = append(cl.LowVariance, id)
			continue
		}
		row := corr.Row(i)
		var partners []string
		contained := true
		for j = 0; j < n; j++ {
			if j == i || !usable[j] || !(math.Abs(row[j]) > o.corrCutoff) {
				continue
			}
			partners = append(partners, cov.IDs[j])
			contained = contained && high[j]
		}
		switch {
		case len(partners) == 0:
			cl.Independent = append(cl.Independent, id)
		case contained:
			cl.Tight[id] = partners
			cl.tightOrder = append(cl.tightOrder, id)
		default:
			cl.Loose[id] = partners
			cl.looseOrder = append(cl.looseOrder, id)
		}
	}

	return cl, nil
}

func problematic(cov *Covariance, corrRow []float64, i int) bool {
	s := cov.StdDev[i]
	if math.IsNaN(cov.Mean[i]) || math.IsNaN(s) || s == 0 {
		return true
	}
	for _, v := range corrRow {
		if !math.IsNaN(v) {
			return !cov.Usable(i)
		}
	}

	return true
}
