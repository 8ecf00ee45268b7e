package chart

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Clustering is the result of ClusterLines.
type Clustering struct {
	// Clusters holds the members of each cluster in input order.
	Clusters [][]int `json:"clusters"`

	// Representatives is the mean coordinate of each cluster.
	Representatives []float64 `json:"representatives"`

	// Deltas are the differences between consecutive representatives.
	Deltas []float64 `json:"deltas"`

	// BlockDelta is the mean of Deltas: the expected grid period.
	BlockDelta float64 `json:"block_delta"`
}

// ClusterLines merges ascending candidate coordinates into clusters. A
// candidate joins the current cluster when it is at most mergeDistance
// past the cluster's last member; otherwise it opens a new cluster.
//
// The candidates must be non-empty and ascending, or ErrInvalidInput is
// returned. When only one cluster results the block delta is undefined:
// the partial Clustering (with its single representative) is returned
// together with ErrDegenerateSpacing.
func ClusterLines(candidates []int, mergeDistance int) (*Clustering, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no grid line candidates", ErrInvalidInput)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i] < candidates[i-1] {
			return nil, fmt.Errorf("%w: candidates not ascending at index %d (%d after %d)",
				ErrInvalidInput, i, candidates[i], candidates[i-1])
		}
	}

	c := &Clustering{}
	cluster := []int{candidates[0]}
	for _, v := range candidates[1:] {
		if v <= cluster[len(cluster)-1]+mergeDistance {
			cluster = append(cluster, v)
			continue
		}
		c.close(cluster)
		cluster = []int{v}
	}
	c.close(cluster)

	if len(c.Representatives) < 2 {
		c.Deltas = []float64{}
		return c, fmt.Errorf("%w: only %d grid line found", ErrDegenerateSpacing, len(c.Representatives))
	}

	c.Deltas = make([]float64, 0, len(c.Representatives)-1)
	for i := 1; i < len(c.Representatives); i++ {
		c.Deltas = append(c.Deltas, c.Representatives[i]-c.Representatives[i-1])
	}
	c.BlockDelta = stat.Mean(c.Deltas, nil)
	return c, nil
}

func (c *Clustering) close(members []int) {
	vals := make([]float64, len(members))
	for i, m := range members {
		vals[i] = float64(m)
	}
	c.Clusters = append(c.Clusters, members)
	c.Representatives = append(c.Representatives, stat.Mean(vals, nil))
}

// ClusterLines is the pipeline-bound form of the package function, using
// Params.MergeDistance.
func (p *Pipeline) ClusterLines(candidates []int) (*Clustering, error) {
	c, err := ClusterLines(candidates, p.Params.MergeDistance)
	if c != nil {
		p.logf("clustering: %d level lines at %v", len(c.Representatives), c.Representatives)
	}
	return c, err
}
