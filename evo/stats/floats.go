// Package stats collects per-generation summary statistics and exports
// them for offline analysis, independent of any particular genome
// encoding: everything here operates on plain float64 scores.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Floats is a slice of per-member scores with summary statistics attached,
// backed directly by gonum's floats and stat packages.
type Floats []float64

func (f Floats) Min() float64 {
	if len(f) == 0 {
		return 0
	}
	return floats.Min(f)
}

func (f Floats) Max() float64 {
	if len(f) == 0 {
		return 0
	}
	return floats.Max(f)
}

func (f Floats) Sum() float64 {
	return floats.Sum(f)
}

func (f Floats) Mean() float64 {
	if len(f) == 0 {
		return 0
	}
	return stat.Mean(f, nil)
}

func (f Floats) MeanVariance() (mean, variance float64) {
	if len(f) == 0 {
		return 0, 0
	}
	return stat.MeanVariance(f, nil)
}

func (f Floats) Variance() float64 {
	_, v := f.MeanVariance()
	return v
}

func (f Floats) StdDev() float64 {
	if len(f) == 0 {
		return 0
	}
	return math.Sqrt(f.Variance())
}

func (f Floats) Median() float64 {
	return f.quantile(0.5)
}

func (f Floats) Q25() float64 {
	return f.quantile(0.25)
}

func (f Floats) Q75() float64 {
	return f.quantile(0.75)
}

func (f Floats) quantile(q float64) float64 {
	if len(f) == 0 {
		return 0
	}
	sorted := make([]float64, len(f))
	copy(sorted, f)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}
