package stats

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// WriteNPZ dumps the report to an NPZ archive with the following layout:
//   - run_fitness: mean, variance of per-generation fitness, one row per
//     generation
//   - best_fitness: the best fitness score per generation
//   - mean_fitness: the mean fitness score per generation
//   - species_count: the species count per generation
func (r *Report) WriteNPZ(w io.Writer) error {
	runFitness := mat.NewDense(len(r.Snapshots), 2, nil)
	for i, s := range r.Snapshots {
		mean, variance := s.Fitness.MeanVariance()
		runFitness.SetRow(i, []float64{mean, variance})
	}

	out := npz.NewWriter(w)
	if err := out.Write("run_fitness", runFitness); err != nil {
		return errors.Wrap(err, "failed to write run_fitness")
	}
	if err := out.Write("best_fitness", []float64(r.BestFitness())); err != nil {
		return errors.Wrap(err, "failed to write best_fitness")
	}
	if err := out.Write("mean_fitness", []float64(r.MeanFitness())); err != nil {
		return errors.Wrap(err, "failed to write mean_fitness")
	}
	counts := r.SpeciesCounts()
	countsF := make([]float64, len(counts))
	for i, c := range counts {
		countsF[i] = float64(c)
	}
	if err := out.Write("species_count", countsF); err != nil {
		return errors.Wrap(err, "failed to write species_count")
	}
	return out.Close()
}
