package stats

// Snapshot summarizes a single generation's raw fitness scores and the
// number of niches it was divided into.
type Snapshot struct {
	Generation   int
	Fitness      Floats
	SpeciesCount int
}

// Report accumulates one Snapshot per generation for the lifetime of a
// run. Population callers append to it from Train; it has no dependency
// on any genome type or the engine package, so it can be reused across
// different problem domains without modification.
type Report struct {
	Snapshots []Snapshot
}

// Record appends a new snapshot built from the given generation's member
// fitness scores and species count.
func (r *Report) Record(fitness []float64, speciesCount int) {
	scores := make(Floats, len(fitness))
	copy(scores, fitness)
	r.Snapshots = append(r.Snapshots, Snapshot{
		Generation:   len(r.Snapshots),
		Fitness:      scores,
		SpeciesCount: speciesCount,
	})
}

// BestFitness returns the per-generation maximum fitness series.
func (r *Report) BestFitness() Floats {
	out := make(Floats, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Fitness.Max()
	}
	return out
}

// MeanFitness returns the per-generation mean fitness series.
func (r *Report) MeanFitness() Floats {
	out := make(Floats, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Fitness.Mean()
	}
	return out
}

// SpeciesCounts returns the per-generation species count series.
func (r *Report) SpeciesCounts() []int {
	out := make([]int, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.SpeciesCount
	}
	return out
}
