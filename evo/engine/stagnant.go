package engine

// Stagnant tracks how many consecutive generations have passed without the
// population's top raw fitness score improving. When CurrentStagnation
// reaches TargetStagnation, every Cleaner runs in order against the
// current generation and the counter resets; later cleaners see the
// effects earlier ones left behind in the same generation, since
// genocide, like every other between-generation operation, is strictly
// sequential.
type Stagnant struct {
	TargetStagnation  uint32
	CurrentStagnation uint32
	PreviousTopScore  float64
	Cleaners          []Genocide
}

// Observe records a generation's top score and runs the configured
// cleaners against gen if the stagnation target has been reached. Exact
// float64 equality, not a tolerance window, is used to detect an
// unimproved score: a Problem that returns identical float64 bit patterns
// for an identical genome is what "no improvement" means here. The
// improvement check and the trigger check happen within the same call, in
// that order, so a run configured with TargetStagnation k fires its
// cleaners on the kth consecutive generation whose top score equals the
// one before it, not the (k+1)th. A zero TargetStagnation disables the
// monitor entirely.
func (s *Stagnant) Observe(topScore float64, gen GenerationView) {
	if s.TargetStagnation == 0 {
		s.PreviousTopScore = topScore
		return
	}
	if topScore == s.PreviousTopScore {
		s.CurrentStagnation++
	} else {
		s.CurrentStagnation = 0
	}
	s.PreviousTopScore = topScore

	if s.CurrentStagnation == s.TargetStagnation {
		for _, cleaner := range s.Cleaners {
			cleaner.Apply(gen)
		}
		s.CurrentStagnation = 0
	}
}
