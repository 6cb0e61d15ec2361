package engine

import "fmt"

// Niche groups genomes whose pairwise compatibility distance to a
// representative falls under a threshold. The representative stays fixed
// for the lifetime of a single generation's Speciate call, but
// CreateNextGeneration re-anchors it to a random surviving member before
// handing the niche to the next generation, so a niche's acceptance
// boundary drifts towards wherever its living members actually are.
type Niche[T Genome[T, E], E Environment] struct {
	ID                   NicheID
	Representative       T
	Members              []*Container[T]
	TotalAdjustedFitness float64
	BestScore            float64
	Age                  uint32
	StagnationAge        uint32
}

// NewNiche creates a niche around representative with no members and zero
// age. The caller is expected to append the representative's own container
// (or not, if it was synthesized) to Members immediately after.
func NewNiche[T Genome[T, E], E Environment](id NicheID, representative T) *Niche[T, E] {
	return &Niche[T, E]{ID: id, Representative: representative}
}

// Accepts reports whether candidate's distance to the niche's
// representative, under env, falls strictly under threshold.
func (n *Niche[T, E]) Accepts(candidate T, env E, threshold float64) bool {
	return candidate.Distance(n.Representative, env) < threshold
}

// AdjustedFitness divides a raw fitness score by the niche's current
// membership count, implementing explicit fitness sharing: a niche that
// absorbs many genomes dilutes each member's claim on reproduction slots.
// Returns 0 for an empty niche.
func (n *Niche[T, E]) AdjustedFitness(rawScore float64) float64 {
	if len(n.Members) == 0 {
		return 0
	}
	return rawScore / float64(len(n.Members))
}

// DisplayInfo renders a short, human-readable summary of the niche's state
// for debug logging.
func (n *Niche[T, E]) DisplayInfo() string {
	return fmt.Sprintf("niche[%d] age=%d size=%d best=%.4f stagnation=%d",
		n.ID, n.Age, len(n.Members), n.BestScore, n.StagnationAge)
}
