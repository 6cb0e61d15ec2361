package engine

// SurvivalCriteria picks which members of a niche carry over, unmodified,
// into the next generation before the remaining reproduction quota is
// filled by breeding. Like Genocide, this is a closed sum type: each
// variant is a marker struct, and Generation.CreateNextGeneration switches
// on the concrete type.
type SurvivalCriteria interface {
	survivalCriteria()
}

// FittestSurvival carries over exactly the single best member of each
// niche, provided the niche's offspring quota is at least one.
type FittestSurvival struct{}

func (FittestSurvival) survivalCriteria() {}

// TopNSurvival carries over the N fittest members of the whole population,
// wherever their niche happens to be, each still bounded by its own
// niche's quota.
type TopNSurvival struct {
	N int
}

func (TopNSurvival) survivalCriteria() {}

// ParentalCriteria selects the parents a niche draws on when breeding a
// new member.
type ParentalCriteria interface {
	parentalCriteria()
}

// BiasedRandomParents draws parents with probability proportional to raw
// fitness score.
type BiasedRandomParents struct{}

func (BiasedRandomParents) parentalCriteria() {}

// BestInSpeciesParents always draws the two fittest distinct members
// available.
type BestInSpeciesParents struct{}

func (BestInSpeciesParents) parentalCriteria() {}

// UniformRandomParents draws parents uniformly at random, ignoring
// fitness.
type UniformRandomParents struct{}

func (UniformRandomParents) parentalCriteria() {}
