package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/nkirey/evocore/evo"
)

// Config carries the tunables Generation.CreateNextGeneration and
// Population.adjustDistance need on every cycle: the compatibility
// distance threshold speciation uses, the species count dynamic distance
// adjustment aims for, and the two reproduction-shaping probabilities.
type Config struct {
	InbreedRate   float64
	CrossoverRate float64
	Distance      float64
	SpeciesTarget uint32
}

// Generation holds one population-generation's members and the species
// they have been sorted into, plus the selection policies reproduction
// uses to fill the next generation.
type Generation[T Genome[T, E], E Environment] struct {
	Members     []*Container[T]
	Species     []*Niche[T, E]
	Survival    SurvivalCriteria
	Parental    ParentalCriteria
	nextNicheID NicheID
}

// NewGeneration wraps members into a fresh, unspeciated generation using
// the given selection policies.
func NewGeneration[T Genome[T, E], E Environment](members []*Container[T], survival SurvivalCriteria, parental ParentalCriteria) *Generation[T, E] {
	return &Generation[T, E]{Members: members, Survival: survival, Parental: parental}
}

// SeedNicheID ensures the next niche created by Speciate gets an ID
// greater than id. Used when restoring a generation from a snapshot so
// freshly created niches never collide with restored ones.
func (g *Generation[T, E]) SeedNicheID(id NicheID) {
	if id > g.nextNicheID {
		g.nextNicheID = id
	}
}

// Optimize scores every member against problem using eval. It does not
// mutate Species or reorder Members.
func (g *Generation[T, E]) Optimize(ctx context.Context, problem Problem[T], eval Evaluator[T]) {
	eval.Evaluate(ctx, problem, g.Members)
}

// BestMember returns the raw fitness score and genome of the highest
// scoring member, breaking ties by lowest member index. ok is false when
// the generation has no members.
func (g *Generation[T, E]) BestMember() (score float64, genome *T, ok bool) {
	if len(g.Members) == 0 {
		return 0, nil, false
	}
	bestIdx := 0
	best := g.Members[0].FitnessScore
	for i := 1; i < len(g.Members); i++ {
		if g.Members[i].FitnessScore > best {
			best = g.Members[i].FitnessScore
			bestIdx = i
		}
	}
	return best, g.Members[bestIdx].Genome, true
}

// Speciate assigns every member to the first niche whose representative it
// falls within threshold of, creating a fresh niche when none accepts it.
// A niche's representative is whatever CreateNextGeneration set it to (a
// random surviving member, or the prior representative if nothing
// survived); Speciate itself never changes it, only membership, age, best
// score, and stagnation age.
func (g *Generation[T, E]) Speciate(threshold float64, env E) {
	previousBest := make(map[NicheID]float64, len(g.Species))
	for _, sp := range g.Species {
		previousBest[sp.ID] = sp.BestScore
		sp.Members = sp.Members[:0]
	}

	for _, m := range g.Members {
		placed := false
		for _, sp := range g.Species {
			if sp.Accepts(*m.Genome, env, threshold) {
				sp.Members = append(sp.Members, m)
				id := sp.ID
				m.SpeciesID = &id
				placed = true
				break
			}
		}
		if !placed {
			g.nextNicheID++
			sp := NewNiche[T, E](g.nextNicheID, *m.Genome)
			sp.Members = append(sp.Members, m)
			id := sp.ID
			m.SpeciesID = &id
			g.Species = append(g.Species, sp)
		}
	}

	kept := make([]*Niche[T, E], 0, len(g.Species))
	for _, sp := range g.Species {
		if len(sp.Members) == 0 {
			continue
		}
		best := sp.Members[0].FitnessScore
		for _, m := range sp.Members[1:] {
			if m.FitnessScore > best {
				best = m.FitnessScore
			}
		}
		sp.Age++
		if prev, existed := previousBest[sp.ID]; existed {
			if best > prev {
				sp.StagnationAge = 0
			} else {
				sp.StagnationAge++
			}
		}
		sp.BestScore = best
		kept = append(kept, sp)
	}
	g.Species = kept
}

// NumMembers, FitnessAt, and RemoveMembers implement GenerationView so any
// Generation can be handed to a Genocide operator.
func (g *Generation[T, E]) NumMembers() int { return len(g.Members) }

func (g *Generation[T, E]) FitnessAt(memberIdx int) float64 {
	return g.Members[memberIdx].FitnessScore
}

func (g *Generation[T, E]) RemoveMembers(memberIdxs []int) {
	if len(memberIdxs) == 0 {
		return
	}
	remove := make(map[int]bool, len(memberIdxs))
	for _, i := range memberIdxs {
		remove[i] = true
	}
	removed := make(map[*Container[T]]bool, len(memberIdxs))
	kept := make([]*Container[T], 0, len(g.Members))
	for i, m := range g.Members {
		if remove[i] {
			removed[m] = true
			continue
		}
		kept = append(kept, m)
	}
	g.Members = kept
	for _, sp := range g.Species {
		sp.Members = filterContainers(sp.Members, removed)
	}
}

// NumSpecies, SpeciesAgeAt, SpeciesStagnationAgeAt, and RemoveSpecies
// complete the GenerationView implementation.
func (g *Generation[T, E]) NumSpecies() int { return len(g.Species) }

func (g *Generation[T, E]) SpeciesAgeAt(speciesIdx int) uint32 {
	return g.Species[speciesIdx].Age
}

func (g *Generation[T, E]) SpeciesStagnationAgeAt(speciesIdx int) uint32 {
	return g.Species[speciesIdx].StagnationAge
}

func (g *Generation[T, E]) RemoveSpecies(speciesIdxs []int) {
	if len(speciesIdxs) == 0 {
		return
	}
	remove := make(map[int]bool, len(speciesIdxs))
	for _, i := range speciesIdxs {
		remove[i] = true
	}
	removedMembers := make(map[*Container[T]]bool)
	kept := make([]*Niche[T, E], 0, len(g.Species))
	for i, sp := range g.Species {
		if remove[i] {
			for _, m := range sp.Members {
				removedMembers[m] = true
			}
			continue
		}
		kept = append(kept, sp)
	}
	g.Species = kept
	if len(removedMembers) > 0 {
		g.Members = filterContainers(g.Members, removedMembers)
	}
}

func filterContainers[T any](in []*Container[T], drop map[*Container[T]]bool) []*Container[T] {
	out := make([]*Container[T], 0, len(in))
	for _, c := range in {
		if !drop[c] {
			out = append(out, c)
		}
	}
	return out
}

// CreateNextGeneration builds the generation that follows g: it
// apportions size offspring slots across niches by a largest-remainder
// split of each niche's adjusted fitness share, carries over survivors
// per Survival, and fills the rest by breeding under Parental and cfg.
// ok is false when g has no members or has no species (it has not been
// speciated).
func (g *Generation[T, E]) CreateNextGeneration(size int, cfg Config, env E) (next *Generation[T, E], ok bool) {
	if len(g.Members) == 0 || len(g.Species) == 0 {
		return nil, false
	}

	totals := make([]float64, len(g.Species))
	grand := 0.0
	for i, sp := range g.Species {
		sum := 0.0
		for _, m := range sp.Members {
			sum += m.FitnessScore
		}
		avg := 0.0
		if len(sp.Members) > 0 {
			avg = sum / float64(len(sp.Members))
		}
		sp.TotalAdjustedFitness = avg
		totals[i] = avg
		grand += avg
	}

	raws := make([]float64, len(g.Species))
	if grand > 0 {
		for i, t := range totals {
			raws[i] = float64(size) * t / grand
		}
	} else {
		// No niche has positive fitness: fall back to an equal share by
		// membership so reproduction can still proceed.
		totalMembers := 0
		for _, sp := range g.Species {
			totalMembers += len(sp.Members)
		}
		if totalMembers > 0 {
			for i, sp := range g.Species {
				raws[i] = float64(size) * float64(len(sp.Members)) / float64(totalMembers)
			}
		}
	}
	quotas := apportion(raws, size)
	protectBestNiche(g.Species, quotas)

	survivorSet := g.selectSurvivors()

	newMembers := make([]*Container[T], 0, size)
	newSpecies := make([]*Niche[T, E], 0, len(g.Species))

	for i, sp := range g.Species {
		quota := quotas[i]

		representative := sp.Representative
		if len(sp.Members) > 0 {
			// A random surviving member becomes the representative the
			// next Speciate call compares against, instead of the niche's
			// founder staying representative forever.
			representative = *sp.Members[rand.Intn(len(sp.Members))].Genome
		}
		shell := &Niche[T, E]{
			ID:             sp.ID,
			Representative: representative,
			BestScore:      sp.BestScore,
			Age:            sp.Age,
			StagnationAge:  sp.StagnationAge,
		}
		newSpecies = append(newSpecies, shell)

		if len(sp.Members) == 0 {
			continue
		}

		survivors := make([]*Container[T], 0)
		for _, m := range sp.Members {
			if survivorSet[m] {
				survivors = append(survivors, m)
			}
		}
		sort.Slice(survivors, func(a, b int) bool {
			return survivors[a].FitnessScore > survivors[b].FitnessScore
		})
		if len(survivors) > quota {
			survivors = survivors[:quota]
		}
		for _, s := range survivors {
			c := s.Clone()
			newMembers = append(newMembers, c)
		}

		remainder := quota - len(survivors)
		for b := 0; b < remainder; b++ {
			p1 := pickOne[T, E](g.Parental, sp.Members)
			var p2 *Container[T]
			if len(g.Species) > 1 && rand.Float64() < cfg.InbreedRate {
				other := i
				for other == i {
					other = rand.Intn(len(g.Species))
				}
				p2 = pickOne[T, E](g.Parental, g.Species[other].Members)
			} else {
				_, p2 = selectParentPair[T, E](g.Parental, sp.Members)
			}
			newMembers = append(newMembers, breedChild[T, E](p1, p2, env, cfg.CrossoverRate))
		}
	}

	return &Generation[T, E]{
		Members:     newMembers,
		Species:     newSpecies,
		Survival:    g.Survival,
		Parental:    g.Parental,
		nextNicheID: g.nextNicheID,
	}, true
}

func (g *Generation[T, E]) selectSurvivors() map[*Container[T]]bool {
	set := make(map[*Container[T]]bool)
	switch c := g.Survival.(type) {
	case FittestSurvival:
		for _, sp := range g.Species {
			if len(sp.Members) == 0 {
				continue
			}
			best := sp.Members[0]
			for _, m := range sp.Members[1:] {
				if m.FitnessScore > best.FitnessScore {
					best = m
				}
			}
			set[best] = true
		}
	case TopNSurvival:
		all := make([]*Container[T], len(g.Members))
		copy(all, g.Members)
		sort.Slice(all, func(i, j int) bool { return all[i].FitnessScore > all[j].FitnessScore })
		n := c.N
		if n > len(all) {
			n = len(all)
		}
		for i := 0; i < n; i++ {
			set[all[i]] = true
		}
	}
	return set
}

func breedChild[T Genome[T, E], E Environment](p1, p2 *Container[T], env E, crossoverRate float64) *Container[T] {
	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if child, ok := (*p1.Genome).Crossover(*p2.Genome, env, crossoverRate); ok {
			return NewContainer(child)
		}
	}
	evo.WarnLog(errors.Wrap(evo.ErrCrossoverInfeasible, "falling back to cloning the first parent").Error())
	return p1.Clone()
}

func pickOne[T Genome[T, E], E Environment](criteria ParentalCriteria, members []*Container[T]) *Container[T] {
	switch criteria.(type) {
	case BestInSpeciesParents:
		best := members[0]
		for _, m := range members[1:] {
			if m.FitnessScore > best.FitnessScore {
				best = m
			}
		}
		return best
	case UniformRandomParents:
		return members[rand.Intn(len(members))]
	default:
		return biasedRandomPick(members)
	}
}

func selectParentPair[T Genome[T, E], E Environment](criteria ParentalCriteria, members []*Container[T]) (*Container[T], *Container[T]) {
	switch criteria.(type) {
	case BestInSpeciesParents:
		sorted := make([]*Container[T], len(members))
		copy(sorted, members)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].FitnessScore > sorted[b].FitnessScore })
		if len(sorted) == 1 {
			return sorted[0], sorted[0]
		}
		return sorted[0], sorted[1]
	case UniformRandomParents:
		return members[rand.Intn(len(members))], members[rand.Intn(len(members))]
	default:
		return biasedRandomPick(members), biasedRandomPick(members)
	}
}

func biasedRandomPick[T any](members []*Container[T]) *Container[T] {
	total := 0.0
	for _, m := range members {
		if m.FitnessScore > 0 {
			total += m.FitnessScore
		}
	}
	if total <= 0 {
		return members[rand.Intn(len(members))]
	}
	r := rand.Float64() * total
	acc := 0.0
	for _, m := range members {
		if m.FitnessScore <= 0 {
			continue
		}
		acc += m.FitnessScore
		if r <= acc {
			return m
		}
	}
	return members[len(members)-1]
}

// protectBestNiche guards against the population champion's niche rounding
// down to a zero offspring quota and being lost entirely: if the niche
// holding this generation's single best member got no slots, it steals one
// from whichever niche got the most. A no-op when the champion's niche
// already has a quota, or when no other niche has a slot to give up.
func protectBestNiche[T Genome[T, E], E Environment](species []*Niche[T, E], quotas []int) {
	bestNicheIdx := -1
	bestScore := math.Inf(-1)
	for i, sp := range species {
		for _, m := range sp.Members {
			if m.FitnessScore > bestScore {
				bestScore = m.FitnessScore
				bestNicheIdx = i
			}
		}
	}
	if bestNicheIdx < 0 || quotas[bestNicheIdx] > 0 {
		return
	}
	donor := -1
	for i, q := range quotas {
		if i == bestNicheIdx {
			continue
		}
		if donor == -1 || q > quotas[donor] {
			donor = i
		}
	}
	if donor == -1 || quotas[donor] == 0 {
		return
	}
	quotas[donor]--
	quotas[bestNicheIdx] = 1
}

// apportion distributes total whole slots across raws in proportion to
// each entry's share, using the largest-remainder method so the result
// always sums to exactly total: every entry gets floor(raws[i]) first,
// then the entries with the largest fractional remainder each receive one
// more slot until total is reached, cycling through the entries again when
// more slots are left than there are entries.
func apportion(raws []float64, total int) []int {
	n := len(raws)
	quotas := make([]int, n)
	remainders := make([]float64, n)
	sumFloors := 0
	for i, r := range raws {
		f := int(math.Floor(r))
		quotas[i] = f
		remainders[i] = r - float64(f)
		sumFloors += f
	}
	remaining := total - sumFloors
	if remaining <= 0 {
		return quotas
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })
	if n == 0 {
		return quotas
	}
	for i := 0; i < remaining; i++ {
		quotas[order[i%n]]++
	}
	return quotas
}
