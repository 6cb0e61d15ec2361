package engine

import (
	"math/rand"
	"sort"
)

// GenerationView is the narrow, genome-agnostic surface a Genocide operator
// needs: raw fitness and age bookkeeping, with no knowledge of the genome
// type or environment a Generation was built from. Generation[T, E]
// implements it for any T and E, which is what lets Genocide stay a plain,
// non-generic interface instead of needing its own type parameters.
type GenerationView interface {
	NumMembers() int
	FitnessAt(memberIdx int) float64
	RemoveMembers(memberIdxs []int)

	NumSpecies() int
	SpeciesAgeAt(speciesIdx int) uint32
	SpeciesStagnationAgeAt(speciesIdx int) uint32
	RemoveSpecies(speciesIdxs []int)
}

// Genocide is a stagnation-recovery operator: given the current
// generation, it prunes members or whole species to restore diversity.
// The concrete set below is closed by design; new behavior is added as a
// new small struct implementing this interface, not by branching inside an
// existing one.
type Genocide interface {
	Apply(gen GenerationView)
}

// KillWorst removes the least-fit Fraction of the population, by raw
// fitness score, ties broken by index order.
type KillWorst struct {
	Fraction float64
}

func (k KillWorst) Apply(gen GenerationView) {
	n := gen.NumMembers()
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return gen.FitnessAt(order[a]) < gen.FitnessAt(order[b])
	})
	cut := int(float64(n) * k.Fraction)
	if cut > n {
		cut = n
	}
	gen.RemoveMembers(order[:cut])
}

// KillOldestSpecies removes the N oldest species, ties broken by index
// order, along with all of their members.
type KillOldestSpecies struct {
	N int
}

func (k KillOldestSpecies) Apply(gen GenerationView) {
	n := gen.NumSpecies()
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return gen.SpeciesAgeAt(order[a]) > gen.SpeciesAgeAt(order[b])
	})
	cnt := k.N
	if cnt > n {
		cnt = n
	}
	gen.RemoveSpecies(order[:cnt])
}

// KillRandom removes a uniformly random Fraction of the population,
// independent of fitness or species.
type KillRandom struct {
	Fraction float64
}

func (k KillRandom) Apply(gen GenerationView) {
	n := gen.NumMembers()
	if n == 0 {
		return
	}
	cut := int(float64(n) * k.Fraction)
	if cut > n {
		cut = n
	}
	gen.RemoveMembers(rand.Perm(n)[:cut])
}

// KillStaleSpecies removes every species whose stagnation age has reached
// Age, along with all of their members.
type KillStaleSpecies struct {
	Age uint32
}

func (k KillStaleSpecies) Apply(gen GenerationView) {
	n := gen.NumSpecies()
	var toRemove []int
	for i := 0; i < n; i++ {
		if gen.SpeciesStagnationAgeAt(i) >= k.Age {
			toRemove = append(toRemove, i)
		}
	}
	if len(toRemove) > 0 {
		gen.RemoveSpecies(toRemove)
	}
}
