// Package engine implements the generic, speciating population-generation
// cycle: fitness evaluation, niching, selection, reproduction, and
// stagnation handling. It knows nothing about any particular genome
// encoding or problem domain; those are supplied by the type parameters
// and the interfaces in this file.
package engine

// Environment is shared, mutable state a Genome's Crossover, Distance, and
// Base implementations may read or write. Reset returns it to its initial
// state between independent runs; most environments implement it as a
// no-op.
type Environment interface {
	Reset()
}

// Genome is the capability a concrete genome encoding must provide to take
// part in the population cycle: it can be combined with another genome of
// the same type to produce offspring, and it can report how far apart two
// genomes are for the purpose of niching.
//
// Implementations are expected to be cheap to copy; the engine stores and
// clones genomes by value.
type Genome[T any, E Environment] interface {
	// Crossover combines the receiver with other under env and returns the
	// resulting genome. The second return value is false if no feasible
	// offspring could be produced, in which case the engine retries the same
	// pair a bounded number of times and then falls back to cloning the
	// first parent.
	Crossover(other T, env E, crossoverRate float64) (T, bool)

	// Distance reports a non-negative compatibility distance between the
	// receiver and other. Niching groups genomes whose pairwise distance to
	// a niche representative falls under a configured threshold.
	Distance(other T, env E) float64
}

// BaseGenome is an optional capability: a genome type that can construct
// itself from nothing but the environment. Population.PopulateBase requires
// it; genome types that don't implement it can still be populated with
// PopulateVec, PopulateClone, or PopulateGen.
type BaseGenome[T any, E Environment] interface {
	// Base returns a freshly constructed genome seeded from env.
	Base(env E) T
}

// Problem is the fitness function a Population is trained against. Solve
// receives a pointer so implementations that want to record per-genome
// side information (e.g. a cache keyed by genome identity) can do so
// without the engine copying the genome on every call.
type Problem[T any] interface {
	Solve(genome *T) float64
}
