package evo

import "github.com/pkg/errors"

// Sentinel errors returned by the engine. Callers should compare with
// errors.Is rather than string matching.
var (
	// ErrEmptyGeneration is returned when an operation needs at least one
	// member of the current generation and finds none.
	ErrEmptyGeneration = errors.New("evo: generation has no members")

	// ErrBaseUnsupported is returned by PopulateBase when the configured
	// genome type does not implement BaseGenome.
	ErrBaseUnsupported = errors.New("evo: genome type does not implement BaseGenome")

	// ErrCrossoverInfeasible is wrapped into a warning log message when a
	// genome's Crossover implementation reports no feasible offspring after
	// all retries; the engine then clones the first parent and never returns
	// this error to callers.
	ErrCrossoverInfeasible = errors.New("evo: crossover produced no feasible offspring")

	// ErrOptionsNotFound is returned by RequireFromContext when no Options
	// value has been attached to the context.
	ErrOptionsNotFound = errors.New("evo: options not found in context")
)
