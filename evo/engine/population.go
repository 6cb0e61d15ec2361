package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/nkirey/evocore/evo"
	"github.com/nkirey/evocore/evo/stats"
)

// Population is the top-level handle to a run: it owns the current
// generation, the shared environment, the problem being solved, and every
// policy the generation cycle needs. It is built with a chained sequence
// of setters; the chaining is ergonomic only and carries no semantics.
type Population[T Genome[T, E], E Environment, P Problem[T]] struct {
	size            int
	dynamicDistance bool
	debug           bool
	config          Config
	stagnation      Stagnant

	problem P
	env     E

	survivorCriteria SurvivalCriteria
	parentalCriteria ParentalCriteria
	evaluator        Evaluator[T]

	current *Generation[T, E]
	stats   *stats.Report
}

// New returns a Population with sensible defaults: a population of 100,
// fixed compatibility distance, fittest-survival, biased-random parent
// selection, and parallel evaluation. Every default can be overridden
// with the setters below before the first call to Train or Run.
func New[T Genome[T, E], E Environment, P Problem[T]]() *Population[T, E, P] {
	survival := SurvivalCriteria(FittestSurvival{})
	parental := ParentalCriteria(BiasedRandomParents{})
	return &Population[T, E, P]{
		size:             100,
		config:           Config{CrossoverRate: 0.7, Distance: 3.0, SpeciesTarget: 15},
		survivorCriteria: survival,
		parentalCriteria: parental,
		evaluator:        ParallelEvaluator[T]{},
		current:          &Generation[T, E]{Survival: survival, Parental: parental},
		stats:            &stats.Report{},
	}
}

// Size sets the number of members maintained in every generation.
func (p *Population[T, E, P]) Size(n int) *Population[T, E, P] {
	p.size = n
	return p
}

// GetSize returns the currently configured generation size.
func (p *Population[T, E, P]) GetSize() int { return p.size }

// Configure replaces the engine's tunables wholesale.
func (p *Population[T, E, P]) Configure(cfg Config) *Population[T, E, P] {
	p.config = cfg
	return p
}

// Constrain attaches the shared environment every genome operation will
// read or write.
func (p *Population[T, E, P]) Constrain(env E) *Population[T, E, P] {
	p.env = env
	return p
}

// Impose attaches the problem Optimize scores members against.
func (p *Population[T, E, P]) Impose(problem P) *Population[T, E, P] {
	p.problem = problem
	return p
}

// DynamicDistance toggles automatic compatibility-distance adjustment
// towards Config.SpeciesTarget after every generation.
func (p *Population[T, E, P]) DynamicDistance(enabled bool) *Population[T, E, P] {
	p.dynamicDistance = enabled
	return p
}

// Stagnation configures the stagnation monitor: the number of consecutive
// unimproved generations that triggers cleaners, and the cleaners
// themselves, applied in order.
func (p *Population[T, E, P]) Stagnation(targetStagnation uint32, cleaners []Genocide) *Population[T, E, P] {
	p.stagnation = Stagnant{TargetStagnation: targetStagnation, Cleaners: cleaners}
	return p
}

// Debug toggles per-generation progress logging through the evo package's
// logger.
func (p *Population[T, E, P]) Debug(enabled bool) *Population[T, E, P] {
	p.debug = enabled
	return p
}

// SurvivorCriteria sets the policy for carrying members over unmodified
// into the next generation.
func (p *Population[T, E, P]) SurvivorCriteria(c SurvivalCriteria) *Population[T, E, P] {
	p.survivorCriteria = c
	if p.current != nil {
		p.current.Survival = c
	}
	return p
}

// ParentalCriteria sets the policy used to pick breeding parents.
func (p *Population[T, E, P]) ParentalCriteria(c ParentalCriteria) *Population[T, E, P] {
	p.parentalCriteria = c
	if p.current != nil {
		p.current.Parental = c
	}
	return p
}

// Evaluator overrides the default ParallelEvaluator, typically with a
// SequentialEvaluator for deterministic tests.
func (p *Population[T, E, P]) Evaluator(e Evaluator[T]) *Population[T, E, P] {
	p.evaluator = e
	return p
}

// ConfigureFromContext pulls an *evo.Options value out of ctx (attached
// with evo.NewContext) and applies its run-level settings: size, dynamic
// distance, stagnation target, debug logging, evaluator kind, and the
// Config tunables. Threading run options through context instead of a
// constructor parameter suits call sites sitting several layers below
// wherever Options was first loaded.
// Returns evo.ErrOptionsNotFound if ctx carries no Options.
func (p *Population[T, E, P]) ConfigureFromContext(ctx context.Context) (*Population[T, E, P], error) {
	opts, err := evo.RequireFromContext(ctx)
	if err != nil {
		return p, err
	}
	p.size = opts.Size
	p.dynamicDistance = opts.DynamicDistance
	p.debug = opts.Debug
	p.config = Config{
		InbreedRate:   opts.InbreedRate,
		CrossoverRate: opts.CrossoverRate,
		Distance:      opts.Distance,
		SpeciesTarget: opts.SpeciesTarget,
	}
	p.stagnation.TargetStagnation = opts.TargetStagnation
	if opts.EvaluatorKind == "sequential" {
		p.evaluator = SequentialEvaluator[T]{}
	} else {
		p.evaluator = ParallelEvaluator[T]{}
	}
	return p, nil
}

// Statistics returns the per-generation fitness and species-count report
// accumulated across every completed Train call.
func (p *Population[T, E, P]) Statistics() *stats.Report { return p.stats }

// tryBase reports whether the configured genome type implements
// BaseGenome and, if so, constructs one from env.
func (p *Population[T, E, P]) tryBase(env E) (T, bool) {
	var zero T
	if bg, ok := any(zero).(BaseGenome[T, E]); ok {
		return bg.Base(env), true
	}
	return zero, false
}

// PopulateBase fills the population by calling BaseGenome.Base once per
// slot, across a worker pool, with calls serialized behind a mutex since
// Base is expected to mutate the shared environment. Returns
// evo.ErrBaseUnsupported if the configured genome type does not implement
// BaseGenome.
func (p *Population[T, E, P]) PopulateBase() (*Population[T, E, P], error) {
	if _, ok := p.tryBase(p.env); !ok {
		return p, evo.ErrBaseUnsupported
	}

	members := make([]*Container[T], p.size)
	var mu sync.Mutex
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	sem := make(chan struct{}, workers)
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			mu.Lock()
			g, _ := p.tryBase(p.env)
			mu.Unlock()
			members[idx] = NewContainer(g)
		}(i)
	}
	wg.Wait()

	p.current = &Generation[T, E]{Members: members, Survival: p.survivorCriteria, Parental: p.parentalCriteria}
	return p, nil
}

// PopulateVec seeds the population directly from vals. len(vals) becomes
// the population's effective starting size.
func (p *Population[T, E, P]) PopulateVec(vals []T) *Population[T, E, P] {
	members := make([]*Container[T], len(vals))
	for i, v := range vals {
		members[i] = NewContainer(v)
	}
	p.current = &Generation[T, E]{Members: members, Survival: p.survivorCriteria, Parental: p.parentalCriteria}
	return p
}

// PopulateClone seeds the population with Size copies of seed.
func (p *Population[T, E, P]) PopulateClone(seed T) *Population[T, E, P] {
	vals := make([]T, p.size)
	for i := range vals {
		vals[i] = seed
	}
	return p.PopulateVec(vals)
}

// PopulateGen replaces the current generation wholesale, e.g. when
// resuming from a persisted snapshot.
func (p *Population[T, E, P]) PopulateGen(gen *Generation[T, E]) *Population[T, E, P] {
	p.current = gen
	return p
}

// adjustDistance nudges Config.Distance by +/-0.1 towards Config.
// SpeciesTarget based on the species count of the generation as it stood
// before this cycle's Speciate ran, floor-clamped to 0.1 once it would
// otherwise drop under 0.2.
func (p *Population[T, E, P]) adjustDistance() {
	n := len(p.current.Species)
	target := int(p.config.SpeciesTarget)
	if n < target {
		p.config.Distance -= 0.1
	} else if n > target {
		p.config.Distance += 0.1
	}
	if p.config.Distance < 0.2 {
		p.config.Distance = 0.1
	}
}

// Train runs exactly one population-generation cycle: evaluate, optionally
// adjust the distance threshold, speciate, manage stagnation, log if
// debugging, and produce the next generation. ok is false if the cycle
// could not complete because the generation, or its reproduction, ran out
// of members; callers should treat that as fatal for the run.
func (p *Population[T, E, P]) Train(ctx context.Context) (score float64, top T, ok bool) {
	p.current.Optimize(ctx, p.problem, p.evaluator)

	topScore, topGenome, ok := p.current.BestMember()
	if !ok {
		var zero T
		return 0, zero, false
	}
	topCopy := *topGenome

	if p.dynamicDistance {
		p.adjustDistance()
	}
	p.current.Speciate(p.config.Distance, p.env)
	p.stagnation.Observe(topScore, p.current)

	fitnesses := make([]float64, len(p.current.Members))
	for i, m := range p.current.Members {
		fitnesses[i] = m.FitnessScore
	}
	p.stats.Record(fitnesses, len(p.current.Species))

	if p.debug {
		evo.DebugLog(fmt.Sprintf("generation: top=%.6f species=%d stagnation=%d/%d",
			topScore, len(p.current.Species), p.stagnation.CurrentStagnation, p.stagnation.TargetStagnation))
		for _, sp := range p.current.Species {
			evo.DebugLog(sp.DisplayInfo())
		}
	}

	next, ok := p.current.CreateNextGeneration(p.size, p.config, p.env)
	if !ok {
		return topScore, topCopy, false
	}
	p.current = next
	return topScore, topCopy, true
}

// Run drives Train in a loop, calling predicate after every completed
// cycle with the generation's top genome, its score, and a zero-based
// iteration count. It stops and returns the winning genome and the final
// environment state as soon as predicate reports true, or propagates
// ctx's cancellation or evo.ErrEmptyGeneration if either occurs first.
func (p *Population[T, E, P]) Run(ctx context.Context, predicate func(top T, score float64, iteration int) bool) (T, E, error) {
	for iteration := 0; ; iteration++ {
		select {
		case <-ctx.Done():
			var zero T
			return zero, p.env, ctx.Err()
		default:
		}

		score, top, ok := p.Train(ctx)
		if !ok {
			var zero T
			return zero, p.env, evo.ErrEmptyGeneration
		}
		if predicate(top, score, iteration) {
			return top, p.env, nil
		}
	}
}

// Current returns the generation the population is currently holding.
func (p *Population[T, E, P]) Current() *Generation[T, E] { return p.current }

// Env returns the population's shared environment.
func (p *Population[T, E, P]) Env() E { return p.env }
