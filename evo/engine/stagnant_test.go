package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingGenocide struct {
	applied *int
}

func (c countingGenocide) Apply(gen GenerationView) { *c.applied++ }

func TestStagnantTriggersAtTarget(t *testing.T) {
	applied := 0
	s := &Stagnant{TargetStagnation: 3, Cleaners: []Genocide{countingGenocide{applied: &applied}}}
	gen := buildTestGeneration()

	s.Observe(1.0, gen) // first observation establishes the baseline score
	s.Observe(1.0, gen) // unchanged score -> stagnation 1
	s.Observe(1.0, gen) // unchanged score -> stagnation 2

	assert.Equal(t, 0, applied, "cleaners should not have fired yet")

	s.Observe(1.0, gen) // unchanged score -> stagnation reaches target(3): fires in the same call
	assert.Equal(t, 1, applied)
	assert.Equal(t, uint32(0), s.CurrentStagnation, "counter resets after firing")
}

func TestStagnantResetsOnImprovement(t *testing.T) {
	s := &Stagnant{TargetStagnation: 5}
	gen := buildTestGeneration()

	s.Observe(1.0, gen)
	s.Observe(1.0, gen)
	assert.Equal(t, uint32(1), s.CurrentStagnation)

	s.Observe(2.0, gen) // improvement resets the counter
	assert.Equal(t, uint32(0), s.CurrentStagnation)
}

func TestStagnantRemainsZeroAcrossThreeDistinctScores(t *testing.T) {
	s := &Stagnant{TargetStagnation: 5}
	gen := buildTestGeneration()

	s.Observe(1.0, gen)
	assert.Equal(t, uint32(0), s.CurrentStagnation)
	s.Observe(2.0, gen)
	assert.Equal(t, uint32(0), s.CurrentStagnation)
	s.Observe(3.0, gen)
	assert.Equal(t, uint32(0), s.CurrentStagnation)
}

func TestStagnantZeroTargetDisablesMonitor(t *testing.T) {
	applied := 0
	s := &Stagnant{TargetStagnation: 0, Cleaners: []Genocide{countingGenocide{applied: &applied}}}
	gen := buildTestGeneration()

	for i := 0; i < 5; i++ {
		s.Observe(1.0, gen) // constant score, yet a zero target never fires
	}

	assert.Equal(t, 0, applied, "a zero stagnation target must disable the cleaners")
	assert.Equal(t, uint32(0), s.CurrentStagnation)
	assert.Equal(t, 1.0, s.PreviousTopScore, "the baseline score still tracks the observations")
}

func TestStagnantExactEqualityRequired(t *testing.T) {
	s := &Stagnant{TargetStagnation: 10}
	gen := buildTestGeneration()

	s.Observe(1.0, gen)
	s.Observe(1.0000000001, gen) // not bit-identical: counts as improvement, not stagnation

	assert.Equal(t, uint32(0), s.CurrentStagnation)
}
