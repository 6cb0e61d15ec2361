package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialAndParallelEvaluatorsAgree(t *testing.T) {
	rand.Seed(31)
	target := vecGenome{0.5, -0.5, 1}
	problem := vecProblem{target: target}

	seqMembers := newVecMembers(50, 3, target)
	parMembers := make([]*Container[vecGenome], len(seqMembers))
	for i, m := range seqMembers {
		parMembers[i] = NewContainer(*m.Genome)
		m.FitnessScore = 0
	}

	SequentialEvaluator[vecGenome]{}.Evaluate(context.Background(), problem, seqMembers)
	ParallelEvaluator[vecGenome]{Workers: 4}.Evaluate(context.Background(), problem, parMembers)

	for i := range seqMembers {
		assert.Equal(t, seqMembers[i].FitnessScore, parMembers[i].FitnessScore,
			"member %d scored differently under the two evaluators", i)
	}
}

func TestParallelEvaluatorDefaultsWorkerCount(t *testing.T) {
	members := newVecMembers(10, 2, vecGenome{0, 0})
	require.NotPanics(t, func() {
		ParallelEvaluator[vecGenome]{}.Evaluate(context.Background(), vecProblem{target: vecGenome{0, 0}}, members)
	})
	for _, m := range members {
		assert.NotZero(t, m.FitnessScore)
	}
}

func TestSequentialEvaluatorStopsOnCancelledContext(t *testing.T) {
	members := newVecMembers(10, 2, vecGenome{0, 0})
	for _, m := range members {
		m.FitnessScore = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	SequentialEvaluator[vecGenome]{}.Evaluate(ctx, vecProblem{target: vecGenome{0, 0}}, members)

	for _, m := range members {
		assert.Zero(t, m.FitnessScore, "no member should be scored once the context is cancelled")
	}
}
