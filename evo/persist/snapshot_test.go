package persist

import (
	"bytes"
	"encoding/gob"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkirey/evocore/evo/engine"
)

type vecEnv struct{}

func (vecEnv) Reset() {}

type vecGenome []float64

func (g vecGenome) Crossover(other vecGenome, env vecEnv, crossoverRate float64) (vecGenome, bool) {
	child := make(vecGenome, len(g))
	for i := range g {
		child[i] = (g[i] + other[i]) / 2
	}
	return child, true
}

func (g vecGenome) Distance(other vecGenome, env vecEnv) float64 {
	sum := 0.0
	for i := range g {
		d := g[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

var vecCodec = GenomeCodec[vecGenome]{
	Encode: func(w io.Writer, g vecGenome) error {
		return gob.NewEncoder(w).Encode([]float64(g))
	},
	Decode: func(r io.Reader) (vecGenome, error) {
		var v []float64
		if err := gob.NewDecoder(r).Decode(&v); err != nil {
			return nil, err
		}
		return vecGenome(v), nil
	},
}

func buildFixtureGeneration() *engine.Generation[vecGenome, vecEnv] {
	members := []*engine.Container[vecGenome]{
		engine.NewContainer(vecGenome{0, 0}),
		engine.NewContainer(vecGenome{0.1, 0.1}),
		engine.NewContainer(vecGenome{5, 5}),
	}
	members[0].FitnessScore = 1.0
	members[1].FitnessScore = 2.0
	members[2].FitnessScore = 3.0

	gen := engine.NewGeneration[vecGenome, vecEnv](members, engine.FittestSurvival{}, engine.BiasedRandomParents{})
	gen.Speciate(1.0, vecEnv{})
	return gen
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	gen := buildFixtureGeneration()

	var buf bytes.Buffer
	require.NoError(t, Snapshot[vecGenome, vecEnv](&buf, gen, vecCodec))

	restored, err := Restore[vecGenome, vecEnv](&buf, vecCodec)
	require.NoError(t, err)

	require.Len(t, restored.Members, len(gen.Members))
	for i, m := range gen.Members {
		assert.Equal(t, *m.Genome, *restored.Members[i].Genome)
		assert.Equal(t, m.FitnessScore, restored.Members[i].FitnessScore)
		require.NotNil(t, restored.Members[i].SpeciesID)
		require.NotNil(t, m.SpeciesID)
		assert.Equal(t, *m.SpeciesID, *restored.Members[i].SpeciesID)
	}

	require.Len(t, restored.Species, len(gen.Species))
	for i, sp := range gen.Species {
		assert.Equal(t, sp.ID, restored.Species[i].ID)
		assert.Equal(t, sp.BestScore, restored.Species[i].BestScore)
		assert.Len(t, restored.Species[i].Members, len(sp.Members))
	}
}

func TestRestoreSeedsNicheIDPastRestoredMax(t *testing.T) {
	gen := buildFixtureGeneration()
	var buf bytes.Buffer
	require.NoError(t, Snapshot[vecGenome, vecEnv](&buf, gen, vecCodec))

	restored, err := Restore[vecGenome, vecEnv](&buf, vecCodec)
	require.NoError(t, err)

	// A tight threshold forces the member that is not a niche representative
	// ({0.1, 0.1}) into a fresh niche. None of the
	// freshly minted IDs may collide with an ID a restored niche already
	// holds, since SeedNicheID must have advanced past the restored max.
	restored.Speciate(0.0001, vecEnv{})

	seen := make(map[engine.NicheID]bool, len(restored.Species))
	for _, sp := range restored.Species {
		assert.False(t, seen[sp.ID], "duplicate niche ID %d after restore", sp.ID)
		seen[sp.ID] = true
	}
}

func TestSnapshotPopulationRoundTrip(t *testing.T) {
	pop := engine.New[vecGenome, vecEnv, fixtureProblem]().
		Size(3).
		Constrain(vecEnv{}).
		Impose(fixtureProblem{}).
		PopulateGen(buildFixtureGeneration())

	var buf bytes.Buffer
	require.NoError(t, SnapshotPopulation[vecGenome, vecEnv, fixtureProblem](&buf, pop, vecCodec))

	restored := engine.New[vecGenome, vecEnv, fixtureProblem]().Size(3)
	require.NoError(t, RestorePopulation[vecGenome, vecEnv, fixtureProblem](&buf, restored, vecCodec))

	assert.Len(t, restored.Current().Members, 3)
}

type fixtureProblem struct{}

func (fixtureProblem) Solve(g *vecGenome) float64 { return 0 }
