// Package persist round-trips a Generation to and from a byte stream with
// encoding/gob: each genome is serialized to a byte blob through a
// caller-supplied codec and gob-encoded as []byte alongside the
// generation's plain bookkeeping fields.
package persist

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/pkg/errors"

	"github.com/nkirey/evocore/evo/engine"
)

// GenomeCodec bridges an opaque genome type T to the byte-oriented
// encoding gob needs. Callers supply it because the persist package has
// no way to know how a particular genome encoding serializes itself.
type GenomeCodec[T any] struct {
	Encode func(w io.Writer, g T) error
	Decode func(r io.Reader) (T, error)
}

type containerWire struct {
	Fitness    float64
	HasSpecies bool
	SpeciesID  engine.NicheID
	Data       []byte
}

type nicheWire struct {
	ID                   engine.NicheID
	RepresentativeData   []byte
	MemberIdx            []int
	TotalAdjustedFitness float64
	BestScore            float64
	Age                  uint32
	StagnationAge        uint32
}

// Snapshot writes gen to w as a self-contained gob stream.
func Snapshot[T engine.Genome[T, E], E engine.Environment](w io.Writer, gen *engine.Generation[T, E], codec GenomeCodec[T]) error {
	enc := gob.NewEncoder(w)

	members := make([]containerWire, len(gen.Members))
	index := make(map[*engine.Container[T]]int, len(gen.Members))
	for i, m := range gen.Members {
		var buf bytes.Buffer
		if err := codec.Encode(&buf, *m.Genome); err != nil {
			return errors.Wrapf(err, "failed to encode member %d", i)
		}
		wire := containerWire{Fitness: m.FitnessScore, Data: buf.Bytes()}
		if m.SpeciesID != nil {
			wire.HasSpecies = true
			wire.SpeciesID = *m.SpeciesID
		}
		members[i] = wire
		index[m] = i
	}
	if err := enc.Encode(members); err != nil {
		return errors.Wrap(err, "failed to encode members")
	}

	species := make([]nicheWire, len(gen.Species))
	for i, sp := range gen.Species {
		var buf bytes.Buffer
		if err := codec.Encode(&buf, sp.Representative); err != nil {
			return errors.Wrapf(err, "failed to encode representative of niche %d", sp.ID)
		}
		idxs := make([]int, 0, len(sp.Members))
		for _, m := range sp.Members {
			if idx, ok := index[m]; ok {
				idxs = append(idxs, idx)
			}
		}
		species[i] = nicheWire{
			ID:                   sp.ID,
			RepresentativeData:   buf.Bytes(),
			MemberIdx:            idxs,
			TotalAdjustedFitness: sp.TotalAdjustedFitness,
			BestScore:            sp.BestScore,
			Age:                  sp.Age,
			StagnationAge:        sp.StagnationAge,
		}
	}
	if err := enc.Encode(species); err != nil {
		return errors.Wrap(err, "failed to encode species")
	}
	return nil
}

// Restore reads a Generation previously written with Snapshot.
func Restore[T engine.Genome[T, E], E engine.Environment](r io.Reader, codec GenomeCodec[T]) (*engine.Generation[T, E], error) {
	dec := gob.NewDecoder(r)

	var wireMembers []containerWire
	if err := dec.Decode(&wireMembers); err != nil {
		return nil, errors.Wrap(err, "failed to decode members")
	}
	members := make([]*engine.Container[T], len(wireMembers))
	for i, wm := range wireMembers {
		g, err := codec.Decode(bytes.NewReader(wm.Data))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode member %d", i)
		}
		c := engine.NewContainer(g)
		c.FitnessScore = wm.Fitness
		if wm.HasSpecies {
			id := wm.SpeciesID
			c.SpeciesID = &id
		}
		members[i] = c
	}

	var wireSpecies []nicheWire
	if err := dec.Decode(&wireSpecies); err != nil {
		return nil, errors.Wrap(err, "failed to decode species")
	}
	species := make([]*engine.Niche[T, E], len(wireSpecies))
	for i, ws := range wireSpecies {
		rep, err := codec.Decode(bytes.NewReader(ws.RepresentativeData))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode representative of niche %d", ws.ID)
		}
		sp := engine.NewNiche[T, E](ws.ID, rep)
		sp.TotalAdjustedFitness = ws.TotalAdjustedFitness
		sp.BestScore = ws.BestScore
		sp.Age = ws.Age
		sp.StagnationAge = ws.StagnationAge
		for _, idx := range ws.MemberIdx {
			if idx >= 0 && idx < len(members) {
				sp.Members = append(sp.Members, members[idx])
			}
		}
		species[i] = sp
	}

	gen := engine.NewGeneration[T, E](members, engine.FittestSurvival{}, engine.BiasedRandomParents{})
	gen.Species = species
	for _, sp := range species {
		gen.SeedNicheID(sp.ID)
	}
	return gen, nil
}

// SnapshotPopulation writes a Population's current generation to w. It is a
// thin convenience wrapper: Population itself can't expose a method with
// this signature directly (GenomeCodec lives in this package, and engine
// cannot import persist because persist already imports engine), so the
// operation lives here instead, next to Snapshot.
func SnapshotPopulation[T engine.Genome[T, E], E engine.Environment, P engine.Problem[T]](w io.Writer, pop *engine.Population[T, E, P], codec GenomeCodec[T]) error {
	return Snapshot[T, E](w, pop.Current(), codec)
}

// RestorePopulation reads a generation previously written with
// SnapshotPopulation and installs it as pop's current generation.
func RestorePopulation[T engine.Genome[T, E], E engine.Environment, P engine.Problem[T]](r io.Reader, pop *engine.Population[T, E, P], codec GenomeCodec[T]) error {
	gen, err := Restore[T, E](r, codec)
	if err != nil {
		return err
	}
	pop.PopulateGen(gen)
	return nil
}
