package stream

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

const kindMix = "mix"

// Weighted pairs a dataset with its mixing weight. Weights need not sum to
// one; Mix normalizes them. A weight of zero (or less) is rejected at
// construction.
type Weighted struct {
	Dataset Dataset
	Weight  float64
}

// Mix combines streams of unknown, possibly infinite length: at each step
// the iterator draws the next element from operand i with probability
// proportional to its weight, using an RNG derived from seed. The seed is
// part of the dataset, not the iterator, so the mixing order is reproducible
// run to run and across restores.
//
// When an operand is exhausted it is dropped and the remaining weights are
// renormalized; the mix is exhausted once every operand is. This is the mix
// variant that tolerates upstream Filter, whose output length cannot be
// known in advance; use indexed.Mix when exact proportional lengths matter.
func Mix(parts []Weighted, seed int64) (Dataset, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: mix requires at least one dataset", ErrConfig)
	}
	var total float64
	for i, p := range parts {
		if p.Dataset == nil {
			return nil, fmt.Errorf("%w: mix operand %d is nil", ErrConfig, i)
		}
		if p.Weight <= 0 || math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) {
			return nil, fmt.Errorf("%w: mix weight %d must be positive and finite, got %v", ErrConfig, i, p.Weight)
		}
		total += p.Weight
	}
	d := &mixDataset{
		parts:   make([]Dataset, len(parts)),
		weights: make([]float64, len(parts)),
		seed:    seed,
	}
	for i, p := range parts {
		d.parts[i] = p.Dataset
		d.weights[i] = p.Weight / total
	}
	return d, nil
}

type mixDataset struct {
	parts   []Dataset
	weights []float64
	seed    int64
}

func (d *mixDataset) Iter() Iterator {
	it := &mixIterator{
		weights: d.weights,
		seed:    d.seed,
		rng:     rand.New(rand.NewSource(d.seed)),
		parents: make([]Iterator, len(d.parts)),
		live:    make([]bool, len(d.parts)),
	}
	for i, p := range d.parts {
		it.parents[i] = p.Iter()
		it.live[i] = true
	}
	return it
}

type mixIterator struct {
	parents []Iterator
	weights []float64
	seed    int64
	rng     *rand.Rand
	draws   int64
	live    []bool
	eof     bool
	fail    error
}

func (it *mixIterator) Next() (any, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	if it.eof {
		return nil, io.EOF
	}
	for {
		var total float64
		for i, alive := range it.live {
			if alive {
				total += it.weights[i]
			}
		}
		if total == 0 {
			it.eof = true
			return nil, io.EOF
		}

		// One RNG draw per attempt, counted so a restore can replay
		// the generator to the same point.
		r := it.rng.Float64() * total
		it.draws++
		pick := -1
		for i, alive := range it.live {
			if !alive {
				continue
			}
			r -= it.weights[i]
			pick = i
			if r < 0 {
				break
			}
		}

		v, err := it.parents[pick].Next()
		if err == io.EOF {
			it.live[pick] = false
			continue
		}
		if err != nil {
			it.fail = err
			return nil, err
		}
		return v, nil
	}
}

func (it *mixIterator) State() (*checkpoint.State, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	parents := make([]*checkpoint.State, len(it.parents))
	for i, p := range it.parents {
		ps, err := p.State()
		if err != nil {
			return nil, err
		}
		parents[i] = ps
	}
	return &checkpoint.State{
		Kind:    kindMix,
		Seed:    it.seed,
		Draws:   it.draws,
		Live:    append([]bool(nil), it.live...),
		Parents: parents,
	}, nil
}

func (it *mixIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindMix, len(it.parents)); err != nil {
		return err
	}
	if st.Seed != it.seed {
		return fmt.Errorf("%w: mix seed %d in snapshot, dataset built with %d",
			checkpoint.ErrMismatch, st.Seed, it.seed)
	}
	if len(st.Live) != len(it.parents) {
		return fmt.Errorf("%w: mix snapshot tracks %d operands, graph has %d",
			checkpoint.ErrMismatch, len(st.Live), len(it.parents))
	}
	for i, p := range it.parents {
		if err := p.SetState(st.Parents[i]); err != nil {
			return err
		}
	}
	// Reposition the RNG by replaying the recorded number of draws.
	it.rng = rand.New(rand.NewSource(it.seed))
	for i := int64(0); i < st.Draws; i++ {
		it.rng.Float64()
	}
	it.draws = st.Draws
	it.live = append([]bool(nil), st.Live...)
	return nil
}

func (it *mixIterator) Close() error {
	var first error
	for _, p := range it.parents {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
