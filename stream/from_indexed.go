package stream

import (
	"fmt"
	"io"

	"github.com/Noofbiz/feedBowl/checkpoint"
	"github.com/Noofbiz/feedBowl/indexed"
)

const kindIndexed = "indexed"

// FromIndexed bridges a random-access dataset into the sequential tier,
// imposing ascending index order 0..Len-1. Apply indexed.Shuffle upstream to
// iterate in a shuffled order instead.
func FromIndexed(ds indexed.Dataset) Dataset {
	return &indexedDataset{ds: ds}
}

type indexedDataset struct {
	ds indexed.Dataset
}

func (d *indexedDataset) Iter() Iterator {
	return &indexedIterator{ds: d.ds}
}

type indexedIterator struct {
	ds   indexed.Dataset
	pos  int64
	fail error
}

func (it *indexedIterator) Next() (any, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	if it.pos >= int64(it.ds.Len()) {
		return nil, io.EOF
	}
	v, err := it.ds.At(int(it.pos))
	if err != nil {
		it.fail = err
		return nil, err
	}
	it.pos++
	return v, nil
}

func (it *indexedIterator) State() (*checkpoint.State, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	return &checkpoint.State{Kind: kindIndexed, Pos: it.pos}, nil
}

func (it *indexedIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindIndexed, 0); err != nil {
		return err
	}
	if st.Pos < 0 || st.Pos > int64(it.ds.Len()) {
		return fmt.Errorf("%w: position %d outside dataset of length %d",
			checkpoint.ErrMismatch, st.Pos, it.ds.Len())
	}
	it.pos = st.Pos
	return nil
}

func (it *indexedIterator) Close() error { return nil }
