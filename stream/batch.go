package stream

import (
	"fmt"
	"io"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

const kindBatch = "batch"

// Batch groups consecutive elements of ds into []any batches of size n.
// When the stream ends mid-batch the partial batch is yielded unless
// dropRemainder is set. A whole batch is assembled within a single Next
// call, so checkpoints never capture a half-built batch.
func Batch(ds Dataset, n int, dropRemainder bool) (Dataset, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: batch size must be >= 1, got %d", ErrConfig, n)
	}
	return &batchDataset{ds: ds, n: n, drop: dropRemainder}, nil
}

type batchDataset struct {
	ds   Dataset
	n    int
	drop bool
}

func (d *batchDataset) Iter() Iterator {
	return &batchIterator{parent: d.ds.Iter(), n: d.n, drop: d.drop}
}

type batchIterator struct {
	parent Iterator
	n      int
	drop   bool
}

func (it *batchIterator) Next() (any, error) {
	batch := make([]any, 0, it.n)
	for len(batch) < it.n {
		v, err := it.parent.Next()
		if err == io.EOF {
			if len(batch) == 0 || it.drop {
				return nil, io.EOF
			}
			return batch, nil
		}
		if err != nil {
			return nil, err
		}
		batch = append(batch, v)
	}
	return batch, nil
}

func (it *batchIterator) State() (*checkpoint.State, error) {
	ps, err := it.parent.State()
	if err != nil {
		return nil, err
	}
	return &checkpoint.State{Kind: kindBatch, Parents: []*checkpoint.State{ps}}, nil
}

func (it *batchIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindBatch, 1); err != nil {
		return err
	}
	return it.parent.SetState(st.Parents[0])
}

func (it *batchIterator) Close() error { return it.parent.Close() }
