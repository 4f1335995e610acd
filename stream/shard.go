package stream

import (
	"fmt"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

const kindShard = "shard"

// Shard returns the index-th of count disjoint partitions of ds: the
// iterator yields every count-th upstream element starting at offset index.
// Across all index values the shards cover the stream exactly once.
//
// Composition order with Mix matters: sharding a mixed stream partitions
// mixed positions, while mixing per-operand shards partitions each operand
// first. This package composes exactly as written by the caller; pick one
// order per pipeline and keep it fixed.
func Shard(ds Dataset, index, count int) (Dataset, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: shard count must be >= 1, got %d", ErrConfig, count)
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: shard index %d not in [0, %d)", ErrConfig, index, count)
	}
	return &shardDataset{ds: ds, index: index, count: count}, nil
}

type shardDataset struct {
	ds    Dataset
	index int
	count int
}

func (d *shardDataset) Iter() Iterator {
	return &shardIterator{parent: d.ds.Iter(), index: d.index, count: d.count}
}

type shardIterator struct {
	parent  Iterator
	index   int
	count   int
	yielded int64
}

func (it *shardIterator) Next() (any, error) {
	skip := it.count - 1
	if it.yielded == 0 {
		skip = it.index
	}
	for i := 0; i < skip; i++ {
		if _, err := it.parent.Next(); err != nil {
			// io.EOF here means the stream ended inside the gap
			// before this shard's next element.
			return nil, err
		}
	}
	v, err := it.parent.Next()
	if err != nil {
		return nil, err
	}
	it.yielded++
	return v, nil
}

func (it *shardIterator) State() (*checkpoint.State, error) {
	ps, err := it.parent.State()
	if err != nil {
		return nil, err
	}
	return &checkpoint.State{Kind: kindShard, Pos: it.yielded, Parents: []*checkpoint.State{ps}}, nil
}

func (it *shardIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindShard, 1); err != nil {
		return err
	}
	it.yielded = st.Pos
	return it.parent.SetState(st.Parents[0])
}

func (it *shardIterator) Close() error { return it.parent.Close() }
