package indexed

import "fmt"

// Shard returns the index-th of count disjoint partitions of ds: element i
// of the shard is global element i*count + index. Across all index values
// the shards cover the dataset exactly once, with no overlap and no gap.
func Shard(ds Dataset, index, count int) (Dataset, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: shard count must be >= 1, got %d", ErrConfig, count)
	}
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: shard index %d not in [0, %d)", ErrConfig, index, count)
	}
	n := ds.Len()
	length := 0
	if n > index {
		length = (n - index + count - 1) / count
	}
	return &shardDataset{ds: ds, index: index, count: count, length: length}, nil
}

type shardDataset struct {
	ds     Dataset
	index  int
	count  int
	length int
}

func (d *shardDataset) Len() int { return d.length }

func (d *shardDataset) At(i int) (any, error) {
	if err := checkIndex(i, d.length); err != nil {
		return nil, err
	}
	return d.ds.At(i*d.count + d.index)
}
