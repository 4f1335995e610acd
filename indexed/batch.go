package indexed

import "fmt"

// Batch groups consecutive elements of ds into []any batches of size n.
// When dropRemainder is true a final short batch is discarded; otherwise it
// is kept. Batch elements are assembled on access, one upstream At per
// member.
func Batch(ds Dataset, n int, dropRemainder bool) (Dataset, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: batch size must be >= 1, got %d", ErrConfig, n)
	}
	upstream := ds.Len()
	length := upstream / n
	if !dropRemainder && upstream%n != 0 {
		length++
	}
	return &batchDataset{ds: ds, n: n, length: length}, nil
}

type batchDataset struct {
	ds     Dataset
	n      int
	length int
}

func (d *batchDataset) Len() int { return d.length }

func (d *batchDataset) At(i int) (any, error) {
	if err := checkIndex(i, d.length); err != nil {
		return nil, err
	}
	lo := i * d.n
	hi := lo + d.n
	if upstream := d.ds.Len(); hi > upstream {
		hi = upstream
	}
	batch := make([]any, 0, hi-lo)
	for j := lo; j < hi; j++ {
		v, err := d.ds.At(j)
		if err != nil {
			return nil, err
		}
		batch = append(batch, v)
	}
	return batch, nil
}
