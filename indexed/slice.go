package indexed

import "fmt"

// Slice returns the sub-dataset [start:stop:step] of ds, with the usual
// slice semantics: start is clamped into [0, Len], stop is clamped to Len,
// and step must be >= 1. An empty result is legal.
func Slice(ds Dataset, start, stop, step int) (Dataset, error) {
	if step < 1 {
		return nil, fmt.Errorf("%w: slice step must be >= 1, got %d", ErrConfig, step)
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: slice start must be >= 0, got %d", ErrConfig, start)
	}
	if stop < start {
		return nil, fmt.Errorf("%w: slice stop %d before start %d", ErrConfig, stop, start)
	}
	n := ds.Len()
	if start > n {
		start = n
	}
	if stop > n {
		stop = n
	}
	length := (stop - start + step - 1) / step
	return &sliceDataset{ds: ds, start: start, step: step, length: length}, nil
}

type sliceDataset struct {
	ds     Dataset
	start  int
	step   int
	length int
}

func (d *sliceDataset) Len() int { return d.length }

func (d *sliceDataset) At(i int) (any, error) {
	if err := checkIndex(i, d.length); err != nil {
		return nil, err
	}
	return d.ds.At(d.start + i*d.step)
}
