package stream

import "github.com/Noofbiz/feedBowl/checkpoint"

const kindFilter = "filter"

// Filter returns a dataset containing only the elements of ds for which
// pred is true. Rejected elements are skipped transparently: one Next on the
// filtered iterator may consume any number of upstream elements before
// yielding or reporting exhaustion. This transform only exists on the
// sequential tier; a filtered length cannot be known in advance.
func Filter(ds Dataset, pred FilterFunc) Dataset {
	return &filterDataset{ds: ds, pred: pred}
}

type filterDataset struct {
	ds   Dataset
	pred FilterFunc
}

func (d *filterDataset) Iter() Iterator {
	return &filterIterator{parent: d.ds.Iter(), pred: d.pred}
}

type filterIterator struct {
	parent Iterator
	pred   FilterFunc
	fail   error
}

func (it *filterIterator) Next() (any, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	for {
		v, err := it.parent.Next()
		if err != nil {
			return nil, err
		}
		keep, err := it.pred(v)
		if err != nil {
			it.fail = err
			return nil, err
		}
		if keep {
			return v, nil
		}
	}
}

func (it *filterIterator) State() (*checkpoint.State, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	ps, err := it.parent.State()
	if err != nil {
		return nil, err
	}
	return &checkpoint.State{Kind: kindFilter, Parents: []*checkpoint.State{ps}}, nil
}

func (it *filterIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindFilter, 1); err != nil {
		return err
	}
	return it.parent.SetState(st.Parents[0])
}

func (it *filterIterator) Close() error { return it.parent.Close() }
