package stream

import "github.com/Noofbiz/feedBowl/checkpoint"

const kindMap = "map"

// Map returns a dataset that applies fn to every element of ds.
func Map(ds Dataset, fn MapFunc) Dataset {
	return &mapDataset{ds: ds, fn: fn}
}

type mapDataset struct {
	ds Dataset
	fn MapFunc
}

func (d *mapDataset) Iter() Iterator {
	return &mapIterator{parent: d.ds.Iter(), fn: d.fn}
}

type mapIterator struct {
	parent Iterator
	fn     MapFunc
	fail   error
}

func (it *mapIterator) Next() (any, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	v, err := it.parent.Next()
	if err != nil {
		return nil, err
	}
	out, err := it.fn(v)
	if err != nil {
		it.fail = err
		return nil, err
	}
	return out, nil
}

func (it *mapIterator) State() (*checkpoint.State, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	ps, err := it.parent.State()
	if err != nil {
		return nil, err
	}
	return &checkpoint.State{Kind: kindMap, Parents: []*checkpoint.State{ps}}, nil
}

func (it *mapIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindMap, 1); err != nil {
		return err
	}
	return it.parent.SetState(st.Parents[0])
}

func (it *mapIterator) Close() error { return it.parent.Close() }
