package indexed

// MapFunc transforms one element into another. It must be deterministic for
// the pipeline's ordering guarantees to hold, and safe for concurrent calls
// when used below a parallel stage.
type MapFunc func(v any) (any, error)

// Map returns a dataset that applies fn to every element of ds on access.
// Length is unchanged; fn runs only for the indices actually requested.
func Map(ds Dataset, fn MapFunc) Dataset {
	return &mapDataset{ds: ds, fn: fn}
}

type mapDataset struct {
	ds Dataset
	fn MapFunc
}

func (d *mapDataset) Len() int { return d.ds.Len() }

func (d *mapDataset) At(i int) (any, error) {
	v, err := d.ds.At(i)
	if err != nil {
		return nil, err
	}
	return d.fn(v)
}
