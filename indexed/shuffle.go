package indexed

import (
	"math/rand"
	"sync"
)

// Shuffle returns a dataset with the same length as ds whose element i is
// ds.At(perm(i)) for a deterministic bijection perm over [0, Len) derived
// from seed. The same seed always yields the same order, on any machine and
// regardless of which indices were accessed before.
//
// The permutation is computed once, lazily, on the first access. For the
// dataset sizes this package targets the O(Len) index array is acceptable;
// nothing is materialized if the shuffled dataset is never read.
func Shuffle(ds Dataset, seed int64) Dataset {
	return &shuffleDataset{ds: ds, seed: seed}
}

type shuffleDataset struct {
	ds   Dataset
	seed int64

	once sync.Once
	perm []int
}

func (d *shuffleDataset) Len() int { return d.ds.Len() }

func (d *shuffleDataset) At(i int) (any, error) {
	if err := checkIndex(i, d.ds.Len()); err != nil {
		return nil, err
	}
	d.once.Do(func() {
		rng := rand.New(rand.NewSource(d.seed))
		d.perm = rng.Perm(d.ds.Len())
	})
	return d.ds.At(d.perm[i])
}
