package metrics

import (
	"io"
	"time"

	"github.com/Noofbiz/feedBowl/checkpoint"
	"github.com/Noofbiz/feedBowl/stream"
)

// Instrument wraps ds so every Next is timed and counted under the given
// stage name. The wrapper is invisible to checkpoints: State and SetState
// pass straight through to the wrapped dataset, so instrumented and bare
// pipelines accept each other's snapshots.
func Instrument(ds stream.Dataset, stage string, m *Metrics) stream.Dataset {
	return &instrumentedDataset{ds: ds, stage: stage, m: m}
}

type instrumentedDataset struct {
	ds    stream.Dataset
	stage string
	m     *Metrics
}

func (d *instrumentedDataset) Iter() stream.Iterator {
	return &instrumentedIterator{parent: d.ds.Iter(), stage: d.stage, m: d.m}
}

type instrumentedIterator struct {
	parent stream.Iterator
	stage  string
	m      *Metrics
	failed bool
}

func (it *instrumentedIterator) Next() (any, error) {
	start := time.Now()
	v, err := it.parent.Next()
	if err != nil {
		if err != io.EOF && !it.failed {
			it.failed = true
			it.m.Failures.WithLabelValues(it.stage).Inc()
		}
		return nil, err
	}
	it.m.observe(it.stage, time.Since(start))
	return v, nil
}

func (it *instrumentedIterator) State() (*checkpoint.State, error) {
	return it.parent.State()
}

func (it *instrumentedIterator) SetState(st *checkpoint.State) error {
	return it.parent.SetState(st)
}

func (it *instrumentedIterator) Close() error { return it.parent.Close() }
