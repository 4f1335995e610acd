// Package gomlxds bridges a feedBowl stream into GoMLX training loops.
//
// Dataset implements gomlx's train.Dataset interface (Name, Yield, Reset)
// on top of any stream.Dataset whose elements are sources.Example values:
// Yield pulls one batch of examples, flattens them and converts inputs and
// labels into gomlx tensors. Reset creates a fresh iterator, starting the
// next epoch at the beginning of the stream.
package gomlxds

import (
	"fmt"
	"io"

	"github.com/Noofbiz/feedBowl/sources"
	"github.com/Noofbiz/feedBowl/stream"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Dataset adapts a stream of sources.Example values to the gomlx
// train.Dataset interface. It is not safe for concurrent Yield calls; gomlx
// training loops drive a dataset from one goroutine.
type Dataset struct {
	name      string
	ds        stream.Dataset
	batchSize int
	it        stream.Iterator
}

// New creates an adapter named name over ds, yielding batches of batchSize
// examples. A final short batch is yielded as-is.
func New(name string, ds stream.Dataset, batchSize int) (*Dataset, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be >= 1, got %d", batchSize)
	}
	return &Dataset{name: name, ds: ds, batchSize: batchSize}, nil
}

// Name implements train.Dataset.
func (d *Dataset) Name() string { return d.name }

// Reset implements train.Dataset. The underlying stream dataset is
// re-iterable, so this simply starts over from a fresh iterator.
func (d *Dataset) Reset() {
	if d.it != nil {
		d.it.Close()
	}
	d.it = d.ds.Iter()
}

// Yield implements train.Dataset. It returns io.EOF when the stream is
// exhausted; call Reset to begin another epoch.
func (d *Dataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.it == nil {
		d.it = d.ds.Iter()
	}
	batch := make([]*sources.Example, 0, d.batchSize)
	for len(batch) < d.batchSize {
		v, err := d.it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		ex, ok := v.(*sources.Example)
		if !ok {
			return nil, nil, nil, fmt.Errorf("stream element is %T, want *sources.Example", v)
		}
		batch = append(batch, ex)
	}
	if len(batch) == 0 {
		return nil, nil, nil, io.EOF
	}
	in, lab, err := batchTensors(batch)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{lab}, nil
}

// batchTensors stacks a batch of examples into one inputs tensor and one
// labels tensor, validating that every example has consistent dimensions.
func batchTensors(batch []*sources.Example) (*tensors.Tensor, *tensors.Tensor, error) {
	inputDim := len(batch[0].Inputs)
	labelDim := len(batch[0].Labels)
	inputs := make([][]float32, len(batch))
	labels := make([][]float32, len(batch))
	for i, ex := range batch {
		if len(ex.Inputs) != inputDim {
			return nil, nil, fmt.Errorf("inconsistent input dimensions at example %d: expected %d, got %d",
				i, inputDim, len(ex.Inputs))
		}
		if len(ex.Labels) != labelDim {
			return nil, nil, fmt.Errorf("inconsistent label dimensions at example %d: expected %d, got %d",
				i, labelDim, len(ex.Labels))
		}
		inputs[i] = ex.Inputs
		labels[i] = ex.Labels
	}
	return tensors.FromAnyValue(inputs), tensors.FromAnyValue(labels), nil
}
