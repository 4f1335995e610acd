// Package indexed implements the random-access tier of the feedBowl data
// pipeline: a lazy tree of transformation nodes over finite, indexable
// sources.
//
// Datasets on this tier have a length that is known without reading any
// element, and a pure At(i) accessor that evaluates the node chain only for
// the requested index. Nothing is materialized at construction time; building
// a node is O(1).
//
// Because every element is addressable, this tier supports deterministic
// shuffling, slicing, weighted mixing and sharding with exact lengths. What
// it cannot support is filtering: a filter's output length is unknowable
// without evaluating elements, so Filter deliberately does not exist on this
// tier. Convert to the sequential tier (package stream) to filter.
//
// All datasets in this package are safe for concurrent At calls as long as
// the underlying sources are, which is a precondition on Source.
package indexed

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports an index outside [0, Len).
	ErrOutOfRange = errors.New("index out of range")

	// ErrConfig reports a malformed dataset construction (bad weights,
	// bad shard bounds, bad slice parameters, ...). It is always returned
	// from constructors, never surfaced later during element access.
	ErrConfig = errors.New("invalid dataset configuration")
)

// Source is a finite, indexable collection supplied by the caller. The
// pipeline holds a read-only reference and may call At from multiple
// goroutines concurrently, so implementations must be safe for concurrent
// readers.
type Source interface {
	Len() int
	At(i int) (any, error)
}

// Dataset is a lazy random-access transformation node. Len is computable
// without evaluating elements; At(i) recursively evaluates the node chain for
// index i only. For fixed construction parameters (seed, weights, shard
// bounds) both are deterministic and independent of the order in which other
// indices are accessed.
type Dataset interface {
	Len() int
	At(i int) (any, error)
}

// FromSource wraps an indexable source as a Dataset.
func FromSource(src Source) Dataset {
	return &sourceDataset{src: src}
}

type sourceDataset struct {
	src Source
}

func (d *sourceDataset) Len() int { return d.src.Len() }

func (d *sourceDataset) At(i int) (any, error) {
	if i < 0 || i >= d.src.Len() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, d.src.Len())
	}
	return d.src.At(i)
}

// checkIndex validates i against length n using the shared out-of-range
// error. Transform nodes call this before touching their upstream.
func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, n)
	}
	return nil
}
