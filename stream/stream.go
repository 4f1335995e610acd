// Package stream implements the sequential tier of the feedBowl data
// pipeline: lazy, possibly unbounded element streams with checkpointable
// iterators.
//
// A stream.Dataset is an immutable description of a transformation chain;
// Iter creates a fresh, independently positioned iterator over it. Iterators
// report exhaustion with io.EOF, keep both exhaustion and failures sticky,
// and can snapshot their exact position as a checkpoint.State tree that a
// fresh iterator restores via SetState.
//
// Unlike the random-access tier (package indexed), this tier supports
// Filter, whose output length is unknowable in advance, along with the
// streaming forms of map, batch, shard and weighted mixing, plus the
// parallel execution stages Prefetch and ParallelMap.
package stream

import (
	"errors"
	"io"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

var (
	// ErrConfig reports a malformed dataset construction. Surfaced from
	// constructors and from SetState misuse, never mid-iteration.
	ErrConfig = errors.New("invalid dataset configuration")

	// ErrClosed is returned by Next after the iterator has been closed.
	ErrClosed = errors.New("iterator is closed")
)

// Dataset is a lazy sequential transformation node. Datasets are immutable
// and re-iterable: every Iter call starts logically at the beginning.
type Dataset interface {
	Iter() Iterator
}

// Iterator is a stateful cursor over one Dataset.
//
// Next returns the next element, io.EOF once the stream is exhausted, or the
// failure that stopped it. Both conditions are sticky: further calls
// deterministically re-report them.
//
// State snapshots the exact resumption position; it is valid before the
// first element, mid-stream and after exhaustion, and returns the original
// failure on a failed iterator. SetState repositions a fresh iterator to a
// snapshot; it must be called before the first Next and fails with a
// checkpoint mismatch when the snapshot belongs to a structurally different
// graph.
//
// Close releases any background work (parallel stages stop dispatching and
// abandon in-flight elements). It is idempotent and never blocks on stuck
// upstream I/O.
type Iterator interface {
	Next() (any, error)
	State() (*checkpoint.State, error)
	SetState(st *checkpoint.State) error
	Close() error
}

// MapFunc transforms one element. Below a ParallelMap stage it is invoked
// from multiple worker goroutines and must be safe for concurrent calls.
type MapFunc func(v any) (any, error)

// FilterFunc reports whether an element passes the filter.
type FilterFunc func(v any) (bool, error)

// Restore creates a fresh iterator over ds positioned at the snapshot st.
// The returned iterator will produce exactly the sequence the checkpointed
// iterator had still to produce.
func Restore(ds Dataset, st *checkpoint.State) (Iterator, error) {
	it := ds.Iter()
	if err := it.SetState(st); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// Collect drains it and returns every remaining element. Exhaustion is the
// success case; any other error is returned with the elements read so far.
func Collect(it Iterator) ([]any, error) {
	var out []any
	for {
		v, err := it.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
