package stream

import (
	"io"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

const kindProducer = "producer"

// Producer is a native sequential source supplied by the caller: a lazy,
// finite or infinite sequence of elements. Next returns io.EOF at the end of
// the stream. A producer is not required to be safe for concurrent calls;
// the pipeline drives each one from a single goroutine.
type Producer interface {
	Next() (any, error)
}

// ProducerFunc adapts a plain function to the Producer interface.
type ProducerFunc func() (any, error)

func (f ProducerFunc) Next() (any, error) { return f() }

// FromProducer wraps a sequential source as a Dataset. factory must return a
// fresh producer positioned at the beginning each time it is called; that is
// what makes the dataset re-iterable and lets a checkpoint restore by
// replaying and discarding the consumed prefix. Restoring a deeply consumed
// producer therefore costs O(consumed) producer calls.
func FromProducer(factory func() Producer) Dataset {
	return &producerDataset{factory: factory}
}

type producerDataset struct {
	factory func() Producer
}

func (d *producerDataset) Iter() Iterator {
	return &producerIterator{factory: d.factory}
}

type producerIterator struct {
	factory func() Producer
	p       Producer
	pos     int64
	skip    int64
	eof     bool
	fail    error
}

func (it *producerIterator) Next() (any, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	if it.eof {
		return nil, io.EOF
	}
	if it.p == nil {
		it.p = it.factory()
		// Replay the prefix consumed before the checkpoint was taken.
		for ; it.skip > 0; it.skip-- {
			if _, err := it.pull(); err != nil {
				return nil, err
			}
		}
	}
	v, err := it.pull()
	if err != nil {
		return nil, err
	}
	it.pos++
	return v, nil
}

func (it *producerIterator) pull() (any, error) {
	v, err := it.p.Next()
	if err == io.EOF {
		it.eof = true
		return nil, io.EOF
	}
	if err != nil {
		it.fail = err
		return nil, err
	}
	return v, nil
}

func (it *producerIterator) State() (*checkpoint.State, error) {
	if it.fail != nil {
		return nil, it.fail
	}
	return &checkpoint.State{Kind: kindProducer, Pos: it.pos}, nil
}

func (it *producerIterator) SetState(st *checkpoint.State) error {
	if err := st.Expect(kindProducer, 0); err != nil {
		return err
	}
	it.pos = st.Pos
	it.skip = st.Pos
	return nil
}

func (it *producerIterator) Close() error { return nil }
