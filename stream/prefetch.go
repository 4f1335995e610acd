package stream

import (
	"fmt"
	"io"
	"sync"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

const kindPrefetch = "prefetch"

// Prefetch decouples upstream production from downstream consumption: a
// background goroutine pulls from ds into a bounded buffer of size n, so
// upstream I/O overlaps with whatever the consumer does between Next calls.
// The consumer blocks only when the buffer is empty. If the consumer stops
// reading, production stops once n elements are buffered.
//
// Element order is exactly the upstream order. A checkpoint records the
// upstream position of the last element delivered to the consumer, so
// buffered look-ahead is recomputed on restore rather than serialized.
func Prefetch(ds Dataset, n int) (Dataset, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: prefetch buffer size must be >= 1, got %d", ErrConfig, n)
	}
	return &prefetchDataset{ds: ds, n: n}, nil
}

type prefetchDataset struct {
	ds Dataset
	n  int
}

func (d *prefetchDataset) Iter() Iterator {
	// The filler always holds one element in hand while blocked on a full
	// channel, so a channel of n-1 keeps the outstanding total at n.
	return &prefetchIterator{
		parent: d.ds.Iter(),
		items:  make(chan fetchItem, d.n-1),
		quit:   make(chan struct{}),
	}
}

type fetchItem struct {
	v   any
	err error
	st  *checkpoint.State
}

type prefetchIterator struct {
	parent Iterator
	items  chan fetchItem
	quit   chan struct{}

	closeOnce sync.Once

	mu        sync.Mutex
	started   bool
	closed    bool
	delivered int64
	last      *checkpoint.State
	eof       bool
	fail      error
}

// start launches the filler. Called with mu held, before the first element
// is requested, so the parent snapshot below cannot race with the filler.
func (it *prefetchIterator) start() error {
	ps, err := it.parent.State()
	if err != nil {
		return err
	}
	it.last = ps
	it.started = true
	go it.fill()
	return nil
}

// fill pulls upstream elements into the buffer until a terminal condition
// or until the iterator is closed. The filler owns the parent iterator once
// started and is the only goroutine allowed to touch it; it closes the
// parent on every exit path.
func (it *prefetchIterator) fill() {
	defer it.parent.Close()
	for {
		select {
		case <-it.quit:
			return
		default:
		}
		item := fetchItem{}
		item.v, item.err = it.parent.Next()
		if item.err == nil {
			item.st, item.err = it.parent.State()
		}
		select {
		case it.items <- item:
		case <-it.quit:
			return
		}
		if item.err != nil {
			return
		}
	}
}

func (it *prefetchIterator) Next() (any, error) {
	it.mu.Lock()
	if it.fail != nil {
		defer it.mu.Unlock()
		return nil, it.fail
	}
	if it.eof {
		defer it.mu.Unlock()
		return nil, io.EOF
	}
	if it.closed {
		defer it.mu.Unlock()
		return nil, ErrClosed
	}
	if !it.started {
		if err := it.start(); err != nil {
			it.fail = err
			it.mu.Unlock()
			return nil, err
		}
	}
	it.mu.Unlock()

	select {
	case item := <-it.items:
		it.mu.Lock()
		defer it.mu.Unlock()
		if item.err == io.EOF {
			it.eof = true
			return nil, io.EOF
		}
		if item.err != nil {
			it.fail = item.err
			return nil, item.err
		}
		it.delivered++
		it.last = item.st
		return item.v, nil
	case <-it.quit:
		return nil, ErrClosed
	}
}

func (it *prefetchIterator) State() (*checkpoint.State, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.fail != nil {
		return nil, it.fail
	}
	ps := it.last
	if !it.started {
		// Nothing consumed yet; snapshot the parent directly.
		var err error
		ps, err = it.parent.State()
		if err != nil {
			return nil, err
		}
	}
	return &checkpoint.State{Kind: kindPrefetch, Pos: it.delivered, Parents: []*checkpoint.State{ps}}, nil
}

func (it *prefetchIterator) SetState(st *checkpoint.State) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.started {
		return fmt.Errorf("%w: cannot restore an active prefetch iterator", ErrConfig)
	}
	if err := st.Expect(kindPrefetch, 1); err != nil {
		return err
	}
	if err := it.parent.SetState(st.Parents[0]); err != nil {
		return err
	}
	it.delivered = st.Pos
	return nil
}

func (it *prefetchIterator) Close() error {
	it.closeOnce.Do(func() {
		it.mu.Lock()
		it.closed = true
		started := it.started
		it.mu.Unlock()
		close(it.quit)
		if !started {
			// No filler owns the parent yet.
			it.parent.Close()
		}
	})
	return nil
}
