package stream

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/Noofbiz/feedBowl/checkpoint"
)

const kindParallelMap = "pmap"

// Options configures a ParallelMap stage.
type Options struct {
	// Workers is the fixed size of the worker pool. Defaults to
	// runtime.NumCPU() when <= 0.
	Workers int

	// BufferSize caps how many elements may be in flight (pulled from
	// upstream but not yet delivered downstream). This is the stage's
	// backpressure bound: when the consumer stops reading, at most
	// BufferSize elements are held and the workers go idle. Defaults to
	// twice the worker count when <= 0.
	BufferSize int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.BufferSize <= 0 {
		o.BufferSize = 2 * o.Workers
	}
	if o.BufferSize < o.Workers {
		o.BufferSize = o.Workers
	}
	return o
}

// ParallelMap applies fn to the elements of ds on a fixed pool of worker
// goroutines, overlapping per-element transformation cost with upstream I/O
// and downstream consumption.
//
// A single dispatcher pulls elements from the upstream iterator in order,
// tags each with a sequence number and hands it to the pool; results are
// reassembled in sequence before release, so the consumer sees exactly the
// order a single-threaded pipeline would produce, for any worker count.
//
// fn must be safe for concurrent calls. A failure while computing element k
// is delivered when the consumer requests element k, never earlier and never
// out of band; the iterator then stops dispatching and re-reports that
// failure forever.
func ParallelMap(ds Dataset, fn MapFunc, opts Options) (Dataset, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: parallel map function must not be nil", ErrConfig)
	}
	return &pmapDataset{ds: ds, fn: fn, opts: opts.withDefaults()}, nil
}

type pmapDataset struct {
	ds   Dataset
	fn   MapFunc
	opts Options
}

func (d *pmapDataset) Iter() Iterator {
	it := &pmapIterator{
		parent:  d.ds.Iter(),
		fn:      d.fn,
		opts:    d.opts,
		jobs:    make(chan pmapJob),
		tickets: make(chan struct{}, d.opts.BufferSize),
		quit:    make(chan struct{}),
		results: make(map[int64]pmapResult),
	}
	it.ready = sync.NewCond(&it.mu)
	return it
}

type pmapJob struct {
	seq int64
	v   any
	st  *checkpoint.State
}

type pmapResult struct {
	v   any
	err error
	st  *checkpoint.State
}

type pmapIterator struct {
	parent Iterator
	fn     MapFunc
	opts   Options

	jobs    chan pmapJob
	tickets chan struct{}
	quit    chan struct{}

	closeOnce sync.Once

	mu      sync.Mutex
	ready   *sync.Cond
	results map[int64]pmapResult
	nextSeq int64

	started   bool
	closed    bool
	delivered int64
	last      *checkpoint.State
	eof       bool
	fail      error
}

// start launches the dispatcher and the worker pool. Called with mu held.
func (it *pmapIterator) start() error {
	ps, err := it.parent.State()
	if err != nil {
		return err
	}
	it.last = ps
	it.started = true
	for i := 0; i < it.opts.Workers; i++ {
		go it.worker()
	}
	go it.dispatch()
	return nil
}

// dispatch pulls upstream elements in order and feeds the pool. Each pull is
// gated on a ticket so no more than BufferSize elements are ever in flight.
// The dispatcher owns the parent iterator once started and closes it on
// every exit path; a terminal upstream condition (io.EOF or an error) is
// placed into the result sequence so the consumer hits it exactly in order.
func (it *pmapIterator) dispatch() {
	defer close(it.jobs)
	defer it.parent.Close()
	for seq := int64(0); ; seq++ {
		select {
		case it.tickets <- struct{}{}:
		case <-it.quit:
			return
		}
		v, err := it.parent.Next()
		var st *checkpoint.State
		if err == nil {
			st, err = it.parent.State()
		}
		if err != nil {
			it.deliver(seq, pmapResult{err: err})
			return
		}
		select {
		case it.jobs <- pmapJob{seq: seq, v: v, st: st}:
		case <-it.quit:
			return
		}
	}
}

func (it *pmapIterator) worker() {
	for job := range it.jobs {
		v, err := it.fn(job.v)
		it.deliver(job.seq, pmapResult{v: v, err: err, st: job.st})
	}
}

func (it *pmapIterator) deliver(seq int64, res pmapResult) {
	it.mu.Lock()
	it.results[seq] = res
	it.mu.Unlock()
	it.ready.Broadcast()
}

func (it *pmapIterator) Next() (any, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.fail != nil {
		return nil, it.fail
	}
	if it.eof {
		return nil, io.EOF
	}
	if it.closed {
		return nil, ErrClosed
	}
	if !it.started {
		if err := it.start(); err != nil {
			it.fail = err
			return nil, err
		}
	}
	for {
		if res, ok := it.results[it.nextSeq]; ok {
			delete(it.results, it.nextSeq)
			if res.err == io.EOF {
				it.eof = true
				return nil, io.EOF
			}
			if res.err != nil {
				// Abort the rest of the stream: stop dispatch,
				// latch the failure.
				it.fail = res.err
				it.stop()
				return nil, res.err
			}
			it.nextSeq++
			it.delivered++
			it.last = res.st
			<-it.tickets
			return res.v, nil
		}
		if it.closed {
			return nil, ErrClosed
		}
		it.ready.Wait()
	}
}

func (it *pmapIterator) State() (*checkpoint.State, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.fail != nil {
		return nil, it.fail
	}
	ps := it.last
	if !it.started {
		var err error
		ps, err = it.parent.State()
		if err != nil {
			return nil, err
		}
	}
	return &checkpoint.State{Kind: kindParallelMap, Pos: it.delivered, Parents: []*checkpoint.State{ps}}, nil
}

func (it *pmapIterator) SetState(st *checkpoint.State) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.started {
		return fmt.Errorf("%w: cannot restore an active parallel map iterator", ErrConfig)
	}
	if err := st.Expect(kindParallelMap, 1); err != nil {
		return err
	}
	if err := it.parent.SetState(st.Parents[0]); err != nil {
		return err
	}
	it.delivered = st.Pos
	return nil
}

// stop halts dispatching without marking the iterator closed. Called with mu
// held.
func (it *pmapIterator) stop() {
	it.closeOnce.Do(func() {
		close(it.quit)
	})
}

func (it *pmapIterator) Close() error {
	it.mu.Lock()
	it.closed = true
	started := it.started
	it.stop()
	it.mu.Unlock()
	it.ready.Broadcast()
	if !started {
		// No dispatcher owns the parent yet.
		return it.parent.Close()
	}
	return nil
}
