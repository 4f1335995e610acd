package metrics

import (
	"errors"
	"io"
	"testing"

	"github.com/Noofbiz/feedBowl/indexed"
	"github.com/Noofbiz/feedBowl/stream"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type intSource []any

func (s intSource) Len() int              { return len(s) }
func (s intSource) At(i int) (any, error) { return s[i], nil }

func rangeStream(t *testing.T, n int) stream.Dataset {
	t.Helper()
	elems := make(intSource, n)
	for i := range n {
		elems[i] = i
	}
	return stream.FromIndexed(indexed.FromSource(elems))
}

func TestInstrument_CountsProducedElements(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	ds := Instrument(rangeStream(t, 7), "bridge", m)
	it := ds.Iter()
	defer it.Close()
	if _, err := stream.Collect(it); err != nil {
		t.Fatalf("collect error: %v", err)
	}

	if got := testutil.ToFloat64(m.Produced.WithLabelValues("bridge")); got != 7 {
		t.Fatalf("produced counter is %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("bridge")); got != 0 {
		t.Fatalf("failure counter is %v, want 0", got)
	}
}

func TestInstrument_CountsFailuresOnce(t *testing.T) {
	m := New(prometheus.NewRegistry())
	boom := errors.New("boom")
	ds := stream.Map(rangeStream(t, 5), func(v any) (any, error) {
		if v.(int) == 2 {
			return nil, boom
		}
		return v, nil
	})

	it := Instrument(ds, "mapped", m).Iter()
	defer it.Close()
	for {
		if _, err := it.Next(); err != nil {
			break
		}
	}
	// Failure is sticky downstream; re-reporting must not re-count.
	it.Next()
	it.Next()

	if got := testutil.ToFloat64(m.Failures.WithLabelValues("mapped")); got != 1 {
		t.Fatalf("failure counter is %v, want 1", got)
	}
}

func TestInstrument_CheckpointPassthrough(t *testing.T) {
	m := New(prometheus.NewRegistry())
	bare := rangeStream(t, 10)
	wrapped := Instrument(bare, "bridge", m)

	it := wrapped.Iter()
	defer it.Close()
	for range 4 {
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next error: %v", err)
		}
	}
	st, err := it.State()
	if err != nil {
		t.Fatalf("State error: %v", err)
	}

	// A bare pipeline accepts the instrumented pipeline's snapshot.
	resumed, err := stream.Restore(bare, st)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	defer resumed.Close()
	v, err := resumed.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if v.(int) != 4 {
		t.Fatalf("resumed at %v, want 4", v)
	}
}

func TestInstrument_EOFNotAFailure(t *testing.T) {
	m := New(prometheus.NewRegistry())
	it := Instrument(rangeStream(t, 2), "bridge", m).Iter()
	defer it.Close()
	for {
		if _, err := it.Next(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("bridge")); got != 0 {
		t.Fatalf("EOF counted as failure: %v", got)
	}
}
