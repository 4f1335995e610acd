package gomlxds

import (
	"io"
	"testing"

	"github.com/Noofbiz/feedBowl/indexed"
	"github.com/Noofbiz/feedBowl/sources"
	"github.com/Noofbiz/feedBowl/stream"
)

// exampleStream builds a stream of n synthetic examples where example i has
// inputs [i, i+1] and label [i*10].
func exampleStream(t *testing.T, n int) stream.Dataset {
	t.Helper()
	elems := make([]any, n)
	for i := range n {
		elems[i] = &sources.Example{
			Inputs: []float32{float32(i), float32(i + 1)},
			Labels: []float32{float32(i * 10)},
		}
	}
	return stream.FromIndexed(indexed.FromSource(sources.NewSliceSource(elems)))
}

func TestDataset_YieldBatches(t *testing.T) {
	ds, err := New("train", exampleStream(t, 7), 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if ds.Name() != "train" {
		t.Fatalf("unexpected name %q", ds.Name())
	}

	// 7 examples at batch size 3 yields batches of 3, 3 and 1, so three
	// Yield calls succeed before exhaustion.
	for step := range 3 {
		_, inputs, labels, err := ds.Yield()
		if err != nil {
			t.Fatalf("Yield step %d error: %v", step, err)
		}
		if len(inputs) != 1 || len(labels) != 1 {
			t.Fatalf("step %d: expected one inputs and one labels tensor", step)
		}
		if inputs[0] == nil || labels[0] == nil {
			t.Fatalf("step %d: Yield returned nil tensor(s)", step)
		}
	}

	if _, _, _, err := ds.Yield(); err != io.EOF {
		t.Fatalf("expected io.EOF after exhaustion, got %v", err)
	}
}

func TestDataset_ResetStartsNewEpoch(t *testing.T) {
	ds, err := New("train", exampleStream(t, 4), 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	countBatches := func() int {
		n := 0
		for {
			if _, _, _, err := ds.Yield(); err == io.EOF {
				return n
			} else if err != nil {
				t.Fatalf("Yield error: %v", err)
			}
			n++
		}
	}

	if got := countBatches(); got != 2 {
		t.Fatalf("first epoch produced %d batches, want 2", got)
	}
	ds.Reset()
	if got := countBatches(); got != 2 {
		t.Fatalf("second epoch produced %d batches, want 2", got)
	}
}

func TestDataset_RejectsBadBatchSize(t *testing.T) {
	if _, err := New("train", exampleStream(t, 4), 0); err == nil {
		t.Fatal("expected error for batch size 0")
	}
}

func TestDataset_RejectsForeignElements(t *testing.T) {
	ints := stream.FromIndexed(indexed.FromSource(sources.NewRangeSource(3)))
	ds, err := New("train", ints, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, _, _, err := ds.Yield(); err == nil {
		t.Fatal("expected error for non-Example elements")
	}
}

func TestDataset_InconsistentDimensions(t *testing.T) {
	elems := []any{
		&sources.Example{Inputs: []float32{1, 2}, Labels: []float32{1}},
		&sources.Example{Inputs: []float32{1}, Labels: []float32{1}},
	}
	ds, err := New("train",
		stream.FromIndexed(indexed.FromSource(sources.NewSliceSource(elems))), 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, _, _, err := ds.Yield(); err == nil {
		t.Fatal("expected error for inconsistent input dimensions")
	}
}
