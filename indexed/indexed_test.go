package indexed

import (
	"errors"
	"testing"
)

// intSource is a minimal in-memory source for tests.
type intSource []any

func (s intSource) Len() int              { return len(s) }
func (s intSource) At(i int) (any, error) { return s[i], nil }

// rangeDataset builds a dataset over the ints [0, n).
func rangeDataset(t *testing.T, n int) Dataset {
	t.Helper()
	elems := make(intSource, n)
	for i := range n {
		elems[i] = i
	}
	return FromSource(elems)
}

// collect reads every element of ds in index order.
func collect(t *testing.T, ds Dataset) []any {
	t.Helper()
	out := make([]any, ds.Len())
	for i := range ds.Len() {
		v, err := ds.At(i)
		if err != nil {
			t.Fatalf("At(%d) error: %v", i, err)
		}
		out[i] = v
	}
	return out
}

func TestFromSource_OutOfRange(t *testing.T) {
	ds := rangeDataset(t, 3)
	for _, i := range []int{-1, 3, 100} {
		if _, err := ds.At(i); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("At(%d): expected ErrOutOfRange, got %v", i, err)
		}
	}
}

func TestMap(t *testing.T) {
	ds := Map(rangeDataset(t, 5), func(v any) (any, error) {
		return v.(int) * 10, nil
	})
	if ds.Len() != 5 {
		t.Fatalf("expected len 5, got %d", ds.Len())
	}
	got := collect(t, ds)
	for i, v := range got {
		if v.(int) != i*10 {
			t.Fatalf("At(%d) = %v, want %d", i, v, i*10)
		}
	}
}

func TestSlice(t *testing.T) {
	ds := rangeDataset(t, 10)

	s, err := Slice(ds, 2, 9, 3)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	want := []int{2, 5, 8}
	if s.Len() != len(want) {
		t.Fatalf("expected len %d, got %d", len(want), s.Len())
	}
	for i, w := range want {
		v, err := s.At(i)
		if err != nil {
			t.Fatalf("At(%d) error: %v", i, err)
		}
		if v.(int) != w {
			t.Fatalf("At(%d) = %v, want %d", i, v, w)
		}
	}

	// Stop clamps to length.
	s, err = Slice(ds, 8, 100, 1)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}

	if _, err := Slice(ds, 0, 10, 0); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for step 0, got %v", err)
	}
	if _, err := Slice(ds, -1, 10, 1); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for negative start, got %v", err)
	}
}

func TestBatch(t *testing.T) {
	ds := rangeDataset(t, 10)

	b, err := Batch(ds, 3, false)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if b.Len() != 4 {
		t.Fatalf("expected 4 batches, got %d", b.Len())
	}
	last, err := b.At(3)
	if err != nil {
		t.Fatalf("At(3) error: %v", err)
	}
	if got := last.([]any); len(got) != 1 || got[0].(int) != 9 {
		t.Fatalf("unexpected final batch: %v", got)
	}

	b, err = Batch(ds, 3, true)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 batches with drop remainder, got %d", b.Len())
	}

	if _, err := Batch(ds, 0, false); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for batch size 0, got %v", err)
	}
}

func TestShuffle_IsPermutationAndDeterministic(t *testing.T) {
	const n = 100
	ds := rangeDataset(t, n)

	first := collect(t, Shuffle(ds, 17))
	second := collect(t, Shuffle(ds, 17))
	other := collect(t, Shuffle(ds, 18))

	seen := make(map[int]bool, n)
	for _, v := range first {
		seen[v.(int)] = true
	}
	if len(seen) != n {
		t.Fatalf("shuffle is not a permutation: %d distinct of %d", len(seen), n)
	}

	same := true
	moved := false
	for i := range n {
		if first[i] != second[i] {
			same = false
		}
		if first[i] != i {
			moved = true
		}
	}
	if !same {
		t.Fatalf("same seed produced different orders")
	}
	if !moved {
		t.Fatalf("shuffle left every element in place")
	}

	diff := false
	for i := range n {
		if first[i] != other[i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Fatalf("different seeds produced identical orders")
	}
}

func TestShuffle_OutOfRange(t *testing.T) {
	ds := Shuffle(rangeDataset(t, 4), 1)
	if _, err := ds.At(4); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestMix_WeightConservation(t *testing.T) {
	a := rangeDataset(t, 1000)
	b := Map(rangeDataset(t, 1000), func(v any) (any, error) {
		return v.(int) + 1_000_000, nil
	})

	mixed, err := Mix([]Weighted{
		{Dataset: a, Weight: 0.7},
		{Dataset: b, Weight: 0.3},
	})
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}

	n := mixed.Len()
	if want := 1428; n != want {
		t.Fatalf("expected mix length %d, got %d", want, n)
	}

	var fromA, fromB int
	for i := range n {
		v, err := mixed.At(i)
		if err != nil {
			t.Fatalf("At(%d) error: %v", i, err)
		}
		if v.(int) >= 1_000_000 {
			fromB++
		} else {
			fromA++
		}
	}
	if d := float64(fromA) - 0.7*float64(n); d > 1 || d < -1 {
		t.Fatalf("operand A drew %d elements, want within 1 of %.1f", fromA, 0.7*float64(n))
	}
	if d := float64(fromB) - 0.3*float64(n); d > 1 || d < -1 {
		t.Fatalf("operand B drew %d elements, want within 1 of %.1f", fromB, 0.3*float64(n))
	}
}

func TestMix_DeterministicAndRandomAccess(t *testing.T) {
	a := rangeDataset(t, 50)
	b := Map(rangeDataset(t, 50), func(v any) (any, error) {
		return v.(int) + 1000, nil
	})
	mixed, err := Mix([]Weighted{
		{Dataset: a, Weight: 1},
		{Dataset: b, Weight: 2},
	})
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}

	forward := collect(t, mixed)
	// Re-read in reverse: the schedule cursor must replay identically.
	for i := mixed.Len() - 1; i >= 0; i-- {
		v, err := mixed.At(i)
		if err != nil {
			t.Fatalf("At(%d) error: %v", i, err)
		}
		if v != forward[i] {
			t.Fatalf("At(%d) = %v on reverse pass, was %v forward", i, v, forward[i])
		}
	}
}

func TestMix_ConstructionErrors(t *testing.T) {
	ds := rangeDataset(t, 10)
	if _, err := Mix(nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for empty mix, got %v", err)
	}
	if _, err := Mix([]Weighted{{Dataset: ds, Weight: 0}}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero weight, got %v", err)
	}
	if _, err := Mix([]Weighted{{Dataset: ds, Weight: -1}}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for negative weight, got %v", err)
	}
}

func TestShard_DisjointAndExhaustive(t *testing.T) {
	const n, count = 23, 4
	ds := rangeDataset(t, n)

	seen := make(map[int]int)
	total := 0
	for index := range count {
		shard, err := Shard(ds, index, count)
		if err != nil {
			t.Fatalf("Shard(%d, %d) failed: %v", index, count, err)
		}
		total += shard.Len()
		for i := range shard.Len() {
			v, err := shard.At(i)
			if err != nil {
				t.Fatalf("shard %d At(%d) error: %v", index, i, err)
			}
			seen[v.(int)]++
		}
	}
	if total != n {
		t.Fatalf("shard lengths sum to %d, want %d", total, n)
	}
	for i := range n {
		if seen[i] != 1 {
			t.Fatalf("element %d seen %d times across shards", i, seen[i])
		}
	}
}

func TestShard_ConstructionErrors(t *testing.T) {
	ds := rangeDataset(t, 10)
	if _, err := Shard(ds, 0, 0); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for count 0, got %v", err)
	}
	if _, err := Shard(ds, 3, 3); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for index == count, got %v", err)
	}
	if _, err := Shard(ds, -1, 3); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for negative index, got %v", err)
	}
}
