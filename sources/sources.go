// Package sources provides concrete record sources for the feedBowl
// pipeline: an in-memory slice, a synthetic integer range, and a lazy
// CSV-backed store that only reads file data when an element is requested.
// All of them satisfy indexed.Source and are safe for concurrent reads.
package sources

// Example is one training example as produced by the feature-bearing
// sources: a flat input vector and a flat label vector.
type Example struct {
	Inputs []float32
	Labels []float32
}

// SliceSource serves elements from an in-memory slice. The slice is read
// only, never copied or mutated.
type SliceSource struct {
	elems []any
}

// NewSliceSource wraps elems as a source.
func NewSliceSource(elems []any) *SliceSource {
	return &SliceSource{elems: elems}
}

// Len returns the number of elements.
func (s *SliceSource) Len() int { return len(s.elems) }

// At returns element i. Bounds are checked by the indexed tier.
func (s *SliceSource) At(i int) (any, error) { return s.elems[i], nil }

// RangeSource serves the integers [0, N) as int elements, handy for
// synthetic pipelines and tests.
type RangeSource struct {
	n int
}

// NewRangeSource creates a source over [0, n).
func NewRangeSource(n int) *RangeSource { return &RangeSource{n: n} }

// Len returns n.
func (s *RangeSource) Len() int { return s.n }

// At returns i itself.
func (s *RangeSource) At(i int) (any, error) { return i, nil }
