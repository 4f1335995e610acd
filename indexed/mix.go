package indexed

import (
	"fmt"
	"math"
	"sync"
)

// Weighted pairs a dataset with its mixing weight. Weights need not sum to
// one; Mix normalizes them. A weight of zero (or less) is rejected at
// construction.
type Weighted struct {
	Dataset Dataset
	Weight  float64
}

// Mix deterministically interleaves the given datasets in proportion to
// their weights. The assignment of mixed positions to operands is a
// seed-free deficit round-robin: each step every operand accrues its
// normalized weight as credit and the operand with the most credit emits its
// next element. The resulting order is identical across runs and machines.
//
// The mixed length is the largest N such that no operand is asked for more
// elements than it has: N = min_i floor(Len_i / w_i). Deficit round-robin
// keeps every operand's running count within one element of w_i*N, so the
// bound holds without simulating the schedule at construction time.
//
// Mixed element j is resolved lazily via a memoized schedule cursor, making
// sequential access O(1) amortized; random access behind the cursor replays
// the schedule from the start.
func Mix(parts []Weighted) (Dataset, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: mix requires at least one dataset", ErrConfig)
	}
	var total float64
	for i, p := range parts {
		if p.Dataset == nil {
			return nil, fmt.Errorf("%w: mix operand %d is nil", ErrConfig, i)
		}
		if p.Weight <= 0 || math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) {
			return nil, fmt.Errorf("%w: mix weight %d must be positive and finite, got %v", ErrConfig, i, p.Weight)
		}
		total += p.Weight
	}

	d := &mixDataset{
		parts:   make([]Dataset, len(parts)),
		weights: make([]float64, len(parts)),
	}
	length := math.MaxInt
	for i, p := range parts {
		d.parts[i] = p.Dataset
		d.weights[i] = p.Weight / total
		max := int(math.Floor(float64(p.Dataset.Len()) / d.weights[i]))
		if max < length {
			length = max
		}
	}
	d.length = length
	d.resetCursor()
	return d, nil
}

type mixDataset struct {
	parts   []Dataset
	weights []float64
	length  int

	// Schedule cursor, guarded for concurrent At. pos is the next mixed
	// position the cursor will assign; credit and local carry the
	// round-robin state at that position.
	mu     sync.Mutex
	pos    int
	credit []float64
	local  []int
}

func (d *mixDataset) Len() int { return d.length }

func (d *mixDataset) resetCursor() {
	d.pos = 0
	d.credit = make([]float64, len(d.parts))
	d.local = make([]int, len(d.parts))
}

// assign resolves mixed position j to (operand, local index within operand).
func (d *mixDataset) assign(j int) (op, local int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if j < d.pos {
		d.resetCursor()
	}
	for {
		for i, w := range d.weights {
			d.credit[i] += w
		}
		pick := 0
		for i := 1; i < len(d.credit); i++ {
			if d.credit[i] > d.credit[pick] {
				pick = i
			}
		}
		d.credit[pick]--
		op, local = pick, d.local[pick]
		d.local[pick]++
		d.pos++
		if d.pos > j {
			return op, local
		}
	}
}

func (d *mixDataset) At(i int) (any, error) {
	if err := checkIndex(i, d.length); err != nil {
		return nil, err
	}
	op, local := d.assign(i)
	return d.parts[op].At(local)
}
