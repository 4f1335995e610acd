// Package checkpoint holds the serializable iterator state tree, the blob
// codec used to persist it, and the backend interface feedBowl writes
// checkpoints through.
//
// A checkpoint captures the minimal information needed to resume a stream
// iterator at the exact element it would have produced next: per-node
// positions, seeds and draw counts for randomized nodes, and the liveness of
// mix operands. Buffered look-ahead in parallel stages is not serialized;
// those stages record the upstream position of the last element actually
// delivered and recompute the look-ahead on restore.
package checkpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrMismatch reports a state tree restored against a structurally
	// different dataset graph (wrong node kind or arity). Restoring such a
	// snapshot fails outright rather than silently producing wrong data.
	ErrMismatch = errors.New("checkpoint does not match dataset graph")

	// ErrNotFound reports a missing key on a Backend read.
	ErrNotFound = errors.New("checkpoint not found")
)

// State is one node of an iterator snapshot. The tree mirrors the iterator
// tree: Parents holds the snapshots of the node's upstream iterators in
// construction order. Field meaning varies by node kind; unused fields stay
// at their zero value and are omitted from the encoding.
type State struct {
	// Kind identifies the node type that wrote this state. Restore
	// validates it against the node type reading it.
	Kind string `json:"kind"`

	// Pos is a node-defined cursor: next index for an indexed bridge,
	// elements consumed for a producer source, elements yielded for a
	// shard or parallel stage.
	Pos int64 `json:"pos,omitempty"`

	// Seed and Draws describe a node's RNG: the seed it was constructed
	// with and how many draws it has consumed. Restore re-seeds and
	// discards Draws values to reposition the generator.
	Seed  int64 `json:"seed,omitempty"`
	Draws int64 `json:"draws,omitempty"`

	// Live flags which mix operands were still producing when the
	// snapshot was taken.
	Live []bool `json:"live,omitempty"`

	Parents []*State `json:"parents,omitempty"`
}

// Expect validates that s carries the given kind and parent count, the
// structural check every node performs before restoring itself.
func (s *State) Expect(kind string, parents int) error {
	if s == nil {
		return fmt.Errorf("%w: nil state for %q node", ErrMismatch, kind)
	}
	if s.Kind != kind {
		return fmt.Errorf("%w: state is for %q node, graph has %q", ErrMismatch, s.Kind, kind)
	}
	if len(s.Parents) != parents {
		return fmt.Errorf("%w: %q state has %d parents, graph needs %d", ErrMismatch, kind, len(s.Parents), parents)
	}
	return nil
}

// Clone deep-copies the state tree. Parallel stages attach a clone to every
// element they pull so later mutation of the live tree cannot corrupt
// buffered snapshots.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	if s.Live != nil {
		c.Live = append([]bool(nil), s.Live...)
	}
	if s.Parents != nil {
		c.Parents = make([]*State, len(s.Parents))
		for i, p := range s.Parents {
			c.Parents[i] = p.Clone()
		}
	}
	return &c
}
