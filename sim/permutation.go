package sim

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when a slice does not have the length an
// operation was built for.
var ErrLengthMismatch = errors.New("length mismatch")

// Permutation is a bijection over 0..n-1 keyed by (seed, turn).
//
// forward[i] is the position item i moves to; inverse is its precomputed
// inverse. The shuffle draws from an isolated generator built from the
// (seed, turn) pair, so constructing a Permutation never perturbs any other
// random stream in the process.
type Permutation struct {
	forward []int
	inverse []int
}

// NewPermutation builds the permutation of n positions for (seed, turn).
// A fresh Permutation is expected per turn; instances are not reused.
func NewPermutation(n int, seed int64, turn int) *Permutation {
	forward := make([]int, n)
	for i := range forward {
		forward[i] = i
	}
	rng := NewRandomSource(seed).rng(turn)
	rng.Shuffle(n, func(i, j int) { forward[i], forward[j] = forward[j], forward[i] })

	inverse := make([]int, n)
	for i, p := range forward {
		inverse[p] = i
	}
	return &Permutation{forward: forward, inverse: inverse}
}

// Len returns the number of positions.
func (p *Permutation) Len() int {
	return len(p.forward)
}

// Forward returns a copy of the forward map.
func (p *Permutation) Forward() []int {
	return append([]int(nil), p.forward...)
}

// InvertIndex returns the original position of a permuted index.
// Panics if permutedIndex is out of range.
func (p *Permutation) InvertIndex(permutedIndex int) int {
	return p.inverse[permutedIndex]
}

// Permute returns a reordered copy of values: the item at position i is moved
// to position forward[i].
func Permute[T any](p *Permutation, values []T) ([]T, error) {
	if len(values) != len(p.forward) {
		return nil, fmt.Errorf("%w: cannot permute list of size %d, expected %d", ErrLengthMismatch, len(values), len(p.forward))
	}
	out := make([]T, len(values))
	for i, to := range p.forward {
		out[to] = values[i]
	}
	return out, nil
}

// InvertPermutation restores the original ordering of a list produced by Permute.
func InvertPermutation[T any](p *Permutation, permuted []T) ([]T, error) {
	if len(permuted) != len(p.forward) {
		return nil, fmt.Errorf("%w: cannot invert list of size %d, expected %d", ErrLengthMismatch, len(permuted), len(p.forward))
	}
	out := make([]T, len(permuted))
	for i, from := range p.forward {
		out[i] = permuted[from]
	}
	return out, nil
}
