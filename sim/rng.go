package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidWeights is returned by WeightedChoice when the weights do not
// describe a categorical distribution.
var ErrInvalidWeights = errors.New("invalid weights")

// pcgStream is the fixed PCG stream word of the sequential subsystem generators.
const pcgStream = 0x9e3779b97f4a7c15

// === RandomSource ===

// RandomSource produces reproducible draws keyed by (seed, turn).
//
// Every draw re-seeds a fresh generator from seed + turn, so a value is a pure
// function of the pair and never of call order. Two sources built from the same
// seed return identical values for the same turn; unrelated turns share no state.
//
// RandomSource is a value type and is safe to copy and share across goroutines.
type RandomSource struct {
	seed int64
}

// NewRandomSource creates a RandomSource for the given seed.
func NewRandomSource(seed int64) RandomSource {
	return RandomSource{seed: seed}
}

// Seed returns the instance seed.
func (r RandomSource) Seed() int64 {
	return r.seed
}

// source returns an isolated source positioned at the start of turn t.
// ChaCha8 keeps adjacent (seed + turn) keys statistically independent.
func (r RandomSource) source(t int) rand.Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(r.seed+int64(t)))
	return rand.NewChaCha8(key)
}

// rng returns an isolated generator for turn t.
func (r RandomSource) rng(t int) *rand.Rand {
	return rand.New(r.source(t))
}

// Uniform returns a float in [0, 1) for turn t.
func (r RandomSource) Uniform(t int) float64 {
	return r.rng(t).Float64()
}

// Integer returns an int in [lo, hi] (both inclusive) for turn t.
// Panics if hi < lo.
func (r RandomSource) Integer(t, lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("RandomSource.Integer: empty range [%d, %d]", lo, hi))
	}
	return lo + r.rng(t).IntN(hi-lo+1)
}

// WeightedChoice draws one item from the categorical distribution described by
// weights, for turn t. Weights need not sum to one; they must be finite,
// non-negative, and have a positive sum.
func WeightedChoice[T any](r RandomSource, items []T, weights []float64, t int) (T, error) {
	var zero T
	if len(items) != len(weights) {
		return zero, fmt.Errorf("%w: %d items, %d weights", ErrLengthMismatch, len(items), len(weights))
	}
	if len(items) == 0 {
		return zero, fmt.Errorf("%w: no items", ErrInvalidWeights)
	}
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return zero, fmt.Errorf("%w: weight[%d] = %v", ErrInvalidWeights, i, w)
		}
		total += w
	}
	if total <= 0 || math.IsInf(total, 0) {
		return zero, fmt.Errorf("%w: weight sum %v", ErrInvalidWeights, total)
	}
	idx := int(distuv.NewCategorical(weights, r.source(t)).Rand())
	return items[idx], nil
}

// === SimulationKey ===

// SimulationKey is the master seed of a batch. Equal keys and equal
// configurations yield identical run seeds.
type SimulationKey int64

// NewSimulationKey wraps a master seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Subsystems with their own sequential stream.
const (
	// SubsystemSeeds streams the per-run seeds drawn when a batch is planned.
	// Keyed by the master seed itself.
	SubsystemSeeds = "seeds"

	// SubsystemPermutation streams the timing harness permutation seeds.
	SubsystemPermutation = "permutation"
)

// === PartitionedRNG ===

// PartitionedRNG hands out one sequential stream per named subsystem, all
// derived from a SimulationKey. Streams are created on first use, and drawing
// from one never advances another. The turn loop never uses it: run seeds are
// drawn from it once, before any run starts.
//
// A subsystem stream is keyed by masterSeed XOR fnv1a64(name), except
// SubsystemSeeds which is keyed by masterSeed.
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG with no open streams.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream of the named subsystem, creating it on the
// first call. Later calls return the same *rand.Rand.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if s, ok := p.streams[name]; ok {
		return s
	}
	s := rand.New(rand.NewPCG(p.subsystemSeed(name), pcgStream))
	p.streams[name] = s
	return s
}

// Key returns the master key.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func (p *PartitionedRNG) subsystemSeed(name string) uint64 {
	if name == SubsystemSeeds {
		return uint64(p.key)
	}
	return uint64(int64(p.key) ^ fnv1a64(name))
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
