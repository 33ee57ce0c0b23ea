// Package sim provides the bandit simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - rng.go: RandomSource, the (seed, turn)-keyed draws every component uses
//   - engine.go: the play loop (INIT → INITIAL_EXPLORATION → ADAPTIVE_EXPLORATION → DONE)
//   - strategy.go: the Strategy interface, the algorithm catalog and Argmax
//
// # Determinism
//
// Nothing in this package holds a running random stream. Every draw is
// re-derived from an explicit (seed, turn) pair: arm rewards, the
// epsilon-greedy coin, random arm picks, softmax draws, Beta samples and
// permutations. Repeating a run with the same seeds reproduces it exactly,
// and distinct runs can execute concurrently without coordination.
//
// # Strategies
//
//   - EpsilonGreedy: explore at random with probability epsilon, else best mean
//   - UCB: UCB1 mean plus exploration bonus, argmax
//   - Softmax: exp(mean/tau) used as weights for a categorical draw
//   - ThompsonSampling: Beta(successes+1, failures+1) samples, argmax
//
// Sub-packages:
//   - sim/trace/: execution history and its flat export schema
//   - sim/batch/: the run manager driving (dataset × algorithm × iteration) batches
package sim
