package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/samba-sim/samba-sim/sim/trace"
)

var (
	// ErrAlgorithmNotFound is returned when a strategy name is not in the catalog.
	ErrAlgorithmNotFound = errors.New("algorithm not found")
	// ErrNoArmSelected is returned when a strategy yields no valid arm.
	ErrNoArmSelected = errors.New("no arm selected")
)

// Algorithm names of the strategy catalog.
const (
	AlgorithmUCB              = "ucb"
	AlgorithmSoftmax          = "softmax"
	AlgorithmThompsonSampling = "thompson-sampling"
	AlgorithmEpsilonGreedy    = "epsilon-greedy"
)

// Decision is the outcome of scoring one turn.
// Explore is set when the strategy decided to explore at random this turn; in
// that case Scores holds sentinel values and selection ignores them.
type Decision struct {
	Explore bool
	Scores  []float64
}

// Strategy scores arms and selects one per adaptive turn.
//
// Score is called exactly once per turn and returns everything Select needs,
// so no per-turn state is carried between the two calls.
type Strategy interface {
	// Score evaluates every arm for the given turn.
	Score(turn int, st *State) (Decision, error)
	// Select returns the index of the arm to pull for the given turn.
	Select(turn int, d Decision) (int, error)
	// Parameters returns named parameters reported in the execution history.
	Parameters() []trace.Parameter
}

// Hyperparameters holds strategy tuning values. Strategies ignore the fields
// they do not use.
type Hyperparameters struct {
	Epsilon float64 `json:"epsilon"`
	Tau     float64 `json:"tau"`
}

// Seeds holds every seed a strategy run may consume. Zero-valued fields are
// unused by the strategy they are passed to.
type Seeds struct {
	Reward    int64 `json:"reward"`
	Epsilon   int64 `json:"epsilon,omitempty"`
	RandomArm int64 `json:"random_arm,omitempty"`
	Beta      int64 `json:"beta,omitempty"`
}

// StrategyFactory builds a strategy from hyperparameters and seeds.
type StrategyFactory func(hp Hyperparameters, seeds Seeds) (Strategy, error)

// algorithmCatalog lists algorithm names in batch execution order.
var algorithmCatalog = []string{
	AlgorithmUCB,
	AlgorithmSoftmax,
	AlgorithmThompsonSampling,
	AlgorithmEpsilonGreedy,
}

// strategyFactories maps algorithm names to constructors.
var strategyFactories = map[string]StrategyFactory{
	AlgorithmUCB: func(_ Hyperparameters, _ Seeds) (Strategy, error) {
		return NewUCB(), nil
	},
	AlgorithmSoftmax: func(hp Hyperparameters, seeds Seeds) (Strategy, error) {
		return NewSoftmax(hp.Tau, seeds.RandomArm)
	},
	AlgorithmThompsonSampling: func(_ Hyperparameters, seeds Seeds) (Strategy, error) {
		return NewThompsonSampling(seeds.Beta, seeds.RandomArm), nil
	},
	AlgorithmEpsilonGreedy: func(hp Hyperparameters, seeds Seeds) (Strategy, error) {
		return NewEpsilonGreedy(hp.Epsilon, seeds.Epsilon, seeds.RandomArm)
	},
}

// AlgorithmNames returns the catalog in batch execution order.
func AlgorithmNames() []string {
	return append([]string(nil), algorithmCatalog...)
}

// IsValidAlgorithm returns true if name is in the catalog.
func IsValidAlgorithm(name string) bool {
	_, ok := strategyFactories[name]
	return ok
}

// NewStrategy creates the named strategy.
// Returns ErrAlgorithmNotFound for names outside the catalog.
func NewStrategy(name string, hp Hyperparameters, seeds Seeds) (Strategy, error) {
	factory, ok := strategyFactories[name]
	if !ok {
		return nil, fmt.Errorf("cannot create an instance of %q: %w", name, ErrAlgorithmNotFound)
	}
	return factory(hp, seeds)
}

// Argmax returns the index of the largest value. Ties are broken by first
// occurrence (lowest index). Returns -1 for an empty slice.
func Argmax(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	return floats.MaxIdx(values)
}
