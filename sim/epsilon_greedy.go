package sim

import (
	"fmt"
	"math"

	"github.com/samba-sim/samba-sim/sim/trace"
)

// exploreSentinel is the score reported for every arm on an explore turn.
const exploreSentinel = 1.0

// EpsilonGreedy explores a uniformly random arm with probability Epsilon and
// otherwise exploits the arm with the best empirical mean.
//
// The explore/exploit coin is drawn once per turn in Score and carried to
// Select inside the Decision.
type EpsilonGreedy struct {
	Epsilon   float64
	coin      RandomSource
	randomArm RandomSource
}

// NewEpsilonGreedy creates an epsilon-greedy strategy. epsilon must be in [0, 1].
func NewEpsilonGreedy(epsilon float64, epsilonSeed, randomArmSeed int64) (*EpsilonGreedy, error) {
	if math.IsNaN(epsilon) || epsilon < 0 || epsilon > 1 {
		return nil, fmt.Errorf("epsilon must be in [0, 1], got %v", epsilon)
	}
	return &EpsilonGreedy{
		Epsilon:   epsilon,
		coin:      NewRandomSource(epsilonSeed),
		randomArm: NewRandomSource(randomArmSeed),
	}, nil
}

// Score implements Strategy for EpsilonGreedy.
func (eg *EpsilonGreedy) Score(turn int, st *State) (Decision, error) {
	if eg.coin.Uniform(turn) < eg.Epsilon {
		scores, err := st.ScoreEach(func(int) (float64, error) { return exploreSentinel, nil })
		return Decision{Explore: true, Scores: scores}, err
	}
	scores, err := st.ScoreEach(func(arm int) (float64, error) { return st.Mean(arm), nil })
	return Decision{Scores: scores}, err
}

// Select implements Strategy for EpsilonGreedy.
func (eg *EpsilonGreedy) Select(turn int, d Decision) (int, error) {
	if len(d.Scores) == 0 {
		return -1, ErrNoArmSelected
	}
	if d.Explore {
		return eg.randomArm.Integer(turn, 0, len(d.Scores)-1), nil
	}
	return Argmax(d.Scores), nil
}

// Parameters implements Strategy for EpsilonGreedy.
func (eg *EpsilonGreedy) Parameters() []trace.Parameter {
	return []trace.Parameter{{Name: "epsilon", Value: eg.Epsilon}}
}
