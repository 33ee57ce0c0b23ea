package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/samba-sim/samba-sim/sim/trace"
)

var (
	// ErrZeroTemperature is returned when a softmax temperature of zero is used.
	ErrZeroTemperature = errors.New("softmax temperature cannot be zero")
	// ErrUnpulledArm is returned when a score needs an arm that was never pulled.
	ErrUnpulledArm = errors.New("arm has not been pulled")
	// ErrScoreOverflow is returned when a softmax score is not finite.
	ErrScoreOverflow = errors.New("softmax score overflow")
)

// SoftmaxScore returns exp((rewards/pulls) / tau).
func SoftmaxScore(rewards, pulls int, tau float64) (float64, error) {
	if pulls == 0 {
		return 0, ErrUnpulledArm
	}
	if tau == 0 {
		return 0, ErrZeroTemperature
	}
	score := math.Exp((float64(rewards) / float64(pulls)) / tau)
	if math.IsInf(score, 0) || math.IsNaN(score) {
		return 0, fmt.Errorf("%w: mean %d/%d with tau %v", ErrScoreOverflow, rewards, pulls, tau)
	}
	return score, nil
}

// Softmax draws an arm with probability proportional to exp(mean / Tau).
// Scores are used as un-normalized weights.
type Softmax struct {
	Tau       float64
	randomArm RandomSource
}

// NewSoftmax creates a softmax strategy. tau must be non-zero.
func NewSoftmax(tau float64, randomArmSeed int64) (*Softmax, error) {
	if tau == 0 {
		return nil, ErrZeroTemperature
	}
	if math.IsNaN(tau) || math.IsInf(tau, 0) {
		return nil, fmt.Errorf("softmax temperature must be finite, got %v", tau)
	}
	return &Softmax{Tau: tau, randomArm: NewRandomSource(randomArmSeed)}, nil
}

// Score implements Strategy for Softmax.
func (s *Softmax) Score(_ int, st *State) (Decision, error) {
	scores, err := st.ScoreEach(func(arm int) (float64, error) {
		score, err := SoftmaxScore(st.Rewards[arm], st.Pulls[arm], s.Tau)
		if err != nil {
			return 0, fmt.Errorf("arm %d: %w", arm, err)
		}
		return score, nil
	})
	return Decision{Scores: scores}, err
}

// Select implements Strategy for Softmax.
func (s *Softmax) Select(turn int, d Decision) (int, error) {
	if len(d.Scores) == 0 {
		return -1, ErrNoArmSelected
	}
	indices := make([]int, len(d.Scores))
	for i := range indices {
		indices[i] = i
	}
	return WeightedChoice(s.randomArm, indices, d.Scores, turn)
}

// Parameters implements Strategy for Softmax.
func (s *Softmax) Parameters() []trace.Parameter {
	return []trace.Parameter{{Name: "tau", Value: s.Tau}}
}
