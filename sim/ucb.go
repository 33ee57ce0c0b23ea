package sim

import (
	"math"

	"github.com/samba-sim/samba-sim/sim/trace"
)

// UCB implements UCB1: empirical mean plus an exploration bonus that grows with
// elapsed turns and shrinks with the arm's pull count.
type UCB struct{}

// NewUCB creates a UCB1 strategy.
func NewUCB() *UCB {
	return &UCB{}
}

// UCBScore returns mean + sqrt(2 ln(turn) / pulls). pulls must be positive.
func UCBScore(turn, rewards, pulls int) float64 {
	exploitation := float64(rewards) / float64(pulls)
	exploration := math.Sqrt(2 * math.Log(float64(turn)) / float64(pulls))
	return exploitation + exploration
}

// Score implements Strategy for UCB.
func (u *UCB) Score(turn int, st *State) (Decision, error) {
	scores, err := st.ScoreEach(func(arm int) (float64, error) {
		if st.Pulls[arm] == 0 {
			return 0, ErrUnpulledArm
		}
		return UCBScore(turn, st.Rewards[arm], st.Pulls[arm]), nil
	})
	return Decision{Scores: scores}, err
}

// Select implements Strategy for UCB.
func (u *UCB) Select(_ int, d Decision) (int, error) {
	if len(d.Scores) == 0 {
		return -1, ErrNoArmSelected
	}
	return Argmax(d.Scores), nil
}

// Parameters implements Strategy for UCB.
func (u *UCB) Parameters() []trace.Parameter {
	return nil
}
