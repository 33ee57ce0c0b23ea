package sim

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samba-sim/samba-sim/sim/trace"
)

// ThompsonSampling scores each arm with one sample from
// Beta(successes+1, failures+1) and pulls the best sample.
//
// The RandomArm seed is carried for schema compatibility with the other
// strategies' seed sets; selection is a pure argmax and never consults it.
type ThompsonSampling struct {
	beta      RandomSource
	RandomArm int64
}

// NewThompsonSampling creates a Thompson Sampling strategy.
func NewThompsonSampling(betaSeed, randomArmSeed int64) *ThompsonSampling {
	return &ThompsonSampling{beta: NewRandomSource(betaSeed), RandomArm: randomArmSeed}
}

// ThompsonSample draws the Beta posterior sample for an arm with the given
// successes and pulls, keyed by (betaSeed, turn).
func ThompsonSample(successes, pulls int, beta RandomSource, turn int) float64 {
	return distuv.Beta{
		Alpha: float64(successes + 1),
		Beta:  float64(pulls - successes + 1),
		Src:   beta.source(turn),
	}.Rand()
}

// Score implements Strategy for ThompsonSampling.
func (ts *ThompsonSampling) Score(turn int, st *State) (Decision, error) {
	scores, err := st.ScoreEach(func(arm int) (float64, error) {
		return ThompsonSample(st.Rewards[arm], st.Pulls[arm], ts.beta, turn), nil
	})
	return Decision{Scores: scores}, err
}

// Select implements Strategy for ThompsonSampling.
func (ts *ThompsonSampling) Select(_ int, d Decision) (int, error) {
	if len(d.Scores) == 0 {
		return -1, ErrNoArmSelected
	}
	return Argmax(d.Scores), nil
}

// Parameters implements Strategy for ThompsonSampling.
func (ts *ThompsonSampling) Parameters() []trace.Parameter {
	return nil
}
