package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBernoulliArm_Pull_PureFunctionOfTurn(t *testing.T) {
	arm := NewBernoulliArm(0.5, 77)
	for turn := 1; turn <= 100; turn++ {
		first := arm.Pull(turn)
		assert.Equal(t, first, arm.Pull(turn))
		assert.Equal(t, first, NewBernoulliArm(0.5, 77).Pull(turn))
		assert.Contains(t, []int{0, 1}, first)
	}
}

func TestBernoulliArm_Pull_MatchesUniformThreshold(t *testing.T) {
	// BDD: reward is 1 iff Uniform(t) <= p for the reward seed
	arm := NewBernoulliArm(0.3, 9)
	src := NewRandomSource(9)
	for turn := 1; turn <= 200; turn++ {
		want := 0
		if src.Uniform(turn) <= 0.3 {
			want = 1
		}
		assert.Equal(t, want, arm.Pull(turn), "turn %d", turn)
	}
}

func TestBernoulliArm_Pull_CertainArm(t *testing.T) {
	arm := NewBernoulliArm(1, 3)
	for turn := 1; turn <= 100; turn++ {
		assert.Equal(t, 1, arm.Pull(turn))
	}
}

func TestBernoulliArm_Pull_EmpiricalRate(t *testing.T) {
	arm := NewBernoulliArm(0.8, 123)
	const n = 5000
	sum := 0
	for turn := 1; turn <= n; turn++ {
		sum += arm.Pull(turn)
	}
	assert.InDelta(t, 0.8, float64(sum)/n, 0.03)
}

func TestBernoulliArms_ShareRewardSeed(t *testing.T) {
	// BDD: arms of one run draw the same uniform per turn, so a higher-p arm
	// rewards whenever a lower-p arm does
	arms := newArms([]float64{0.2, 0.6}, 55)
	for turn := 1; turn <= 300; turn++ {
		if arms[0].Pull(turn) == 1 {
			assert.Equal(t, 1, arms[1].Pull(turn), "turn %d", turn)
		}
	}
}
