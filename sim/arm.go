package sim

// BernoulliArm is a simulated arm returning reward 1 with probability P.
// Pull is a pure function of (P, reward seed, turn).
type BernoulliArm struct {
	P      float64
	random RandomSource
}

// NewBernoulliArm creates an arm with success probability p driven by rewardSeed.
func NewBernoulliArm(p float64, rewardSeed int64) BernoulliArm {
	return BernoulliArm{P: p, random: NewRandomSource(rewardSeed)}
}

// Pull returns the reward (0 or 1) of this arm at turn t.
// Repeated calls with the same t return the same reward.
func (a BernoulliArm) Pull(t int) int {
	if a.random.Uniform(t) <= a.P {
		return 1
	}
	return 0
}

// newArms builds one arm per probability, all sharing rewardSeed.
func newArms(probs []float64, rewardSeed int64) []BernoulliArm {
	arms := make([]BernoulliArm, len(probs))
	for i, p := range probs {
		arms[i] = NewBernoulliArm(p, rewardSeed)
	}
	return arms
}
