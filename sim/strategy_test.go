package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stateWith returns a State with the given counters.
func stateWith(pulls, rewards []int) *State {
	return &State{Pulls: append([]int(nil), pulls...), Rewards: append([]int(nil), rewards...)}
}

func TestArgmax_FirstStrictlyGreaterWins(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"tie keeps earlier index", []float64{3, 5, 5, 2}, 1},
		{"single", []float64{7}, 0},
		{"all equal", []float64{1, 1, 1}, 0},
		{"last is max", []float64{0.1, 0.2, 0.3}, 2},
		{"negative values", []float64{-3, -1, -2}, 1},
		{"empty", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Argmax(tt.values))
		})
	}
}

func TestAlgorithmNames_CatalogOrder(t *testing.T) {
	assert.Equal(t, []string{"ucb", "softmax", "thompson-sampling", "epsilon-greedy"}, AlgorithmNames())
	for _, name := range AlgorithmNames() {
		assert.True(t, IsValidAlgorithm(name), name)
	}
	assert.False(t, IsValidAlgorithm("exp3"))
}

func TestNewStrategy_AllCatalogEntries(t *testing.T) {
	hp := Hyperparameters{Epsilon: 0.1, Tau: 0.1}
	seeds := Seeds{Reward: 1, Epsilon: 2, RandomArm: 3, Beta: 4}
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			s, err := NewStrategy(name, hp, seeds)
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestNewStrategy_UnknownName_AlgorithmNotFound(t *testing.T) {
	_, err := NewStrategy("greedy", Hyperparameters{}, Seeds{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlgorithmNotFound))
	assert.Contains(t, err.Error(), "algorithm not found")
}

func TestStrategy_Parameters(t *testing.T) {
	hp := Hyperparameters{Epsilon: 0.25, Tau: 0.5}
	tests := []struct {
		name      string
		wantNames []string
	}{
		{AlgorithmEpsilonGreedy, []string{"epsilon"}},
		{AlgorithmSoftmax, []string{"tau"}},
		{AlgorithmUCB, nil},
		{AlgorithmThompsonSampling, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStrategy(tt.name, hp, Seeds{})
			require.NoError(t, err)
			var names []string
			for _, p := range s.Parameters() {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

// === Epsilon-Greedy ===

func TestEpsilonGreedy_EpsilonZero_AlwaysExploits(t *testing.T) {
	// GIVEN epsilon = 0 and arm 2 with the best empirical mean
	eg, err := NewEpsilonGreedy(0, 1, 2)
	require.NoError(t, err)
	st := stateWith([]int{4, 4, 4}, []int{1, 2, 3})

	for turn := 4; turn < 200; turn++ {
		// WHEN scoring and selecting
		d, err := eg.Score(turn, st)
		require.NoError(t, err)
		arm, err := eg.Select(turn, d)
		require.NoError(t, err)

		// THEN the turn is never an explore turn and the best mean is chosen
		assert.False(t, d.Explore)
		assert.Equal(t, []float64{0.25, 0.5, 0.75}, d.Scores)
		assert.Equal(t, 2, arm)
	}
}

func TestEpsilonGreedy_EpsilonOne_AlwaysExplores(t *testing.T) {
	// GIVEN epsilon = 1
	eg, err := NewEpsilonGreedy(1, 1, 2)
	require.NoError(t, err)
	st := stateWith([]int{4, 4, 4}, []int{4, 0, 0})
	seen := make(map[int]bool)

	for turn := 4; turn < 300; turn++ {
		d, err := eg.Score(turn, st)
		require.NoError(t, err)
		arm, err := eg.Select(turn, d)
		require.NoError(t, err)

		// THEN every turn explores with sentinel scores and a uniform random arm
		assert.True(t, d.Explore)
		assert.Equal(t, []float64{1, 1, 1}, d.Scores)
		assert.Equal(t, NewRandomSource(2).Integer(turn, 0, 2), arm)
		seen[arm] = true
	}
	// and arms other than the best mean are reached
	assert.Len(t, seen, 3)
}

func TestEpsilonGreedy_DecisionSharedBetweenScoreAndSelect(t *testing.T) {
	// BDD: the explore flag is drawn once per turn from the epsilon seed
	eg, err := NewEpsilonGreedy(0.5, 31, 32)
	require.NoError(t, err)
	st := stateWith([]int{2, 2}, []int{0, 2})
	coin := NewRandomSource(31)

	for turn := 3; turn < 100; turn++ {
		d, err := eg.Score(turn, st)
		require.NoError(t, err)
		assert.Equal(t, coin.Uniform(turn) < 0.5, d.Explore, "turn %d", turn)
		arm, err := eg.Select(turn, d)
		require.NoError(t, err)
		if !d.Explore {
			assert.Equal(t, 1, arm)
		}
	}
}

func TestNewEpsilonGreedy_OutOfRange(t *testing.T) {
	for _, eps := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := NewEpsilonGreedy(eps, 1, 1)
		assert.Error(t, err, "epsilon %v", eps)
	}
}

// === UCB ===

func TestUCBScore_Formula(t *testing.T) {
	// mean 0.5 plus sqrt(2 ln 10 / 4)
	want := 0.5 + math.Sqrt(2*math.Log(10)/4)
	assert.InDelta(t, want, UCBScore(10, 2, 4), 1e-12)
}

func TestUCB_PrefersLessPulledArmAtEqualMean(t *testing.T) {
	u := NewUCB()
	st := stateWith([]int{10, 2}, []int{5, 1})
	d, err := u.Score(13, st)
	require.NoError(t, err)
	arm, err := u.Select(13, d)
	require.NoError(t, err)
	assert.Equal(t, 1, arm)
}

func TestUCB_UnpulledArm_Fails(t *testing.T) {
	_, err := NewUCB().Score(3, stateWith([]int{1, 0}, []int{1, 0}))
	assert.True(t, errors.Is(err, ErrUnpulledArm))
}

// === Softmax ===

func TestSoftmaxScore_Formula(t *testing.T) {
	got, err := SoftmaxScore(3, 4, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(1.5), got, 1e-12)
}

func TestSoftmaxScore_Preconditions(t *testing.T) {
	_, err := SoftmaxScore(0, 0, 0.1)
	assert.True(t, errors.Is(err, ErrUnpulledArm))

	_, err = SoftmaxScore(1, 2, 0)
	assert.True(t, errors.Is(err, ErrZeroTemperature))

	_, err = SoftmaxScore(1, 1, 1e-5)
	assert.True(t, errors.Is(err, ErrScoreOverflow))
}

func TestNewSoftmax_ZeroTau_Fails(t *testing.T) {
	_, err := NewSoftmax(0, 1)
	assert.True(t, errors.Is(err, ErrZeroTemperature))

	_, err = NewStrategy(AlgorithmSoftmax, Hyperparameters{Tau: 0}, Seeds{})
	assert.True(t, errors.Is(err, ErrZeroTemperature))
}

func TestSoftmax_Score_UnpulledArm_NeverNaN(t *testing.T) {
	s, err := NewSoftmax(0.1, 1)
	require.NoError(t, err)
	_, err = s.Score(3, stateWith([]int{1, 0}, []int{1, 0}))
	assert.True(t, errors.Is(err, ErrUnpulledArm))
}

func TestSoftmax_Select_KeyedByTurn(t *testing.T) {
	s, err := NewSoftmax(0.1, 8)
	require.NoError(t, err)
	st := stateWith([]int{3, 3, 3}, []int{1, 2, 3})
	for turn := 4; turn < 50; turn++ {
		d, err := s.Score(turn, st)
		require.NoError(t, err)
		a, err := s.Select(turn, d)
		require.NoError(t, err)
		b, err := s.Select(turn, d)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.GreaterOrEqual(t, a, 0)
		assert.Less(t, a, 3)
	}
}

func TestSoftmax_Select_FavorsHigherMean(t *testing.T) {
	// GIVEN means 0.1 and 0.9 with tau 0.1: weights e^1 vs e^9
	s, err := NewSoftmax(0.1, 21)
	require.NoError(t, err)
	st := stateWith([]int{10, 10}, []int{1, 9})
	counts := make([]int, 2)
	for turn := 21; turn < 1021; turn++ {
		d, err := s.Score(turn, st)
		require.NoError(t, err)
		arm, err := s.Select(turn, d)
		require.NoError(t, err)
		counts[arm]++
	}
	assert.Greater(t, counts[1], 950)
}

// === Thompson Sampling ===

func TestThompsonSampling_SamplesInUnitIntervalAndDeterministic(t *testing.T) {
	ts := NewThompsonSampling(17, 18)
	st := stateWith([]int{5, 5}, []int{1, 4})
	for turn := 3; turn < 100; turn++ {
		d1, err := ts.Score(turn, st)
		require.NoError(t, err)
		d2, err := NewThompsonSampling(17, 99).Score(turn, st)
		require.NoError(t, err)
		assert.Equal(t, d1.Scores, d2.Scores, "random arm seed must not affect scores")
		for _, s := range d1.Scores {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
		arm, err := ts.Select(turn, d1)
		require.NoError(t, err)
		assert.Equal(t, Argmax(d1.Scores), arm)
	}
}

func TestThompsonSample_PosteriorMean(t *testing.T) {
	// GIVEN 80 successes out of 100 pulls: Beta(81, 21), mean ≈ 0.794
	src := NewRandomSource(3)
	sum := 0.0
	const n = 2000
	for turn := 1; turn <= n; turn++ {
		sum += ThompsonSample(80, 100, src, turn)
	}
	assert.InDelta(t, 81.0/102.0, sum/n, 0.01)
}

func TestStrategies_SelectEmptyDecision_NoArmSelected(t *testing.T) {
	for _, name := range AlgorithmNames() {
		t.Run(name, func(t *testing.T) {
			s, err := NewStrategy(name, Hyperparameters{Epsilon: 0.5, Tau: 0.1}, Seeds{})
			require.NoError(t, err)
			_, err = s.Select(3, Decision{})
			assert.True(t, errors.Is(err, ErrNoArmSelected))
		})
	}
}
