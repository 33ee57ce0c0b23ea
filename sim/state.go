package sim

// State holds the per-run counters shared by the engine and its strategy.
// Pulls and Rewards start at zero and are incremented exactly once per pull.
type State struct {
	Pulls   []int
	Rewards []int

	// probe wraps per-arm work when the run is being timed. Nil otherwise.
	probe func(arm int, fn func())
}

// NewState creates zeroed counters for k arms.
func NewState(k int) *State {
	return &State{
		Pulls:   make([]int, k),
		Rewards: make([]int, k),
	}
}

// NumArms returns the number of arms.
func (s *State) NumArms() int {
	return len(s.Pulls)
}

// Mean returns the empirical mean reward of arm. The caller guarantees
// Pulls[arm] > 0.
func (s *State) Mean(arm int) float64 {
	return float64(s.Rewards[arm]) / float64(s.Pulls[arm])
}

// TotalPulls returns sum(Pulls), which equals the last turn reached.
func (s *State) TotalPulls() int {
	total := 0
	for _, n := range s.Pulls {
		total += n
	}
	return total
}

// TotalRewards returns sum(Rewards).
func (s *State) TotalRewards() int {
	total := 0
	for _, r := range s.Rewards {
		total += r
	}
	return total
}

// Record adds one pull of arm with the given reward.
func (s *State) Record(arm, reward int) {
	s.Pulls[arm]++
	s.Rewards[arm] += reward
}

// Snapshot returns copies of the pull and reward counters.
func (s *State) Snapshot() (pulls, rewards []int) {
	return append([]int(nil), s.Pulls...), append([]int(nil), s.Rewards...)
}

// ScoreEach evaluates score for every arm in index order and returns the scores.
// The first error aborts the evaluation.
func (s *State) ScoreEach(score func(arm int) (float64, error)) ([]float64, error) {
	scores := make([]float64, s.NumArms())
	for arm := range scores {
		var err error
		s.within(arm, func() { scores[arm], err = score(arm) })
		if err != nil {
			return nil, err
		}
	}
	return scores, nil
}

// within runs fn, attributing its cost to arm when a probe is attached.
func (s *State) within(arm int, fn func()) {
	if s.probe == nil {
		fn()
		return
	}
	s.probe(arm, fn)
}
