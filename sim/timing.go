package sim

import (
	"context"
	"fmt"
	"time"
)

// Stopwatch accumulates elapsed monotonic time over repeated scopes.
// Scopes must not be nested: starting a running stopwatch restarts the
// current scope and discards its elapsed time so far.
type Stopwatch struct {
	total   time.Duration
	start   time.Time
	running bool
}

// Start opens a scope.
func (sw *Stopwatch) Start() {
	sw.start = time.Now()
	sw.running = true
}

// Stop closes the current scope and adds its duration to the total.
// Stop on a stopped stopwatch is a no-op.
func (sw *Stopwatch) Stop() {
	if !sw.running {
		return
	}
	sw.total += time.Since(sw.start)
	sw.running = false
}

// Time runs fn inside one scope.
func (sw *Stopwatch) Time(fn func()) {
	sw.Start()
	defer sw.Stop()
	fn()
}

// Elapsed returns the accumulated duration of closed scopes.
func (sw *Stopwatch) Elapsed() time.Duration {
	return sw.total
}

// ComponentTimes holds the elapsed seconds attributed to each component of the
// architecture during one timed run, or their mean across runs.
type ComponentTimes struct {
	Comp       float64   `json:"comp"`
	Controller float64   `json:"controller"`
	Customer   float64   `json:"customer"`
	Arms       []float64 `json:"arms"`
}

// TimingHarness replays the engine's turn loop with per-component stopwatches
// instead of history recording.
//
// Regions per turn: arms[i] covers scoring and pulling arm i; controller covers
// forwarding the scores (permuted, so the selecting component never sees arm
// identities) and the final reward sum; comp covers selection; customer covers
// the final hand-off of the cumulative reward.
type TimingHarness struct {
	arms       []BernoulliArm
	state      *State
	strategy   Strategy
	permSeed   int64
	comp       Stopwatch
	controller Stopwatch
	customer   Stopwatch
	armClocks  []Stopwatch
}

// NewTimingHarness creates a harness for a fresh strategy instance.
func NewTimingHarness(probs []float64, rewardSeed, permSeed int64, strategy Strategy) (*TimingHarness, error) {
	if err := ValidateProbabilities(probs); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("timing harness requires a strategy")
	}
	h := &TimingHarness{
		arms:      newArms(probs, rewardSeed),
		state:     NewState(len(probs)),
		strategy:  strategy,
		permSeed:  permSeed,
		armClocks: make([]Stopwatch, len(probs)),
	}
	h.state.probe = func(arm int, fn func()) { h.armClocks[arm].Time(fn) }
	return h, nil
}

func (h *TimingHarness) pull(turn, arm int) (int, error) {
	if arm < 0 || arm >= len(h.arms) {
		return 0, fmt.Errorf("%w: turn %d selected arm %d of %d", ErrNoArmSelected, turn, arm, len(h.arms))
	}
	var reward int
	h.armClocks[arm].Time(func() {
		reward = h.arms[arm].Pull(turn)
		h.state.Record(arm, reward)
	})
	return reward, nil
}

// Time runs the instrumented loop for budget turns. A harness runs once.
func (h *TimingHarness) Time(ctx context.Context, budget int) (ComponentTimes, error) {
	k := len(h.arms)
	if budget <= k {
		return ComponentTimes{}, fmt.Errorf("%w: budget %d, %d arms", ErrBudgetTooSmall, budget, k)
	}
	if h.state.TotalPulls() != 0 {
		return ComponentTimes{}, ErrAlreadyPlayed
	}

	turn := 1
	for arm := 0; arm < k; arm++ {
		if _, err := h.pull(turn, arm); err != nil {
			return ComponentTimes{}, err
		}
		turn++
	}

	for ; turn <= budget; turn++ {
		if err := ctx.Err(); err != nil {
			return ComponentTimes{}, fmt.Errorf("timing cancelled at turn %d: %w", turn, err)
		}
		decision, err := h.strategy.Score(turn, h.state)
		if err != nil {
			return ComponentTimes{}, fmt.Errorf("turn %d: scoring: %w", turn, err)
		}

		var perm *Permutation
		h.controller.Time(func() {
			perm = NewPermutation(k, h.permSeed, turn)
			decision.Scores, err = Permute(perm, decision.Scores)
		})
		if err != nil {
			return ComponentTimes{}, err
		}

		var arm int
		h.comp.Time(func() { arm, err = h.strategy.Select(turn, decision) })
		if err != nil {
			return ComponentTimes{}, fmt.Errorf("turn %d: selection: %w", turn, err)
		}
		if arm < 0 || arm >= k {
			return ComponentTimes{}, fmt.Errorf("%w: turn %d selected arm %d of %d", ErrNoArmSelected, turn, arm, k)
		}
		h.controller.Time(func() { arm = perm.InvertIndex(arm) })

		if _, err := h.pull(turn, arm); err != nil {
			return ComponentTimes{}, err
		}
	}

	var cumulative int
	h.controller.Time(func() { cumulative = h.state.TotalRewards() })
	h.customer.Time(func() { _ = cumulative })

	times := ComponentTimes{
		Comp:       h.comp.Elapsed().Seconds(),
		Controller: h.controller.Elapsed().Seconds(),
		Customer:   h.customer.Elapsed().Seconds(),
		Arms:       make([]float64, k),
	}
	for i := range h.armClocks {
		times.Arms[i] = h.armClocks[i].Elapsed().Seconds()
	}
	return times, nil
}
