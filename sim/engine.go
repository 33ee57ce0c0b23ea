package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/samba-sim/samba-sim/sim/trace"
)

var (
	// ErrBudgetTooSmall is returned when the budget does not exceed the arm count.
	ErrBudgetTooSmall = errors.New("budget must exceed the number of arms")
	// ErrInvalidProbability is returned for an empty or out-of-range probability vector.
	ErrInvalidProbability = errors.New("invalid arm probability")
	// ErrAlreadyPlayed is returned when Play is called on an engine that already ran.
	ErrAlreadyPlayed = errors.New("engine already played")
)

// Phase is a state of the engine's play loop.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseInitialExploration
	PhaseAdaptiveExploration
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseInitialExploration:
		return "INITIAL_EXPLORATION"
	case PhaseAdaptiveExploration:
		return "ADAPTIVE_EXPLORATION"
	case PhaseDone:
		return "DONE"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Engine drives one run of a strategy over K simulated arms.
//
// Play moves through INIT → INITIAL_EXPLORATION → ADAPTIVE_EXPLORATION → DONE.
// Initial exploration pulls arm turn-1 at turns 1..K, so every arm has been
// pulled once before the strategy scores anything. Each turn's random draws are
// keyed by the turn index, so turns are computed strictly in order.
//
// Thread-safety: NOT thread-safe. Distinct engines share no mutable state and
// may run concurrently.
type Engine struct {
	probs    []float64
	arms     []BernoulliArm
	state    *State
	strategy Strategy
	phase    Phase
}

// ValidateProbabilities checks that probs is non-empty and every value is in [0, 1].
func ValidateProbabilities(probs []float64) error {
	if len(probs) == 0 {
		return fmt.Errorf("%w: no arms", ErrInvalidProbability)
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probs[%d] = %v", ErrInvalidProbability, i, p)
		}
	}
	return nil
}

// NewEngine creates an engine in the INIT phase: one arm per probability, all
// driven by rewardSeed, with zeroed counters.
func NewEngine(probs []float64, rewardSeed int64, strategy Strategy) (*Engine, error) {
	if err := ValidateProbabilities(probs); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, errors.New("engine requires a strategy")
	}
	return &Engine{
		probs:    append([]float64(nil), probs...),
		arms:     newArms(probs, rewardSeed),
		state:    NewState(len(probs)),
		strategy: strategy,
		phase:    PhaseInit,
	}, nil
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// State returns the run counters.
func (e *Engine) State() *State {
	return e.state
}

// pull pulls arm at turn and updates the counters.
func (e *Engine) pull(turn, arm int) (int, error) {
	if arm < 0 || arm >= len(e.arms) {
		return 0, fmt.Errorf("%w: turn %d selected arm %d of %d", ErrNoArmSelected, turn, arm, len(e.arms))
	}
	reward := e.arms[arm].Pull(turn)
	e.state.Record(arm, reward)
	return reward, nil
}

// Play runs the strategy for budget turns and returns the completed history.
// The context is checked at every turn boundary. Any strategy contract
// violation aborts the run with an error.
func (e *Engine) Play(ctx context.Context, budget int) (*trace.ExecutionHistory, error) {
	if e.phase != PhaseInit {
		return nil, ErrAlreadyPlayed
	}
	k := len(e.arms)
	if budget <= k {
		return nil, fmt.Errorf("%w: budget %d, %d arms", ErrBudgetTooSmall, budget, k)
	}

	history := trace.NewExecutionHistory(e.probs, budget)
	for _, p := range e.strategy.Parameters() {
		history.AddParameter(p.Name, p.Value)
	}

	start := time.Now()

	e.phase = PhaseInitialExploration
	rewards := make([]int, k)
	turn := 1
	for arm := 0; arm < k; arm++ {
		reward, err := e.pull(turn, arm)
		if err != nil {
			return nil, err
		}
		rewards[arm] = reward
		turn++
	}
	if err := history.AddInitialExploration(rewards, e.state.Pulls); err != nil {
		return nil, err
	}

	e.phase = PhaseAdaptiveExploration
	for ; turn <= budget; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled at turn %d: %w", turn, err)
		}
		decision, err := e.strategy.Score(turn, e.state)
		if err != nil {
			return nil, fmt.Errorf("turn %d: scoring: %w", turn, err)
		}
		arm, err := e.strategy.Select(turn, decision)
		if err != nil {
			return nil, fmt.Errorf("turn %d: selection: %w", turn, err)
		}
		reward, err := e.pull(turn, arm)
		if err != nil {
			return nil, err
		}
		logrus.Tracef("[turn %06d] arm=%d reward=%d explore=%v", turn, arm, reward, decision.Explore)
		if err := history.AddTurn(turn, decision.Scores, arm, reward, e.state.Pulls, e.state.Rewards); err != nil {
			return nil, err
		}
	}

	if err := history.AddExecutionTime(time.Since(start)); err != nil {
		return nil, err
	}
	e.phase = PhaseDone
	logrus.Debugf("Run complete: %d turns, cumulative reward %d", budget, history.CumulativeReward())
	return history, nil
}
