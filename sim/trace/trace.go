package trace

import (
	"errors"
	"fmt"
	"time"
)

// ErrOutOfOrder is returned when history entries are recorded out of sequence.
var ErrOutOfOrder = errors.New("execution history recorded out of order")

// ExecutionHistory is the append-only record of one run.
//
// Recording order: AddParameter (any number), AddInitialExploration once,
// AddTurn once per adaptive turn in increasing turn order, AddExecutionTime once.
type ExecutionHistory struct {
	probs              []float64
	budget             int
	params             []Parameter
	initialExploration *InitialExploration
	turns              []TurnRecord
	executionTime      *time.Duration
}

// NewExecutionHistory creates an empty history for a run over probs with the given budget.
func NewExecutionHistory(probs []float64, budget int) *ExecutionHistory {
	return &ExecutionHistory{
		probs:  append([]float64(nil), probs...),
		budget: budget,
		params: make([]Parameter, 0),
		turns:  make([]TurnRecord, 0, max(budget-len(probs), 0)),
	}
}

// AddParameter appends a named algorithm parameter.
func (h *ExecutionHistory) AddParameter(name string, value float64) {
	h.params = append(h.params, Parameter{Name: name, Value: value})
}

// AddInitialExploration records the counters after the initial exploration phase.
func (h *ExecutionHistory) AddInitialExploration(rewards, pulls []int) error {
	if h.initialExploration != nil || len(h.turns) > 0 {
		return fmt.Errorf("%w: initial exploration already recorded", ErrOutOfOrder)
	}
	h.initialExploration = &InitialExploration{
		Rewards: append([]int(nil), rewards...),
		Pulls:   append([]int(nil), pulls...),
	}
	return nil
}

// AddTurn appends one adaptive turn. The cumulative reward is derived from the
// previous turn, or from the initial exploration rewards for the first turn.
func (h *ExecutionHistory) AddTurn(turn int, scores []float64, selectedArm, reward int, nbPulls, nbRewards []int) error {
	if h.initialExploration == nil {
		return fmt.Errorf("%w: turn %d before initial exploration", ErrOutOfOrder, turn)
	}
	if h.executionTime != nil {
		return fmt.Errorf("%w: turn %d after execution time", ErrOutOfOrder, turn)
	}
	var cumulative int
	if n := len(h.turns); n > 0 {
		last := h.turns[n-1]
		if turn <= last.Turn {
			return fmt.Errorf("%w: turn %d after turn %d", ErrOutOfOrder, turn, last.Turn)
		}
		cumulative = last.CumulativeReward + reward
	} else {
		cumulative = sumInts(h.initialExploration.Rewards) + reward
	}
	h.turns = append(h.turns, TurnRecord{
		Turn:             turn,
		Scores:           append([]float64(nil), scores...),
		SelectedArm:      selectedArm,
		Reward:           reward,
		CumulativeReward: cumulative,
		NbRewards:        append([]int(nil), nbRewards...),
		NbPulls:          append([]int(nil), nbPulls...),
	})
	return nil
}

// AddExecutionTime records the total wall-clock duration of the run.
func (h *ExecutionHistory) AddExecutionTime(d time.Duration) error {
	if h.executionTime != nil {
		return fmt.Errorf("%w: execution time already recorded", ErrOutOfOrder)
	}
	h.executionTime = &d
	return nil
}

// Len returns the number of adaptive turns recorded.
func (h *ExecutionHistory) Len() int {
	return len(h.turns)
}

// CumulativeReward returns the cumulative reward reached so far.
func (h *ExecutionHistory) CumulativeReward() int {
	if n := len(h.turns); n > 0 {
		return h.turns[n-1].CumulativeReward
	}
	if h.initialExploration != nil {
		return sumInts(h.initialExploration.Rewards)
	}
	return 0
}

// Export projects the history onto the flat export schema.
// Export is pure: it deep-copies every slice, so calling it repeatedly returns
// equal records and mutating a record never affects the history.
func (h *ExecutionHistory) Export() Record {
	rec := Record{
		Params: append([]Parameter{}, h.params...),
		NbArms: len(h.probs),
		Probs:  append([]float64{}, h.probs...),
		Budget: h.budget,
		InitialExploration: InitialExploration{
			Rewards: []int{},
			Pulls:   []int{},
		},
		Turns:         make([]TurnRecord, len(h.turns)),
		ExecutionTime: ExecutionTime{Budget: h.budget},
	}
	if h.initialExploration != nil {
		rec.InitialExploration.Rewards = append(rec.InitialExploration.Rewards, h.initialExploration.Rewards...)
		rec.InitialExploration.Pulls = append(rec.InitialExploration.Pulls, h.initialExploration.Pulls...)
	}
	for i, turn := range h.turns {
		turn.Scores = append([]float64{}, turn.Scores...)
		turn.NbRewards = append([]int{}, turn.NbRewards...)
		turn.NbPulls = append([]int{}, turn.NbPulls...)
		rec.Turns[i] = turn
	}
	if h.executionTime != nil {
		rec.ExecutionTime.Time = h.executionTime.Seconds()
	}
	return rec
}

func sumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
