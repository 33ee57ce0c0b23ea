// Package trace records the execution history of one bandit run and projects
// it onto the flat export schema consumed by the replay service.
// It has no dependencies on sim/ and stores pure data types only.
package trace

// Parameter is a named algorithm parameter reported with a run (e.g. epsilon, tau).
type Parameter struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// InitialExploration captures the counters after one pull per arm.
type InitialExploration struct {
	Rewards []int `json:"rewards"`
	Pulls   []int `json:"pulls"`
}

// TurnRecord captures a single adaptive turn.
type TurnRecord struct {
	Turn             int       `json:"turn"`
	Scores           []float64 `json:"scores"`
	SelectedArm      int       `json:"selected_arm"`
	Reward           int       `json:"reward"`
	CumulativeReward int       `json:"cumulative_reward"` // rewards up to and including Turn, initial exploration included
	NbRewards        []int     `json:"nb_rewards"`
	NbPulls          []int     `json:"nb_pulls"`
}

// ExecutionTime captures the wall-clock duration of a run.
type ExecutionTime struct {
	Time   float64 `json:"time"` // seconds
	Budget int     `json:"budget"`
}

// Record is the flat export of one run: one JSON object per file.
type Record struct {
	Params             []Parameter        `json:"params"`
	NbArms             int                `json:"nb_arms"`
	Probs              []float64          `json:"probs"`
	Budget             int                `json:"budget"`
	InitialExploration InitialExploration `json:"initial_exploration"`
	Turns              []TurnRecord       `json:"turns"`
	ExecutionTime      ExecutionTime      `json:"execution_time"`
}
