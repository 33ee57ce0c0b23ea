package trace

import "gonum.org/v1/gonum/floats"

// Summary aggregates statistics from an exported Record.
type Summary struct {
	AdaptiveTurns    int
	CumulativeReward int
	MeanReward       float64 // CumulativeReward / Budget
	BestArm          int     // arm with the highest true probability, first on ties
	BestArmRate      float64 // fraction of adaptive turns that selected BestArm
	ExpectedRegret   float64 // sum over all pulls of (p_best - p_selected)
	SelectionCounts  []int   // adaptive-turn selections per arm
}

// Summarize computes aggregate statistics from a Record.
// Safe for empty records (returns zero-value fields).
func Summarize(rec Record) *Summary {
	summary := &Summary{
		SelectionCounts: make([]int, len(rec.Probs)),
		BestArm:         -1,
	}
	if len(rec.Probs) == 0 {
		return summary
	}
	summary.BestArm = floats.MaxIdx(rec.Probs)
	best := rec.Probs[summary.BestArm]

	for arm, n := range rec.InitialExploration.Pulls {
		if arm < len(rec.Probs) {
			summary.ExpectedRegret += float64(n) * (best - rec.Probs[arm])
		}
	}
	summary.CumulativeReward = sumInts(rec.InitialExploration.Rewards)

	for _, turn := range rec.Turns {
		if turn.SelectedArm < 0 || turn.SelectedArm >= len(rec.Probs) {
			continue
		}
		summary.SelectionCounts[turn.SelectedArm]++
		summary.ExpectedRegret += best - rec.Probs[turn.SelectedArm]
		summary.CumulativeReward = turn.CumulativeReward
	}
	summary.AdaptiveTurns = len(rec.Turns)
	if summary.AdaptiveTurns > 0 {
		summary.BestArmRate = float64(summary.SelectionCounts[summary.BestArm]) / float64(summary.AdaptiveTurns)
	}
	if rec.Budget > 0 {
		summary.MeanReward = float64(summary.CumulativeReward) / float64(rec.Budget)
	}
	return summary
}
