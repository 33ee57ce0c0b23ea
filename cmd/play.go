package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samba-sim/samba-sim/sim"
	"github.com/samba-sim/samba-sim/sim/batch"
	"github.com/samba-sim/samba-sim/sim/trace"
)

var (
	playProbs      []float64
	playAlgorithm  string
	playBudget     int
	playSeed       int64
	playSeeds      sim.Seeds
	playEpsilon    float64
	playTau        float64
	playOutputPath string
)

// playCmd runs one strategy once and prints its exported record
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play one run and print its execution history as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		if !sim.IsValidAlgorithm(playAlgorithm) {
			logrus.Fatalf("Unknown algorithm %q: %v (valid: %v)", playAlgorithm, sim.ErrAlgorithmNotFound, sim.AlgorithmNames())
		}
		seeds := fillSeeds(playSeeds, playSeed)
		logrus.Debugf("Seeds: %+v", seeds)

		rec, err := playOnce(cmd.Context(), playProbs, playAlgorithm, playBudget,
			sim.Hyperparameters{Epsilon: playEpsilon, Tau: playTau}, seeds)
		if err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}

		var w io.Writer = os.Stdout
		if playOutputPath != "" {
			f, err := os.Create(playOutputPath)
			if err != nil {
				logrus.Fatalf("Cannot create output file: %v", err)
			}
			defer f.Close()
			w = f
		}
		if err := writeRecord(w, rec); err != nil {
			logrus.Fatalf("%v", err)
		}

		s := trace.Summarize(rec)
		logrus.Infof("%s: cumulative reward %d/%d, best arm %d selected %.1f%% of adaptive turns, expected regret %.2f",
			playAlgorithm, s.CumulativeReward, rec.Budget, s.BestArm, 100*s.BestArmRate, s.ExpectedRegret)
	},
}

// fillSeeds replaces unset (zero) seeds with draws from the master seed.
func fillSeeds(seeds sim.Seeds, master int64) sim.Seeds {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(master)).ForSubsystem(sim.SubsystemSeeds)
	for _, s := range []*int64{&seeds.Reward, &seeds.Epsilon, &seeds.RandomArm, &seeds.Beta} {
		drawn := batch.DrawSeed(rng)
		if *s == 0 {
			*s = drawn
		}
	}
	return seeds
}

// playOnce runs the named strategy for budget turns and exports its history.
func playOnce(ctx context.Context, probs []float64, algorithm string, budget int,
	hp sim.Hyperparameters, seeds sim.Seeds) (trace.Record, error) {
	strategy, err := sim.NewStrategy(algorithm, hp, seeds)
	if err != nil {
		return trace.Record{}, err
	}
	engine, err := sim.NewEngine(probs, seeds.Reward, strategy)
	if err != nil {
		return trace.Record{}, err
	}
	history, err := engine.Play(ctx, budget)
	if err != nil {
		return trace.Record{}, err
	}
	return history.Export(), nil
}

func writeRecord(w io.Writer, rec trace.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return nil
}

func init() {
	playCmd.Flags().Float64SliceVar(&playProbs, "probs", nil, "Comma-separated arm success probabilities")
	playCmd.Flags().StringVar(&playAlgorithm, "algorithm", sim.AlgorithmUCB, "Algorithm name (see `samba-sim algorithms`)")
	playCmd.Flags().IntVar(&playBudget, "budget", 100, "Total number of turns, initial exploration included")
	playCmd.Flags().Int64Var(&playSeed, "seed", 42, "Master seed for every seed not given explicitly")
	playCmd.Flags().Int64Var(&playSeeds.Reward, "reward-seed", 0, "Seed of the arm rewards (0: drawn)")
	playCmd.Flags().Int64Var(&playSeeds.Epsilon, "epsilon-seed", 0, "Seed of the epsilon-greedy coin (0: drawn)")
	playCmd.Flags().Int64Var(&playSeeds.RandomArm, "random-arm-seed", 0, "Seed of random arm draws (0: drawn)")
	playCmd.Flags().Int64Var(&playSeeds.Beta, "beta-seed", 0, "Seed of Thompson sampling Beta draws (0: drawn)")
	playCmd.Flags().Float64Var(&playEpsilon, "epsilon", 0.1, "Epsilon-greedy exploration rate")
	playCmd.Flags().Float64Var(&playTau, "tau", 0.1, "Softmax temperature")
	playCmd.Flags().StringVar(&playOutputPath, "output", "", "Write the record to this file instead of stdout")
	_ = playCmd.MarkFlagRequired("probs")

	rootCmd.AddCommand(playCmd)
}
