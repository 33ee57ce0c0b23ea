package batch

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/samba-sim/samba-sim/sim"
)

// maxSeed bounds the drawn run seeds to [1, maxSeed].
const maxSeed = 10000

// Config holds the batch parameters shared by every job.
type Config struct {
	Budgets         []int
	Iterations      int
	Algorithms      []string
	Hyperparameters sim.Hyperparameters
	Seed            int64
}

// Job is one (entry, budget, algorithm, iteration) run.
// Seeds drive the recorded run; TimingSeeds and PermSeed drive the separate
// timed replay, which uses a fresh strategy instance.
type Job struct {
	Index       int
	Entry       Entry
	Budget      int
	Algorithm   string
	Iteration   int
	Seeds       sim.Seeds
	TimingSeeds sim.Seeds
	PermSeed    int64
}

// GroupKey identifies the jobs sharing one output folder and one aggregated
// timing file.
type GroupKey struct {
	Dataset   string
	ArmCount  int
	Threshold string
	Budget    int
}

// Group returns the job's group key.
func (j Job) Group() GroupKey {
	return GroupKey{Dataset: j.Entry.Dataset, ArmCount: j.Entry.ArmCount, Threshold: j.Entry.Threshold, Budget: j.Budget}
}

// Plan is the fully expanded, seeded job list of a batch.
type Plan struct {
	Config Config
	Jobs   []Job
}

// NewPlan expands entries × budgets × algorithms × iterations into jobs, in
// that nesting order. Every seed is drawn here, before any job runs, so the
// seeds depend only on the master seed and the configuration.
func NewPlan(entries []Entry, cfg Config) (*Plan, error) {
	if len(entries) == 0 {
		return nil, errors.New("batch has no probability entries")
	}
	if len(cfg.Budgets) == 0 {
		return nil, errors.New("batch has no budgets")
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be >= 1, got %d", cfg.Iterations)
	}
	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = sim.AlgorithmNames()
	}
	for _, name := range cfg.Algorithms {
		if !sim.IsValidAlgorithm(name) {
			return nil, fmt.Errorf("cannot create an instance of %q: %w", name, sim.ErrAlgorithmNotFound)
		}
	}
	for _, e := range entries {
		for _, b := range cfg.Budgets {
			if b <= e.ArmCount {
				return nil, fmt.Errorf("%s k=%d threshold=%s: %w: budget %d",
					e.Dataset, e.ArmCount, e.Threshold, sim.ErrBudgetTooSmall, b)
			}
		}
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	seedRNG := rng.ForSubsystem(sim.SubsystemSeeds)
	permRNG := rng.ForSubsystem(sim.SubsystemPermutation)

	plan := &Plan{Config: cfg}
	for _, e := range entries {
		for _, b := range cfg.Budgets {
			for _, algo := range cfg.Algorithms {
				for it := 0; it < cfg.Iterations; it++ {
					plan.Jobs = append(plan.Jobs, Job{
						Index:       len(plan.Jobs),
						Entry:       e,
						Budget:      b,
						Algorithm:   algo,
						Iteration:   it,
						Seeds:       drawSeeds(seedRNG, algo),
						TimingSeeds: drawSeeds(seedRNG, algo),
						PermSeed:    DrawSeed(permRNG),
					})
				}
			}
		}
	}
	return plan, nil
}

// Len returns the number of jobs.
func (p *Plan) Len() int {
	return len(p.Jobs)
}

// DrawSeed draws a run seed in [1, 10000].
func DrawSeed(rng *rand.Rand) int64 {
	return 1 + rng.Int64N(maxSeed)
}

// drawSeeds draws the seeds the named algorithm consumes. The other fields
// stay zero and are omitted from the manifest.
func drawSeeds(rng *rand.Rand, algorithm string) sim.Seeds {
	s := sim.Seeds{Reward: DrawSeed(rng)}
	switch algorithm {
	case sim.AlgorithmSoftmax:
		s.RandomArm = DrawSeed(rng)
	case sim.AlgorithmThompsonSampling:
		s.Beta = DrawSeed(rng)
		s.RandomArm = DrawSeed(rng)
	case sim.AlgorithmEpsilonGreedy:
		s.Epsilon = DrawSeed(rng)
		s.RandomArm = DrawSeed(rng)
	}
	return s
}
