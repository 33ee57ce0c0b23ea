package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/samba-sim/samba-sim/sim"
	"github.com/samba-sim/samba-sim/sim/trace"
)

// Result is the outcome of one job.
type Result struct {
	Job      Job
	Record   trace.Record
	Summary  *trace.Summary
	Times    sim.ComponentTimes
	Duration time.Duration
}

// ProgressFunc is called after each completed job. Calls are serialized.
type ProgressFunc func(done, total int, job Job)

// Runner executes a plan on a bounded worker pool.
type Runner struct {
	Workers  int
	Progress ProgressFunc
	Metrics  *Metrics
}

// NewRunner creates a runner with the given pool size. Values below 1 run
// jobs one at a time.
func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{Workers: workers}
}

// Run executes every job of the plan and returns the results in job order.
// The first failing job cancels the remaining ones and its error is returned.
func (r *Runner) Run(ctx context.Context, plan *Plan) ([]Result, error) {
	results := make([]Result, plan.Len())
	total := plan.Len()

	var mu sync.Mutex
	done := 0

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i := range plan.Jobs {
		job := plan.Jobs[i]
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := RunJob(gCtx, job, plan.Config.Hyperparameters)
			if err != nil {
				return err
			}
			results[job.Index] = res
			if r.Metrics != nil {
				r.Metrics.Observe(res)
			}

			mu.Lock()
			done++
			if r.Progress != nil {
				r.Progress(done, total, job)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logrus.Debugf("Batch complete: %d runs on %d workers", total, r.Workers)
	return results, nil
}

// RunJob plays the job's recorded run, then times a fresh strategy instance
// over the same probabilities.
func RunJob(ctx context.Context, job Job, hp sim.Hyperparameters) (Result, error) {
	start := time.Now()
	label := fmt.Sprintf("%s k=%d threshold=%s budget=%d %s#%d",
		job.Entry.Dataset, job.Entry.ArmCount, job.Entry.Threshold, job.Budget, job.Algorithm, job.Iteration)

	strategy, err := sim.NewStrategy(job.Algorithm, hp, job.Seeds)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", label, err)
	}
	engine, err := sim.NewEngine(job.Entry.Probs, job.Seeds.Reward, strategy)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", label, err)
	}
	history, err := engine.Play(ctx, job.Budget)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", label, err)
	}

	timed, err := sim.NewStrategy(job.Algorithm, hp, job.TimingSeeds)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", label, err)
	}
	harness, err := sim.NewTimingHarness(job.Entry.Probs, job.TimingSeeds.Reward, job.PermSeed, timed)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", label, err)
	}
	times, err := harness.Time(ctx, job.Budget)
	if err != nil {
		return Result{}, fmt.Errorf("%s: timing: %w", label, err)
	}

	rec := history.Export()
	return Result{
		Job:      job,
		Record:   rec,
		Summary:  trace.Summarize(rec),
		Times:    times,
		Duration: time.Since(start),
	}, nil
}
