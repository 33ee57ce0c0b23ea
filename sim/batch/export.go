package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samba-sim/samba-sim/sim"
)

// File names of the export layout.
const (
	TimingFileName   = "execution_time_by_components.json"
	ManifestFileName = "manifest.json"
	MetricsFileName  = "metrics.prom"
)

// GroupDir returns the folder name of a group. The budget suffix is only
// added when the batch spans several budgets.
func GroupDir(key GroupKey, multiBudget bool) string {
	name := fmt.Sprintf("%s_%d_%s", key.Dataset, key.ArmCount, key.Threshold)
	if multiBudget {
		name += fmt.Sprintf("_b%d", key.Budget)
	}
	return name
}

// RecordFileName returns the file name of one exported run.
func RecordFileName(algorithm string, iteration int) string {
	return fmt.Sprintf("execution_%s_%d.json", algorithm, iteration)
}

// Manifest describes a completed batch: its identity, configuration and the
// seeds of every run, enough to replay any of them.
type Manifest struct {
	BatchID         string              `json:"batch_id"`
	CreatedAt       time.Time           `json:"created_at"`
	Seed            int64               `json:"seed"`
	Budgets         []int               `json:"budgets"`
	Iterations      int                 `json:"iterations"`
	Algorithms      []string            `json:"algorithms"`
	Hyperparameters sim.Hyperparameters `json:"hyperparameters"`
	Runs            []ManifestRun       `json:"runs"`
}

// ManifestRun is the manifest line of one run.
type ManifestRun struct {
	File             string    `json:"file"`
	Dataset          string    `json:"dataset"`
	ArmCount         int       `json:"nb_arms"`
	Threshold        string    `json:"threshold"`
	Budget           int       `json:"budget"`
	Algorithm        string    `json:"algorithm"`
	Iteration        int       `json:"iteration"`
	Seeds            sim.Seeds `json:"seeds"`
	TimingSeeds      sim.Seeds `json:"timing_seeds"`
	PermSeed         int64     `json:"perm_seed"`
	CumulativeReward int       `json:"cumulative_reward"`
}

// Exporter writes batch results under Dir.
type Exporter struct {
	Dir     string
	Metrics *Metrics
}

// Export writes one record file per run, one timing file per group, the
// manifest and, when metrics are attached, the metrics file.
func (e *Exporter) Export(plan *Plan, results []Result) (*Manifest, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	multiBudget := len(plan.Config.Budgets) > 1

	manifest := &Manifest{
		BatchID:         uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Seed:            plan.Config.Seed,
		Budgets:         plan.Config.Budgets,
		Iterations:      plan.Config.Iterations,
		Algorithms:      plan.Config.Algorithms,
		Hyperparameters: plan.Config.Hyperparameters,
	}

	for _, group := range GroupResults(results) {
		dir := GroupDir(group.Key, multiBudget)
		if err := os.MkdirAll(filepath.Join(e.Dir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("creating group directory: %w", err)
		}
		for _, r := range group.Results {
			file := filepath.Join(dir, RecordFileName(r.Job.Algorithm, r.Job.Iteration))
			if err := writeJSON(filepath.Join(e.Dir, file), r.Record, false); err != nil {
				return nil, err
			}
			manifest.Runs = append(manifest.Runs, manifestRun(file, r))
		}
		mean, err := group.Times()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		if err := writeJSON(filepath.Join(e.Dir, dir, TimingFileName), mean, false); err != nil {
			return nil, err
		}
		logrus.Debugf("Exported %d runs to %s", len(group.Results), dir)
	}

	if err := writeJSON(filepath.Join(e.Dir, ManifestFileName), manifest, true); err != nil {
		return nil, err
	}
	if e.Metrics != nil {
		if err := e.Metrics.WriteToTextfile(filepath.Join(e.Dir, MetricsFileName)); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
	}
	return manifest, nil
}

func manifestRun(file string, r Result) ManifestRun {
	run := ManifestRun{
		File:        file,
		Dataset:     r.Job.Entry.Dataset,
		ArmCount:    r.Job.Entry.ArmCount,
		Threshold:   r.Job.Entry.Threshold,
		Budget:      r.Job.Budget,
		Algorithm:   r.Job.Algorithm,
		Iteration:   r.Job.Iteration,
		Seeds:       r.Job.Seeds,
		TimingSeeds: r.Job.TimingSeeds,
		PermSeed:    r.Job.PermSeed,
	}
	if r.Summary != nil {
		run.CumulativeReward = r.Summary.CumulativeReward
	}
	return run
}

func writeJSON(path string, v any, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
