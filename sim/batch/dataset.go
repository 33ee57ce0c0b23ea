// Package batch runs the cross-product of datasets, budgets, algorithms and
// iterations over a worker pool and exports the results as flat files.
//
// A batch has three stages:
//   - LoadProbabilities reads the per-dataset arm probability files.
//   - NewPlan expands them into jobs and draws every seed from the master seed.
//   - Runner executes the jobs; Exporter writes the histories, the mean
//     component timings, the manifest and the metrics file.
package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/samba-sim/samba-sim/sim"
)

// ErrArmCountMismatch is returned when a probability vector is filed under an
// arm count that differs from its length.
var ErrArmCountMismatch = errors.New("arm count does not match probability vector")

// Entry is one probability vector of a dataset, for a given arm count and
// rating threshold.
type Entry struct {
	Dataset   string
	ArmCount  int
	Threshold string
	Probs     []float64
}

// LoadProbabilities reads a probability file for the named dataset.
// See ParseProbabilities for the format.
func LoadProbabilities(dataset, path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening probabilities for %s: %w", dataset, err)
	}
	defer f.Close()
	entries, err := ParseProbabilities(dataset, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseProbabilities decodes {"<armCount>": {"<threshold>": [p, ...]}}.
// Entries are sorted by arm count, then by threshold (numerically when both
// thresholds are numbers).
func ParseProbabilities(dataset string, r io.Reader) ([]Entry, error) {
	var raw map[string]map[string][]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding probabilities: %w", err)
	}

	var entries []Entry
	for kKey, byThreshold := range raw {
		k, err := strconv.Atoi(kKey)
		if err != nil || k < 1 {
			return nil, fmt.Errorf("invalid arm count key %q", kKey)
		}
		for threshold, probs := range byThreshold {
			if len(probs) != k {
				return nil, fmt.Errorf("%w: k=%d threshold=%s has %d probabilities",
					ErrArmCountMismatch, k, threshold, len(probs))
			}
			if err := sim.ValidateProbabilities(probs); err != nil {
				return nil, fmt.Errorf("k=%d threshold=%s: %w", k, threshold, err)
			}
			entries = append(entries, Entry{Dataset: dataset, ArmCount: k, Threshold: threshold, Probs: probs})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ArmCount != entries[j].ArmCount {
			return entries[i].ArmCount < entries[j].ArmCount
		}
		return thresholdLess(entries[i].Threshold, entries[j].Threshold)
	})
	return entries, nil
}

func thresholdLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil && fa != fb {
		return fa < fb
	}
	return a < b
}
