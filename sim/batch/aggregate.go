package batch

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/samba-sim/samba-sim/sim"
)

// Group collects the results sharing one output folder.
type Group struct {
	Key     GroupKey
	Results []Result
}

// GroupResults partitions results by group key, keeping the order in which
// groups first appear.
func GroupResults(results []Result) []Group {
	index := make(map[GroupKey]int)
	var groups []Group
	for _, r := range results {
		key := r.Job.Group()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	return groups
}

// MeanTimes averages component timings over every timed run.
func MeanTimes(times []sim.ComponentTimes) (sim.ComponentTimes, error) {
	if len(times) == 0 {
		return sim.ComponentTimes{}, fmt.Errorf("no timings to aggregate")
	}
	k := len(times[0].Arms)
	mean := sim.ComponentTimes{Arms: make([]float64, k)}
	for i, t := range times {
		if len(t.Arms) != k {
			return sim.ComponentTimes{}, fmt.Errorf("%w: timing %d has %d arms, want %d",
				sim.ErrLengthMismatch, i, len(t.Arms), k)
		}
		mean.Comp += t.Comp
		mean.Controller += t.Controller
		mean.Customer += t.Customer
		floats.Add(mean.Arms, t.Arms)
	}
	n := float64(len(times))
	mean.Comp /= n
	mean.Controller /= n
	mean.Customer /= n
	floats.Scale(1/n, mean.Arms)
	return mean, nil
}

// Times returns the group's mean component timings.
func (g Group) Times() (sim.ComponentTimes, error) {
	times := make([]sim.ComponentTimes, len(g.Results))
	for i, r := range g.Results {
		times[i] = r.Times
	}
	return MeanTimes(times)
}
