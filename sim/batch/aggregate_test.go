package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samba-sim/samba-sim/sim"
	"github.com/samba-sim/samba-sim/sim/internal/testutil"
)

func TestMeanTimes_AveragesEveryComponent(t *testing.T) {
	times := []sim.ComponentTimes{
		{Comp: 1, Controller: 2, Customer: 3, Arms: []float64{1, 4}},
		{Comp: 3, Controller: 4, Customer: 5, Arms: []float64{3, 8}},
	}

	mean, err := MeanTimes(times)
	require.NoError(t, err)

	testutil.AssertFloat64Equal(t, "comp", 2, mean.Comp, 1e-12)
	testutil.AssertFloat64Equal(t, "controller", 3, mean.Controller, 1e-12)
	testutil.AssertFloat64Equal(t, "customer", 4, mean.Customer, 1e-12)
	assert.InDeltaSlice(t, []float64{2, 6}, mean.Arms, 1e-12)

	// inputs are not modified
	assert.Equal(t, []float64{1, 4}, times[0].Arms)
}

func TestMeanTimes_Errors(t *testing.T) {
	_, err := MeanTimes(nil)
	assert.Error(t, err)

	_, err = MeanTimes([]sim.ComponentTimes{{Arms: []float64{1}}, {Arms: []float64{1, 2}}})
	assert.True(t, errors.Is(err, sim.ErrLengthMismatch))
}

func TestGroupResults_FirstAppearanceOrder(t *testing.T) {
	e := testEntries()
	results := []Result{
		{Job: Job{Entry: e[1], Budget: 10, Algorithm: sim.AlgorithmUCB}},
		{Job: Job{Entry: e[0], Budget: 10, Algorithm: sim.AlgorithmUCB}},
		{Job: Job{Entry: e[1], Budget: 10, Algorithm: sim.AlgorithmSoftmax}},
		{Job: Job{Entry: e[1], Budget: 20, Algorithm: sim.AlgorithmUCB}},
	}

	groups := GroupResults(results)

	require.Len(t, groups, 3)
	assert.Equal(t, 3, groups[0].Key.ArmCount)
	assert.Len(t, groups[0].Results, 2)
	assert.Equal(t, 2, groups[1].Key.ArmCount)
	assert.Equal(t, 20, groups[2].Key.Budget)
}
