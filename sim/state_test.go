package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RecordAndTotals(t *testing.T) {
	st := NewState(3)
	st.Record(0, 1)
	st.Record(2, 0)
	st.Record(2, 1)

	assert.Equal(t, 3, st.NumArms())
	assert.Equal(t, 3, st.TotalPulls())
	assert.Equal(t, 2, st.TotalRewards())
	assert.Equal(t, 0.5, st.Mean(2))
}

func TestState_Snapshot_IsDetached(t *testing.T) {
	st := NewState(2)
	st.Record(1, 1)

	pulls, rewards := st.Snapshot()
	st.Record(1, 1)

	assert.Equal(t, []int{0, 1}, pulls)
	assert.Equal(t, []int{0, 1}, rewards)
}

func TestState_ScoreEach_ProbeSeesEveryArmInOrder(t *testing.T) {
	// GIVEN a state with a probe attached
	st := NewState(3)
	var probed []int
	st.probe = func(arm int, fn func()) {
		probed = append(probed, arm)
		fn()
	}

	// WHEN scoring every arm
	scores, err := st.ScoreEach(func(arm int) (float64, error) { return float64(arm * 10), nil })

	// THEN every arm is scored inside its own probe scope
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20}, scores)
	assert.Equal(t, []int{0, 1, 2}, probed)
}

func TestState_ScoreEach_StopsAtFirstError(t *testing.T) {
	st := NewState(3)
	calls := 0
	boom := errors.New("boom")

	_, err := st.ScoreEach(func(arm int) (float64, error) {
		calls++
		if arm == 1 {
			return 0, boom
		}
		return 1, nil
	})

	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 2, calls)
}
