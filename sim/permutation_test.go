package sim

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermutation_InverseLaw(t *testing.T) {
	// BDD: InvertPermutation(Permute(x)) == x for every n, seed and turn
	for n := 1; n <= 12; n++ {
		for _, seed := range []int64{0, 1, 42, -7, 10000} {
			for turn := 1; turn <= 5; turn++ {
				p := NewPermutation(n, seed, turn)
				x := make([]int, n)
				for i := range x {
					x[i] = 100 + i
				}
				permuted, err := Permute(p, x)
				require.NoError(t, err)
				restored, err := InvertPermutation(p, permuted)
				require.NoError(t, err)
				assert.Equal(t, x, restored, "n=%d seed=%d turn=%d", n, seed, turn)
			}
		}
	}
}

func TestPermutation_IsBijection(t *testing.T) {
	p := NewPermutation(20, 3, 9)
	forward := p.Forward()
	sort.Ints(forward)
	for i, v := range forward {
		assert.Equal(t, i, v)
	}
}

func TestPermutation_InvertIndex_RecoversOriginalPosition(t *testing.T) {
	// GIVEN a permuted list of distinct values equal to their original index
	p := NewPermutation(8, 11, 4)
	original := []int{0, 1, 2, 3, 4, 5, 6, 7}
	permuted, err := Permute(p, original)
	require.NoError(t, err)

	// THEN InvertIndex maps each permuted position back to the item's origin
	for permutedIndex, item := range permuted {
		assert.Equal(t, item, p.InvertIndex(permutedIndex))
	}
}

func TestPermutation_Deterministic(t *testing.T) {
	a := NewPermutation(10, 5, 3)
	b := NewPermutation(10, 5, 3)
	assert.Equal(t, a.Forward(), b.Forward())
}

func TestPermutation_DoesNotPerturbOtherSources(t *testing.T) {
	// BDD: building permutations for a turn leaves reward draws for that turn unchanged
	r := NewRandomSource(5)
	before := r.Uniform(3)
	NewPermutation(10, 5, 3)
	assert.Equal(t, before, r.Uniform(3))
}

func TestPermutation_LengthMismatch(t *testing.T) {
	p := NewPermutation(3, 1, 1)

	_, err := Permute(p, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = InvertPermutation(p, []float64{1, 2, 3, 4})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestPermutation_Forward_ReturnsCopy(t *testing.T) {
	p := NewPermutation(4, 1, 1)
	f := p.Forward()
	f[0] = 99
	assert.NotEqual(t, 99, p.Forward()[0])
	assert.Equal(t, 4, p.Len())
}
