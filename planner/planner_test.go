package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/planner"
)

func TestSizes(t *testing.T) {
	s, err := planner.Sizes(10, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 3}, s)

	s, err = planner.Sizes(12, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3, 3}, s)

	_, err = planner.Sizes(2, 3)
	require.ErrorIs(t, err, planner.ErrInvalidCount)
	_, err = planner.Sizes(5, 0)
	require.ErrorIs(t, err, planner.ErrInvalidCount)
}

func TestAllocate_SingleIslandExactFit(t *testing.T) {
	pl, err := planner.Allocate([]int{7}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3}, pl.Sizes)
	assert.Equal(t, []planner.Allocation{{Island: 0, Size: 4}, {Island: 0, Size: 3}}, pl.Whole)
	assert.Equal(t, []int{0}, pl.Leftover)
	assert.Empty(t, pl.Remaining)
	assert.False(t, pl.Chained())
}

func TestAllocate_LeftoverRoutedToLinker(t *testing.T) {
	// Sizes [4,3]: the 5-island takes the 4 and leaves 1, the 2-island
	// fits nothing, so a 3-community must be chained from 1 + 2.
	pl, err := planner.Allocate([]int{5, 2}, 2)
	require.NoError(t, err)
	assert.Equal(t, []planner.Allocation{{Island: 0, Size: 4}}, pl.Whole)
	assert.Equal(t, []int{1, 2}, pl.Leftover)
	assert.Equal(t, []int{3}, pl.Remaining)
	assert.True(t, pl.Chained())
}

func TestAllocate_TieBreaks(t *testing.T) {
	// p=24, n=7: sizes 4,4,4,3,3,3,3. Island of 12 fits 3×4 or 4×3
	// with no leftover; fewer communities wins.
	pl, err := planner.Allocate([]int{12, 12}, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, pl.Whole[0].Size)
	assert.Equal(t, 4, pl.Whole[2].Size)
	assert.Equal(t, []int{0, 0}, pl.Leftover)
}

func TestAllocate_Conservation(t *testing.T) {
	cases := []struct {
		islands []int
		n       int
	}{
		{[]int{3, 3, 3}, 2},
		{[]int{10, 1, 1, 1}, 4},
		{[]int{6, 4}, 2},
		{[]int{1}, 1},
		{[]int{9, 8, 7, 6, 5}, 6},
	}
	for _, tc := range cases {
		pl, err := planner.Allocate(tc.islands, tc.n)
		require.NoError(t, err)
		total, left, rem := 0, 0, 0
		for _, s := range tc.islands {
			total += s
		}
		for _, l := range pl.Leftover {
			left += l
		}
		for _, r := range pl.Remaining {
			rem += r
		}
		assert.Equal(t, left, rem, "leftovers are exactly absorbed by remaining sizes: %v", tc)
		assert.Equal(t, tc.n, len(pl.Whole)+len(pl.Remaining))
		used := make([]int, len(tc.islands))
		for _, a := range pl.Whole {
			used[a.Island] += a.Size
		}
		for i := range tc.islands {
			assert.Equal(t, tc.islands[i], used[i]+pl.Leftover[i])
		}
	}
}

func TestAllocate_InvalidIsland(t *testing.T) {
	_, err := planner.Allocate([]int{3, 0}, 1)
	require.ErrorIs(t, err, planner.ErrInvalidCount)
	_, err = planner.Allocate([]int{2}, 3)
	require.ErrorIs(t, err, planner.ErrInvalidCount)
}
