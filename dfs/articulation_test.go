package dfs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/dfs"
)

func path(t *testing.T, ids ...string) *core.Graph {
	t.Helper()
	g := core.NewGraph(core.WithCorridors())
	for i := 1; i < len(ids); i++ {
		_, err := g.AddEdge(ids[i-1], ids[i])
		require.NoError(t, err)
	}

	return g
}

func TestArticulationPoints_Path(t *testing.T) {
	g := path(t, "a", "b", "c", "d")
	cut, err := dfs.ArticulationPoints(g, g.Vertices())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true, "c": true}, cut)
}

func TestArticulationPoints_CycleHasNone(t *testing.T) {
	g := path(t, "a", "b", "c", "d")
	_, err := g.AddEdge("d", "a")
	require.NoError(t, err)
	cut, err := dfs.ArticulationPoints(g, g.Vertices())
	require.NoError(t, err)
	assert.Empty(t, cut)
}

func TestArticulationPoints_Bowtie(t *testing.T) {
	// two triangles sharing vertex x
	g := path(t, "a", "b", "x", "a")
	_, err := g.AddEdge("x", "c")
	require.NoError(t, err)
	_, err = g.AddEdge("c", "d")
	require.NoError(t, err)
	_, err = g.AddEdge("d", "x")
	require.NoError(t, err)

	cut, err := dfs.ArticulationPoints(g, []string{"a", "b", "c", "d", "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"x": true}, cut)

	// rooted at the cut vertex itself
	cut, err = dfs.ArticulationPoints(g, []string{"x", "a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"x": true}, cut)
}

func TestArticulationPoints_MembersAndFilter(t *testing.T) {
	g := path(t, "a", "b", "c")
	_, err := g.AddEdge("a", "c", core.AsCorridor())
	require.NoError(t, err)

	cut, err := dfs.ArticulationPoints(g, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Empty(t, cut, "corridor closes the cycle")

	cut, err = dfs.ArticulationPoints(g, []string{"a", "b", "c"}, dfs.WithFilterNeighbor(bfs.BordersOnly(g)))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"b": true}, cut)

	cut, err = dfs.ArticulationPoints(g, []string{"a", "b"})
	require.NoError(t, err)
	assert.Empty(t, cut)
}

func TestArticulationPoints_Errors(t *testing.T) {
	_, err := dfs.ArticulationPoints(nil, nil)
	require.ErrorIs(t, err, dfs.ErrGraphNil)

	g := path(t, "a", "b", "c")
	_, err = dfs.ArticulationPoints(g, []string{"a", "zz"})
	require.ErrorIs(t, err, dfs.ErrStartVertexNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dfs.ArticulationPoints(g, g.Vertices(), dfs.WithContext(ctx))
	require.ErrorIs(t, err, context.Canceled)
}
