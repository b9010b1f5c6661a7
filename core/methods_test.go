// SPDX-License-Identifier: MIT
// Package core_test verifies core.Graph method-level contracts.
//
// Purpose:
//   - Lock in the vertex/edge lifecycle of the precinct adjacency graph.
//   - Validate constraint enforcement (loops, duplicates, corridor gating).
//   - Anchor ordering guarantees (insertion-ordered Vertices, ID-ordered Edges).

package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/core"
)

// TestGraph_AddVertex verifies empty-ID rejection and idempotent insertion.
func TestGraph_AddVertex(t *testing.T) {
	g := core.NewGraph()

	require.ErrorIs(t, g.AddVertex(""), core.ErrEmptyVertexID)
	require.NoError(t, g.AddVertex("p1"))
	require.NoError(t, g.AddVertex("p1"))
	assert.True(t, g.HasVertex("p1"))
	assert.False(t, g.HasVertex(""))
	assert.False(t, g.HasVertex("p2"))
	assert.Equal(t, 1, g.VertexCount())
}

// TestGraph_VerticesInsertionOrder verifies Vertices follows first insertion.
func TestGraph_VerticesInsertionOrder(t *testing.T) {
	g := core.NewGraph()
	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, g.AddVertex(id))
	}
	_, err := g.AddEdge("b", "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m", "b"}, g.Vertices())
}

// TestGraph_AddEdge covers loop, duplicate and corridor rules.
func TestGraph_AddEdge(t *testing.T) {
	g := core.NewGraph()

	_, err := g.AddEdge("", "b")
	require.ErrorIs(t, err, core.ErrEmptyVertexID)

	_, err = g.AddEdge("a", "a")
	require.ErrorIs(t, err, core.ErrLoopNotAllowed)

	eid, err := g.AddEdge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "e1", eid)
	assert.True(t, g.HasEdge("a", "b"))
	assert.True(t, g.HasEdge("b", "a"), "edges are mirrored")

	_, err = g.AddEdge("b", "a")
	require.ErrorIs(t, err, core.ErrDuplicateEdge)

	_, err = g.AddEdge("a", "c", core.AsCorridor())
	require.ErrorIs(t, err, core.ErrCorridorNotAllowed)
	assert.False(t, g.HasVertex("c"), "rejected corridor must not create endpoints")
}

// TestGraph_Corridors verifies edge kinds and the Corridors filter.
func TestGraph_Corridors(t *testing.T) {
	g := core.NewGraph(core.WithCorridors())
	_, err := g.AddEdge("a", "b")
	require.NoError(t, err)
	_, err = g.AddEdge("b", "c", core.AsCorridor())
	require.NoError(t, err)

	e, err := g.Edge("c", "b")
	require.NoError(t, err)
	assert.Equal(t, core.Corridor, e.Kind)
	assert.Equal(t, "corridor", e.Kind.String())
	assert.Equal(t, "b", e.Other("c"))

	cs := g.Corridors()
	require.Len(t, cs, 1)
	assert.Equal(t, "b", cs[0].From)

	_, err = g.Edge("a", "c")
	assert.True(t, errors.Is(err, core.ErrEdgeNotFound))
}

// TestGraph_NeighborIDs verifies sorted, mirrored neighbor lists.
func TestGraph_NeighborIDs(t *testing.T) {
	g := core.NewGraph(core.WithCorridors())
	for _, to := range []string{"d", "b", "c"} {
		_, err := g.AddEdge("a", to)
		require.NoError(t, err)
	}
	_, err := g.AddEdge("b", "z", core.AsCorridor())
	require.NoError(t, err)

	ids, err := g.NeighborIDs("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, ids)

	ids, err = g.NeighborIDs("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, ids)

	_, err = g.NeighborIDs("missing")
	require.ErrorIs(t, err, core.ErrVertexNotFound)
}

// TestGraph_CorridorsOrder verifies numeric ordering of generated IDs.
func TestGraph_CorridorsOrder(t *testing.T) {
	g := core.NewGraph(core.WithCorridors())
	ids := []string{"v0", "v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8", "v9", "v10", "v11"}
	for i := 1; i < len(ids); i++ {
		_, err := g.AddEdge(ids[i-1], ids[i], core.AsCorridor())
		require.NoError(t, err)
	}
	edges := g.Corridors()
	require.Len(t, edges, 11)
	assert.Equal(t, "e9", edges[8].ID)
	assert.Equal(t, "e10", edges[9].ID)
	assert.Equal(t, 11, g.EdgeCount())
	assert.Equal(t, 12, g.VertexCount())
}
