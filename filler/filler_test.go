package filler_test

import (
	"context"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/filler"
	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/precinct"
	"github.com/katalvlaran/communities/synth"
)

// firstPicker always picks index 0 and remembers the choice sizes.
type firstPicker struct{ sizes []int }

func (p *firstPicker) Intn(n int) int {
	p.sizes = append(p.sizes, n)
	return 0
}

func borderGraph(t *testing.T, ps []*precinct.Precinct) *core.Graph {
	t.Helper()
	g := core.NewGraph(core.WithCorridors())
	polys := make([]geom.Polygon, len(ps))
	for i, p := range ps {
		require.NoError(t, g.AddVertex(p.ID()))
		polys[i] = p.Boundary()
	}
	pairs, err := geometry.Neighbors(context.Background(), geometry.Planar{}, polys, 2)
	require.NoError(t, err)
	for _, pr := range pairs {
		_, err = g.AddEdge(ps[pr.I].ID(), ps[pr.J].ID())
		require.NoError(t, err)
	}

	return g
}

func builder(id, island, quota int, seeds ...string) *community.Builder {
	b := community.NewBuilder(id)
	b.Allot(island, quota)
	for _, s := range seeds {
		b.Seed(island, s)
	}

	return b
}

// TestFill_PinchPoint: claiming the middle of a three-cell strip would cut
// the pool in two, so the pick is rejected and an end cell is taken instead.
func TestFill_PinchPoint(t *testing.T) {
	ps, err := synth.Grid(1, 3)
	require.NoError(t, err)
	a, b, c := ps[0], ps[1], ps[2]
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1, 2})
	require.NoError(t, err)

	pool := filler.NewPool([]*precinct.Precinct{b, a, c})
	var rejected []string
	res, err := filler.Fill(context.Background(), part, g, builder(1, 0, 1), 0, pool, nil,
		filler.WithPicker(&firstPicker{}),
		filler.WithOnReject(func(_ int, id string) { rejected = append(rejected, id) }))
	require.NoError(t, err)

	assert.Equal(t, []string{a.ID()}, res.Added)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, []string{b.ID()}, rejected)
	assert.Equal(t, []string{b.ID(), c.ID()}, pool.IDs())
	owner, ok := part.Owner(a.ID())
	require.True(t, ok)
	assert.Equal(t, 1, owner)
	_, owned := part.Owner(b.ID())
	assert.False(t, owned, "rejected pick must be returned")
}

func TestFill_SeedsFirst(t *testing.T) {
	ps, err := synth.Grid(1, 4)
	require.NoError(t, err)
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1})
	require.NoError(t, err)
	pool := filler.NewPool(ps)

	res, err := filler.Fill(context.Background(), part, g, builder(1, 0, 2, "0,3"), 0, pool, nil,
		filler.WithPicker(&firstPicker{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"0,3", "0,2"}, res.Added)
	assert.Equal(t, 2, pool.Len())
	assert.False(t, pool.Has("0,3"))
}

func TestFill_ReservedExhausts(t *testing.T) {
	ps, err := synth.Grid(1, 4)
	require.NoError(t, err)
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1, 2})
	require.NoError(t, err)
	pool := filler.NewPool(ps)

	restarts := 0
	_, err = filler.Fill(context.Background(), part, g, builder(1, 0, 2, "0,3"), 0, pool,
		map[string]int{"0,2": 2},
		filler.WithRestarts(1),
		filler.WithOnRestart(func(int) { restarts++ }))
	require.ErrorIs(t, err, filler.ErrFillExhausted)
	assert.Equal(t, 1, restarts)

	// The seed stays claimed; nothing else was kept.
	c, _ := part.Community(1)
	assert.Equal(t, []string{"0,3"}, c.PrecinctIDs())
}

func TestFill_SeedUnavailable(t *testing.T) {
	ps, err := synth.Grid(1, 2)
	require.NoError(t, err)
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1, 2})
	require.NoError(t, err)
	require.NoError(t, part.Assign("0,1", 2))
	pool := filler.NewPool(ps[:1])

	_, err = filler.Fill(context.Background(), part, g, builder(1, 0, 2, "0,1"), 0, pool, nil)
	require.ErrorIs(t, err, filler.ErrSeedUnavailable)

	_, err = filler.Fill(context.Background(), part, g, builder(9, 0, 1), 0, pool, nil)
	require.ErrorIs(t, err, community.ErrUnknownCommunity)
}

// TestFill_SeedSplitsPool: the middle of a strip may be seeded only by a
// community that takes the whole strip.
func TestFill_SeedSplitsPool(t *testing.T) {
	ps, err := synth.Grid(1, 3)
	require.NoError(t, err)
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1, 2})
	require.NoError(t, err)
	pool := filler.NewPool(ps)

	_, err = filler.Fill(context.Background(), part, g, builder(1, 0, 2, "0,1"), 0, pool, nil)
	require.ErrorIs(t, err, filler.ErrSeedSplitsPool)
	assert.Equal(t, 3, pool.Len())
	assert.True(t, pool.Has("0,1"))
	_, owned := part.Owner("0,1")
	assert.False(t, owned)

	res, err := filler.Fill(context.Background(), part, g, builder(2, 0, 3, "0,1"), 0, pool, nil)
	require.NoError(t, err)
	assert.Equal(t, "0,1", res.Added[0])
	assert.Len(t, res.Added, 3)
	assert.Zero(t, pool.Len())
}

// TestFill_CoastalStart: a community already holding land elsewhere enters
// a new island on its coast, never in the middle.
func TestFill_CoastalStart(t *testing.T) {
	home, err := synth.Grid(3, 3)
	require.NoError(t, err)
	far, err := synth.Grid(1, 1, synth.WithIDPrefix("far "), synth.WithOrigin(10, 10))
	require.NoError(t, err)
	all := append(append([]*precinct.Precinct{}, home...), far...)
	g := borderGraph(t, all)
	part, err := community.NewPartition(all, []int{1})
	require.NoError(t, err)
	require.NoError(t, part.Assign("far 0,0", 1))

	picker := &firstPicker{}
	res, err := filler.Fill(context.Background(), part, g, builder(1, 0, 1), 0, filler.NewPool(home), nil,
		filler.WithPicker(picker))
	require.NoError(t, err)
	assert.Equal(t, []string{"0,0"}, res.Added)
	assert.Equal(t, []int{8}, picker.sizes, "the center cell is not coastal")
}

// TestFill_WholeIsland fills a grid with three communities in turn and
// checks that every community and the shrinking pool stay contiguous.
func TestFill_WholeIsland(t *testing.T) {
	ps, err := synth.Grid(3, 4)
	require.NoError(t, err)
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1, 2, 3})
	require.NoError(t, err)
	pool := filler.NewPool(ps)

	for id := 1; id <= 3; id++ {
		res, err := filler.Fill(context.Background(), part, g, builder(id, 0, 4), 0, pool, nil,
			filler.WithSeed(int64(id)), filler.WithRestarts(25), filler.WithWorkers(3))
		require.NoError(t, err)
		require.Len(t, res.Added, 4)

		ok, err := bfs.Connected(g, res.Added)
		require.NoError(t, err)
		assert.True(t, ok, "community %d is contiguous", id)
		ok, err = bfs.Connected(g, pool.IDs())
		require.NoError(t, err)
		assert.True(t, ok, "pool after community %d is contiguous", id)
	}
	require.NoError(t, part.Complete())
	assert.Zero(t, pool.Len())
	assert.Empty(t, pool.Boundary())
}

func TestFill_Canceled(t *testing.T) {
	ps, err := synth.Grid(2, 2)
	require.NoError(t, err)
	g := borderGraph(t, ps)
	part, err := community.NewPartition(ps, []int{1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = filler.Fill(ctx, part, g, builder(1, 0, 4), 0, filler.NewPool(ps), nil)
	require.ErrorIs(t, err, context.Canceled)
}
