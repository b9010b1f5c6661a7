package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/ctessum/geom"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/metrics"
	"github.com/katalvlaran/communities/pipeline"
	"github.com/katalvlaran/communities/planner"
	"github.com/katalvlaran/communities/precinct"
	"github.com/katalvlaran/communities/snapshot"
	"github.com/katalvlaran/communities/synth"
)

func options(n int) pipeline.Options {
	o := pipeline.DefaultOptions()
	o.Communities = n
	o.Workers = 2

	return o
}

func assertValid(t *testing.T, out *pipeline.Output, precincts int) {
	t.Helper()
	require.NoError(t, out.Partition.Complete())
	total := 0
	for _, v := range out.Views {
		total += len(v.Precincts)
		ok, err := bfs.Connected(out.Graph, v.Precincts)
		require.NoError(t, err)
		assert.True(t, ok, "community %d is contiguous", v.ID)
	}
	assert.Equal(t, precincts, total)
}

// TestRun_FourPrecincts splits a wheel of four equal precincts in two. The
// halves start with equal populations, so the population pass has nothing
// to do.
func TestRun_FourPrecincts(t *testing.T) {
	shares := []int{90, 10, 50, 50}
	ps, err := synth.Wheel(
		synth.WithPopulationFn(func(int, int, *rand.Rand) int { return 10 }),
		synth.WithVotesFn(func(_, i int, _ *rand.Rand) precinct.Votes {
			return precinct.Votes{Republican: shares[i], Democratic: 100 - shares[i]}
		}))
	require.NoError(t, err)
	rec := metrics.NewRecorder("")
	o := options(2)
	o.Recorder = rec
	o.Population.Threshold = 0

	out, err := pipeline.Run(context.Background(), pipeline.Input{Precincts: ps}, o)
	require.NoError(t, err)
	assertValid(t, out, 4)

	require.Len(t, out.Views, 2)
	for _, v := range out.Views {
		assert.Len(t, v.Precincts, 2)
		assert.Equal(t, 20, v.Population)
	}
	assert.Len(t, out.Islands, 1)
	assert.Empty(t, out.Chains)
	require.Len(t, out.Passes, 2)
	pop := out.Passes[0]
	assert.Equal(t, "converged", pop.Reason.String())
	assert.Empty(t, pop.Iterations)
	assert.Zero(t, pop.Changed())
	assert.Greater(t, out.Compactness, 0.0)
	assert.Len(t, out.RunID, 36)
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.Communities))
}

// TestRun_PartialEdges: the right column is one tall precinct per two left
// cells, so each tall edge runs past two smaller neighbors.
func TestRun_PartialEdges(t *testing.T) {
	rect := func(x0, y0, x1, y1 float64) geom.Polygon {
		return geom.Polygon{{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0}}}
	}
	shapes := []geom.Polygon{
		rect(0, 0, 1, 1), rect(0, 1, 1, 2), rect(0, 2, 1, 3), rect(0, 3, 1, 4),
		rect(1, 0, 2, 2), rect(1, 2, 2, 4),
	}
	var err error
	ps := make([]*precinct.Precinct, len(shapes))
	for i, sh := range shapes {
		ps[i], err = precinct.New(fmt.Sprintf("p%d", i), sh, 10, precinct.Votes{Republican: 50, Democratic: 50})
		require.NoError(t, err)
	}

	out, err := pipeline.Run(context.Background(), pipeline.Input{Precincts: ps}, options(2))
	require.NoError(t, err)
	assertValid(t, out, 6)
	require.Len(t, out.Islands, 1)
	assert.True(t, out.Graph.HasEdge("p0", "p4"))
	assert.True(t, out.Graph.HasEdge("p1", "p4"))
	assert.True(t, out.Graph.HasEdge("p2", "p5"))
	assert.False(t, out.Graph.HasEdge("p1", "p5"))

	for _, c := range out.Partition.Communities() {
		assert.Len(t, c.Boundary(), 1, "community %d is one ring", c.ID())
		assert.Greater(t, c.Compactness(), 0.0)
	}
}

// TestRun_Archipelago routes the leftover of a five-precinct island through
// a corridor to a two-precinct island.
func TestRun_Archipelago(t *testing.T) {
	ps, err := synth.Archipelago([]synth.Island{{Rows: 1, Cols: 5}, {Rows: 1, Cols: 2}})
	require.NoError(t, err)

	out, err := pipeline.Run(context.Background(), pipeline.Input{Precincts: ps}, options(2))
	require.NoError(t, err)
	assertValid(t, out, 7)

	assert.Equal(t, []int{1, 2}, out.Plan.Leftover)
	require.Len(t, out.Chains, 1)
	assert.Equal(t, 2, out.Chains[0].Community)

	e, err := out.Graph.Edge("i0:0,4", "i1:0,0")
	require.NoError(t, err)
	assert.Equal(t, core.Corridor, e.Kind)

	c2, ok := out.Partition.Community(2)
	require.True(t, ok)
	assert.Equal(t, []string{"i0:0,4", "i1:0,0", "i1:0,1"}, c2.PrecinctIDs())
	c1, _ := out.Partition.Community(1)
	assert.Equal(t, 4, c1.Len())
}

func TestRun_Grid(t *testing.T) {
	ps, err := synth.Grid(6, 6, synth.WithSeed(11),
		synth.WithPopulationFn(synth.RandomPopulation(80, 120)),
		synth.WithVotesFn(synth.RandomVotes(300)))
	require.NoError(t, err)
	o := options(4)
	o.Restarts = 25
	o.Seed = 5

	out, err := pipeline.Run(context.Background(), pipeline.Input{Precincts: ps}, o)
	require.NoError(t, err)
	assertValid(t, out, 36)
	require.Len(t, out.Passes, 2)

	pop := out.Passes[0]
	if len(pop.Iterations) > 0 {
		assert.LessOrEqual(t, pop.Worst, pop.Iterations[0].WorstValue+1e-9)
	}
}

func TestRun_Warnings(t *testing.T) {
	ps, err := synth.Wheel()
	require.NoError(t, err)
	in := pipeline.Input{
		Precincts: ps,
		Corridors: [][2]string{{"hub", "nowhere"}, {"rim0", "rim1"}},
		Boundary:  geom.Polygon{{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}},
	}

	out, err := pipeline.Run(context.Background(), in, options(2))
	require.NoError(t, err)
	assert.Equal(t, 6, out.Graph.EdgeCount(), "known corridor duplicates a border")

	unknown := 0
	outside := 0
	for _, w := range out.Warnings {
		if errors.Is(w, pipeline.ErrUnknownCorridor) {
			unknown++
		} else {
			outside++
		}
	}
	assert.Equal(t, 1, unknown)
	assert.Positive(t, outside)
}

func TestRun_FailureSnapshot(t *testing.T) {
	ps, err := synth.Wheel()
	require.NoError(t, err)
	sink := snapshot.FileSink{Dir: t.TempDir()}
	o := options(5)
	o.Sink = sink

	_, err = pipeline.Run(context.Background(), pipeline.Input{Precincts: ps}, o)
	require.ErrorIs(t, err, planner.ErrInvalidCount)

	var fe *pipeline.FailureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, pipeline.StagePlan, fe.Stage)
	assert.FileExists(t, fe.Snapshot)

	require.NotNil(t, fe.State)
	assert.Equal(t, fe.RunID, fe.State.RunID)
	st, err := sink.Load(fe.RunID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StagePlan, st.Stage)
	assert.Equal(t, 5, st.Communities)
	assert.Len(t, st.Islands, 1)
}

// TestRun_FailureState: the default sink writes nothing, but the error
// still carries what was built.
func TestRun_FailureState(t *testing.T) {
	ps, err := synth.Archipelago([]synth.Island{{Rows: 1, Cols: 5}, {Rows: 1, Cols: 2}})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), pipeline.Input{Precincts: ps}, options(9))
	require.ErrorIs(t, err, planner.ErrInvalidCount)
	var fe *pipeline.FailureError
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, fe.Snapshot)
	require.NotNil(t, fe.State)
	assert.Equal(t, pipeline.StagePlan, fe.State.Stage)
	assert.Equal(t, 9, fe.State.Communities)
	assert.Len(t, fe.State.Islands, 2)
	assert.Nil(t, fe.State.Assignment)
}

func TestRun_DuplicateIDs(t *testing.T) {
	ps, err := synth.Grid(1, 2)
	require.NoError(t, err)
	dup, err := precinct.New(ps[0].ID(), ps[1].Boundary(), 1, precinct.Votes{})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), pipeline.Input{Precincts: append(ps, dup)}, options(1))
	require.ErrorIs(t, err, community.ErrDuplicatePrecinct)
	var fe *pipeline.FailureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, pipeline.StageAdjacency, fe.Stage)
	assert.Empty(t, fe.Snapshot)
}

func TestRun_Canceled(t *testing.T) {
	ps, err := synth.Grid(3, 3)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pipeline.Run(ctx, pipeline.Input{Precincts: ps}, options(3))
	require.ErrorIs(t, err, context.Canceled)
}
