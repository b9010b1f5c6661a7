// Package pipeline runs a whole partitioning: adjacency discovery, islands,
// size planning, island linking, community filling and the two refinement
// passes.
//
// Chained communities are filled before single-island ones, so the link
// precincts they were promised are still free. A fatal error stops the run,
// writes a snapshot of what was built so far to the configured sink and is
// returned as a *FailureError carrying the same state. A refinement pass
// that finds no bordering community is not fatal: its Result is kept and
// the error is listed in Output.Warnings.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ctessum/geom"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/filler"
	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/linker"
	"github.com/katalvlaran/communities/planner"
	"github.com/katalvlaran/communities/precinct"
	"github.com/katalvlaran/communities/refine"
	"github.com/katalvlaran/communities/snapshot"
)

// Stage names, used in logs, metrics and failures.
const (
	StageAdjacency = "adjacency"
	StageIslands   = "islands"
	StagePlan      = "plan"
	StageLink      = "link"
	StageFill      = "fill"
	StageRefine    = "refine"
)

// ErrUnknownCorridor indicates a corridor naming a precinct not in the input.
var ErrUnknownCorridor = errors.New("pipeline: corridor endpoint not found")

// FailureError is a fatal run error with the state built so far.
type FailureError struct {
	RunID string
	Stage string

	// State is the snapshot of the run, also handed to the sink.
	State *snapshot.State

	// Snapshot is where the snapshot went, empty when none was written.
	Snapshot string

	Err error
}

// Error implements error.
func (e *FailureError) Error() string {
	if e.Snapshot == "" {
		return fmt.Sprintf("pipeline: run %s failed at %s: %v", e.RunID, e.Stage, e.Err)
	}

	return fmt.Sprintf("pipeline: run %s failed at %s (snapshot %s): %v", e.RunID, e.Stage, e.Snapshot, e.Err)
}

// Unwrap returns the underlying error.
func (e *FailureError) Unwrap() error { return e.Err }

// Input is the data of one run.
type Input struct {
	Precincts []*precinct.Precinct

	// Corridors joins precincts that do not touch but belong together.
	Corridors [][2]string

	// Boundary is the optional outline of the state; precincts whose
	// centroid falls outside it are reported.
	Boundary geom.Polygon
}

// Output is a finished run.
type Output struct {
	RunID     string
	Graph     *core.Graph
	Islands   [][]string
	Plan      *planner.Plan
	Chains    []linker.Chain
	Partition *community.Partition
	Passes    []*refine.Result
	Views     []community.View

	// Compactness is the mean Schwartzberg score of the communities.
	Compactness float64

	// Warnings lists non-fatal problems.
	Warnings []error
}

type run struct {
	ctx  context.Context
	opts Options
	log  *zap.Logger
	in   Input
	out  *Output

	islands  [][]*precinct.Precinct
	builders []*community.Builder
}

// Run partitions in.Precincts into opts.Communities communities.
func Run(ctx context.Context, in Input, opts Options) (*Output, error) {
	opts.fill()
	r := &run{
		ctx:  ctx,
		opts: opts,
		in:   in,
		out:  &Output{RunID: uuid.NewString()},
	}
	r.log = opts.Logger.With(zap.String("run", r.out.RunID))
	r.log.Info("run started",
		zap.Int("precincts", len(in.Precincts)),
		zap.Int("communities", opts.Communities))

	stages := []struct {
		name string
		fn   func() error
	}{
		{StageAdjacency, r.adjacency},
		{StageIslands, r.findIslands},
		{StagePlan, r.plan},
		{StageLink, r.link},
		{StageFill, r.fill},
		{StageRefine, r.refine},
	}
	for _, s := range stages {
		start := time.Now()
		err := s.fn()
		opts.Recorder.ObserveStage(s.name, time.Since(start))
		if err != nil {
			return nil, r.fail(s.name, err)
		}
	}

	r.out.Views = r.out.Partition.Views()
	r.out.Compactness = community.AverageCompactness(r.out.Partition.Communities())
	opts.Recorder.Communities.Set(float64(len(r.out.Views)))
	r.log.Info("run finished",
		zap.Int("communities", len(r.out.Views)),
		zap.Float64("compactness", r.out.Compactness),
		zap.Int("warnings", len(r.out.Warnings)))

	return r.out, nil
}

func (r *run) warn(err error) {
	r.out.Warnings = append(r.out.Warnings, err)
	r.log.Warn("run warning", zap.Error(err))
}

// adjacency nodes the precinct outlines and builds the border graph.
func (r *run) adjacency() error {
	if err := r.node(); err != nil {
		return err
	}
	ps := r.in.Precincts
	g := core.NewGraph(core.WithCorridors(), core.WithCapacity(len(ps)))
	polys := make([]geom.Polygon, len(ps))
	for i, p := range ps {
		if g.HasVertex(p.ID()) {
			return fmt.Errorf("%w: %q", community.ErrDuplicatePrecinct, p.ID())
		}
		if err := g.AddVertex(p.ID()); err != nil {
			return err
		}
		polys[i] = p.Boundary()
	}
	pairs, err := geometry.Neighbors(r.ctx, r.opts.Oracle, polys, r.opts.Workers)
	if err != nil {
		return err
	}
	for _, pr := range pairs {
		if _, err = g.AddEdge(ps[pr.I].ID(), ps[pr.J].ID()); err != nil {
			return err
		}
	}
	r.out.Graph = g

	if len(r.in.Boundary) > 0 {
		for _, p := range ps {
			if !r.opts.Oracle.Contains(r.in.Boundary, p.Centroid()) {
				r.warn(fmt.Errorf("pipeline: precinct %q lies outside the state boundary", p.ID()))
			}
		}
	}
	r.log.Debug("adjacency built", zap.Int("borders", len(pairs)))

	return nil
}

// node splits precinct edges at their neighbors' vertices, so a precinct
// whose edge runs past several smaller ones shares a segment with each and
// community outlines union cleanly. Precincts gaining vertices are rebuilt
// in a copy of the input slice.
func (r *run) node() error {
	src := r.in.Precincts
	polys := make([]geom.Polygon, len(src))
	for i, p := range src {
		polys[i] = p.Boundary()
	}
	noded, err := geometry.Node(r.ctx, polys, r.opts.Workers)
	if err != nil {
		return err
	}
	ps := make([]*precinct.Precinct, len(src))
	split := 0
	for i, p := range src {
		ps[i] = p
		if geometry.VertexCount(noded[i]) == geometry.VertexCount(polys[i]) {
			continue
		}
		if ps[i], err = precinct.New(p.ID(), noded[i], p.Population(), p.Votes()); err != nil {
			return err
		}
		split++
	}
	r.in.Precincts = ps
	r.log.Debug("outlines noded", zap.Int("split", split))

	return nil
}

func (r *run) findIslands() error {
	ps := r.in.Precincts
	g := r.out.Graph
	groups, err := bfs.Components(g, precinct.IDs(ps),
		bfs.WithContext(r.ctx), bfs.WithFilterNeighbor(bfs.BordersOnly(g)))
	if err != nil {
		return err
	}
	byID := make(map[string]*precinct.Precinct, len(ps))
	for _, p := range ps {
		byID[p.ID()] = p
	}
	r.islands = make([][]*precinct.Precinct, len(groups))
	for i, ids := range groups {
		for _, id := range ids {
			r.islands[i] = append(r.islands[i], byID[id])
		}
	}
	r.out.Islands = groups
	r.log.Info("islands found", zap.Int("islands", len(groups)))

	return nil
}

func (r *run) plan() error {
	sizes := make([]int, len(r.islands))
	for i, isl := range r.islands {
		sizes[i] = len(isl)
	}
	pl, err := planner.Allocate(sizes, r.opts.Communities)
	if err != nil {
		return err
	}
	r.out.Plan = pl
	for i, a := range pl.Whole {
		b := community.NewBuilder(i + 1)
		b.Allot(a.Island, a.Size)
		r.builders = append(r.builders, b)
	}
	r.log.Info("sizes planned",
		zap.Ints("sizes", pl.Sizes),
		zap.Int("whole", len(pl.Whole)),
		zap.Ints("remaining", pl.Remaining))

	return nil
}

func (r *run) link() error {
	if !r.out.Plan.Chained() {
		return nil
	}
	chains, builders, err := linker.Connect(r.ctx, r.out.Graph, r.islands, r.out.Plan,
		linker.WithFirstID(len(r.builders)+1), linker.WithLogger(r.log))
	if err != nil {
		return err
	}
	r.out.Chains = chains
	r.builders = append(r.builders, builders...)
	for _, ch := range chains {
		r.opts.Recorder.Links.Add(float64(len(ch.Links)))
	}
	r.log.Info("islands linked", zap.Int("chains", len(chains)))

	return nil
}

func (r *run) fill() error {
	ids := make([]int, len(r.builders))
	for i, b := range r.builders {
		ids[i] = b.ID
	}
	part, err := community.NewPartition(r.in.Precincts, ids)
	if err != nil {
		return err
	}
	r.out.Partition = part

	reserved := make(map[string]int)
	for _, b := range r.builders {
		for _, seeds := range b.Seeds {
			for _, id := range seeds {
				reserved[id] = b.ID
			}
		}
	}
	pools := make([]*filler.Pool, len(r.islands))
	for i, isl := range r.islands {
		pools[i] = filler.NewPool(isl)
	}

	rec := r.opts.Recorder
	opts := []filler.Option{
		filler.WithPicker(rand.New(rand.NewSource(r.opts.Seed))),
		filler.WithWorkers(r.opts.Workers),
		filler.WithRestarts(r.opts.Restarts),
		filler.WithLogger(r.log),
		filler.WithOnReject(func(int, string) { rec.FillRejections.Inc() }),
		filler.WithOnRestart(func(int) { rec.FillRestarts.Inc() }),
	}

	// Chained communities first, then single-island ones.
	order := make([]*community.Builder, 0, len(r.builders))
	for _, b := range r.builders {
		if b.MultiIsland() {
			order = append(order, b)
		}
	}
	for _, b := range r.builders {
		if !b.MultiIsland() {
			order = append(order, b)
		}
	}
	for _, b := range order {
		for _, island := range b.Islands() {
			if _, err = filler.Fill(r.ctx, part, r.out.Graph, b, island, pools[island], reserved, opts...); err != nil {
				return fmt.Errorf("community %d, island %d: %w", b.ID, island, err)
			}
		}
	}
	if err = part.Complete(); err != nil {
		return err
	}
	r.log.Info("communities filled", zap.Int("communities", len(order)))

	return r.corridors()
}

// corridors adds the user corridors that do not duplicate an adjacency.
func (r *run) corridors() error {
	g := r.out.Graph
	for _, c := range r.in.Corridors {
		if !g.HasVertex(c[0]) || !g.HasVertex(c[1]) {
			r.warn(fmt.Errorf("%w: %s-%s", ErrUnknownCorridor, c[0], c[1]))
			continue
		}
		if c[0] == c[1] || g.HasEdge(c[0], c[1]) {
			continue
		}
		if _, err := g.AddEdge(c[0], c[1], core.AsCorridor()); err != nil {
			return err
		}
	}
	r.log.Debug("corridors added",
		zap.Int("precincts", g.VertexCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("corridors", len(g.Corridors())))

	return nil
}

func (r *run) refine() error {
	rec := r.opts.Recorder
	base := []refine.Option{
		refine.WithWorkers(r.opts.Workers),
		refine.WithLogger(r.log),
		refine.WithOnExchange(func(metric string, _ refine.Exchange) { rec.ObserveExchange(metric) }),
		refine.WithOnIteration(func(metric string, it refine.Iteration) {
			rec.ObserveIteration(metric, it.WorstValue, it.Aggregate)
		}),
	}
	if r.opts.RestoreBest {
		base = append(base, refine.WithRestoreBest())
	}

	passes := []struct {
		cfg    Pass
		metric refine.Metric
	}{
		{r.opts.Population, &refine.Population{Overshoot: r.opts.Overshoot}},
		{r.opts.Partisanship, refine.Partisanship{}},
	}
	for _, p := range passes {
		if !p.cfg.Enabled {
			continue
		}
		opts := append([]refine.Option{
			refine.WithThreshold(p.cfg.Threshold),
			refine.WithMaxIterations(p.cfg.MaxIterations),
		}, base...)
		res, err := refine.New(p.metric, opts...).Run(r.ctx, r.out.Partition, r.out.Graph)
		if res != nil {
			r.out.Passes = append(r.out.Passes, res)
		}
		if errors.Is(err, refine.ErrNoBorderingCommunity) {
			r.warn(err)
			continue
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// fail snapshots the run and wraps err.
func (r *run) fail(stage string, err error) error {
	r.opts.Recorder.ObserveFailure(stage)
	r.log.Error("run failed", zap.String("stage", stage), zap.Error(err))

	st := &snapshot.State{
		RunID:       r.out.RunID,
		Stage:       stage,
		Error:       err.Error(),
		Communities: r.opts.Communities,
		Islands:     r.out.Islands,
		Plan:        r.out.Plan,
		Chains:      r.out.Chains,
		Builders:    r.builders,
		Passes:      r.out.Passes,
	}
	if part := r.out.Partition; part != nil {
		st.Assignment = part.Assignment()
		st.Unassigned = part.Unassigned()
	}
	// The snapshot must still be written after a cancellation.
	where, serr := r.opts.Sink.Save(context.WithoutCancel(r.ctx), st)
	if serr != nil {
		r.log.Error("snapshot not written", zap.Error(serr))
		err = errors.Join(err, serr)
	} else if where != "" {
		r.log.Info("snapshot written", zap.String("location", where))
	}

	return &FailureError{RunID: r.out.RunID, Stage: stage, State: st, Snapshot: where, Err: err}
}
