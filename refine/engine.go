package refine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/precinct"
	"github.com/katalvlaran/communities/workers"
)

// Engine runs refinement passes for one Metric.
type Engine struct {
	metric Metric
	opts   Options
}

// New returns an Engine for metric.
func New(metric Metric, opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{metric: metric, opts: o}
}

// Metric returns the engine's metric.
func (e *Engine) Metric() Metric { return e.metric }

type candidate struct {
	p        *precinct.Precinct
	from, to *community.Community

	after       float64
	improvement float64
	ok          bool
}

type pass struct {
	ctx  context.Context
	e    *Engine
	part *community.Partition
	g    *core.Graph
	res  *Result
	best map[string]int
}

// Run refines part in place. g must contain every precinct of part; both
// Border and Corridor edges count as adjacency.
//
// The Result is returned together with ErrNoBorderingCommunity or a context
// error.
func (e *Engine) Run(ctx context.Context, part *community.Partition, g *core.Graph) (*Result, error) {
	if err := part.Complete(); err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}
	r := &pass{
		ctx:  ctx,
		e:    e,
		part: part,
		g:    g,
		res:  &Result{Metric: e.metric.Name(), Best: -1},
	}
	part.Refresh()
	e.metric.Prepare(part)
	r.res.BestAggregate = e.metric.Aggregate(part.Communities())
	r.best = part.Assignment()

	err := r.loop()
	if ferr := r.finish(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	e.opts.Logger.Info("refinement pass finished",
		zap.String("metric", r.res.Metric),
		zap.Stringer("reason", r.res.Reason),
		zap.Int("iterations", len(r.res.Iterations)),
		zap.Int("changed", r.res.Changed()),
		zap.Float64("worst", r.res.Worst),
		zap.Float64("best_aggregate", r.res.BestAggregate))

	return r.res, err
}

func (r *pass) loop() error {
	m, o := r.e.metric, r.e.opts
	for it := 0; ; it++ {
		if err := r.ctx.Err(); err != nil {
			r.res.Reason = Canceled
			return err
		}
		r.part.Refresh()
		m.Prepare(r.part)

		worst, value := r.worst()
		switch {
		case value <= o.Threshold:
			r.res.Reason = Converged
			return nil
		case it > 0 && r.res.Iterations[it-1].Changed == 0:
			r.res.Reason = NoChange
			return nil
		case it >= o.MaxIterations:
			r.res.Reason = IterationCap
			return nil
		}

		changed, err := r.improve(it, worst)
		if err != nil {
			if errors.Is(err, ErrNoBorderingCommunity) {
				r.res.Reason = NoBordering
			} else if r.ctx.Err() != nil {
				r.res.Reason = Canceled
			}
			return err
		}

		rec := Iteration{
			Index:      it,
			Worst:      worst.ID(),
			WorstValue: value,
			Changed:    changed,
			Aggregate:  m.Aggregate(r.part.Communities()),
		}
		r.res.Iterations = append(r.res.Iterations, rec)
		if rec.Aggregate < r.res.BestAggregate {
			r.res.Best, r.res.BestAggregate = it, rec.Aggregate
			r.best = r.part.Assignment()
		}
		o.OnIteration(r.res.Metric, rec)
		o.Logger.Debug("refinement iteration",
			zap.String("metric", r.res.Metric),
			zap.Int("iteration", it),
			zap.Int("worst", rec.Worst),
			zap.Float64("worst_value", value),
			zap.Int("changed", changed),
			zap.Float64("aggregate", rec.Aggregate))
	}
}

// worst returns the community with the highest deviation, lowest ID first
// on ties.
func (r *pass) worst() (*community.Community, float64) {
	var (
		worst *community.Community
		value float64
	)
	for _, c := range r.part.Communities() {
		if d := r.e.metric.Deviation(c); worst == nil || d > value {
			worst, value = c, d
		}
	}

	return worst, value
}

// improve applies exchanges around worst until it is fine or out of
// improving moves. A one-precinct community can still take precincts; score
// never lets it give its last one.
func (r *pass) improve(it int, worst *community.Community) (int, error) {
	m, o := r.e.metric, r.e.opts
	changed := 0
	for {
		before := m.Deviation(worst)
		if before <= o.Threshold {
			return changed, nil
		}
		cands, neighbors, err := r.candidates(worst)
		if err != nil {
			return changed, err
		}
		if neighbors == 0 {
			return changed, fmt.Errorf("%w: community %d", ErrNoBorderingCommunity, worst.ID())
		}
		best, err := r.score(before, cands)
		if err != nil {
			return changed, err
		}
		if best == nil {
			return changed, nil
		}
		if err = r.part.Move(best.p.ID(), best.to.ID()); err != nil {
			return changed, err
		}
		changed++
		ex := Exchange{
			Iteration: it,
			Precinct:  best.p.ID(),
			From:      best.from.ID(),
			To:        best.to.ID(),
			Before:    before,
			After:     best.after,
		}
		r.res.Exchanges = append(r.res.Exchanges, ex)
		o.OnExchange(r.res.Metric, ex)
		o.Logger.Debug("precinct exchanged",
			zap.String("metric", r.res.Metric),
			zap.String("precinct", ex.Precinct),
			zap.Int("from", ex.From),
			zap.Int("to", ex.To),
			zap.Float64("before", before),
			zap.Float64("after", ex.After))
	}
}

// candidates lists every single-precinct move between worst and a
// neighboring community that the metric's directions allow, sorted by
// precinct ID then receiving community ID. neighbors counts the bordering
// communities whatever the directions.
func (r *pass) candidates(worst *community.Community) ([]candidate, int, error) {
	give, take := r.e.metric.Directions(worst)
	type key struct {
		p  string
		to int
	}
	seen := make(map[key]bool)
	nbr := make(map[int]bool)
	var out []candidate
	add := func(p *precinct.Precinct, from, to *community.Community) {
		k := key{p.ID(), to.ID()}
		if !seen[k] {
			seen[k] = true
			out = append(out, candidate{p: p, from: from, to: to})
		}
	}

	for _, p := range worst.Precincts() {
		ids, err := r.g.NeighborIDs(p.ID())
		if err != nil {
			return nil, 0, fmt.Errorf("refine: %w", err)
		}
		for _, id := range ids {
			owner, ok := r.part.Owner(id)
			if !ok || owner == worst.ID() {
				continue
			}
			other, _ := r.part.Community(owner)
			nbr[owner] = true
			if give {
				add(p, worst, other)
			}
			if take {
				q, _ := r.part.Precinct(id)
				add(q, other, worst)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].p.ID() != out[j].p.ID() {
			return out[i].p.ID() < out[j].p.ID()
		}
		return out[i].to.ID() < out[j].to.ID()
	})

	return out, len(nbr), nil
}

// score evaluates cands in parallel and returns the best valid one, or nil.
func (r *pass) score(before float64, cands []candidate) (*candidate, error) {
	m := r.e.metric
	rosters := make(map[int][]string)
	for _, c := range cands {
		if _, ok := rosters[c.from.ID()]; !ok {
			rosters[c.from.ID()] = c.from.PrecinctIDs()
		}
	}

	err := workers.Run(r.ctx, r.e.opts.Workers, len(cands), func(ctx context.Context, i int) error {
		c := &cands[i]
		roster := rosters[c.from.ID()]
		if len(roster) <= 1 {
			return nil
		}
		c.after = max(m.Moved(c.from, c.p, false), m.Moved(c.to, c.p, true))
		c.improvement = before - c.after
		if !(c.improvement > 0) {
			return nil
		}
		rest := make([]string, 0, len(roster)-1)
		for _, id := range roster {
			if id != c.p.ID() {
				rest = append(rest, id)
			}
		}
		ok, err := bfs.Connected(r.g, rest, bfs.WithContext(ctx))
		if err != nil {
			return err
		}
		c.ok = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	var best *candidate
	for i := range cands {
		if c := &cands[i]; c.ok && (best == nil || c.improvement > best.improvement) {
			best = c
		}
	}

	return best, nil
}

// finish records the final worst value and restores the best assignment
// when asked to.
func (r *pass) finish() error {
	m, o := r.e.metric, r.e.opts
	if o.RestoreBest && r.res.Reason != Converged {
		r.part.Refresh()
		m.Prepare(r.part)
		if r.res.BestAggregate < m.Aggregate(r.part.Communities()) {
			if err := r.part.Restore(r.best); err != nil {
				return fmt.Errorf("refine: restore best: %w", err)
			}
			r.res.Restored = true
		}
	}
	r.part.Refresh()
	m.Prepare(r.part)
	_, r.res.Worst = r.worst()

	return nil
}
