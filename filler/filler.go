package filler

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctessum/geom"
	"go.uber.org/zap"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/precinct"
	"github.com/katalvlaran/communities/workers"
)

var (
	// ErrFillExhausted indicates a community ran out of precincts to claim
	// before reaching its quota, restarts included.
	ErrFillExhausted = errors.New("filler: fill exhausted")

	// ErrSeedUnavailable indicates a seed precinct is neither unclaimed nor
	// already held by the community.
	ErrSeedUnavailable = errors.New("filler: seed unavailable")

	// ErrSeedSplitsPool indicates claiming a seed would cut the unclaimed
	// part of the island in two while other communities still need it.
	ErrSeedSplitsPool = errors.New("filler: seed splits pool")
)

// Result summarizes one fill.
type Result struct {
	// Added lists the claimed precincts in claim order, seeds first.
	Added []string

	// Remaining is the outline of what the pool still holds.
	Remaining geom.Polygon

	// Rejected counts picks undone, Restarts the fresh starts.
	Rejected int
	Restarts int
}

type fill struct {
	ctx      context.Context
	part     *community.Partition
	g        *core.Graph
	c        *community.Community
	pool     *Pool
	reserved map[string]int
	opts     Options
	quota    int

	added []*precinct.Precinct
	seeds int
	tried map[string]bool
}

// Fill claims b.Allotment[island] precincts of pool for community b.ID.
// Seeds b holds on island are claimed first. reserved maps link precincts
// to the community they are kept for; no other community may claim them.
// g supplies the Border edges used for the contiguity checks.
func Fill(ctx context.Context, part *community.Partition, g *core.Graph, b *community.Builder, island int, pool *Pool, reserved map[string]int, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c, ok := part.Community(b.ID)
	if !ok {
		return nil, fmt.Errorf("filler: %w: %d", community.ErrUnknownCommunity, b.ID)
	}
	quota := b.Allotment[island]
	f := &fill{
		ctx:      ctx,
		part:     part,
		g:        g,
		c:        c,
		pool:     pool,
		reserved: reserved,
		opts:     o,
		quota:    quota,
		tried:    make(map[string]bool),
	}
	res := &Result{}

	for _, id := range b.Seeds[island] {
		if err := f.seed(id); err != nil {
			return nil, err
		}
	}

	for len(f.added) < quota {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eligible, err := f.eligible()
		if err != nil {
			return nil, err
		}
		if len(eligible) == 0 {
			if res.Restarts >= o.Restarts {
				return nil, fmt.Errorf("%w: community %d holds %d of %d on island %d after %d restarts",
					ErrFillExhausted, b.ID, len(f.added), quota, island, res.Restarts)
			}
			if err = f.restart(); err != nil {
				return nil, err
			}
			res.Restarts++
			o.OnRestart(b.ID)
			o.Logger.Debug("fill restarted", zap.Int("community", b.ID), zap.Int("island", island), zap.Int("restarts", res.Restarts))
			continue
		}

		p := eligible[o.Picker.Intn(len(eligible))]
		ok, err := f.try(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			f.tried[p.ID()] = true
			res.Rejected++
			o.OnReject(b.ID, p.ID())
			continue
		}
		f.tried = make(map[string]bool)
	}

	res.Added = make([]string, len(f.added))
	for i, p := range f.added {
		res.Added[i] = p.ID()
	}
	res.Remaining = pool.Boundary()
	o.Logger.Debug("community filled",
		zap.Int("community", b.ID),
		zap.Int("island", island),
		zap.Int("precincts", len(res.Added)),
		zap.Int("rejected", res.Rejected))

	return res, nil
}

func (f *fill) seed(id string) error {
	p, ok := f.part.Precinct(id)
	if !ok {
		return fmt.Errorf("filler: seed %q: %w", id, community.ErrUnknownPrecinct)
	}
	if f.c.Has(id) {
		return nil
	}
	if !f.pool.take(p) {
		return fmt.Errorf("%w: %q for community %d", ErrSeedUnavailable, id, f.c.ID())
	}
	// The pool may split only when this community is going to claim all of it.
	if f.pool.Len() > f.quota-len(f.added)-1 {
		whole, err := f.whole(f.pool.IDs())
		if err != nil {
			f.pool.give(p)
			return err
		}
		if !whole {
			f.pool.give(p)
			return fmt.Errorf("%w: %q for community %d", ErrSeedSplitsPool, id, f.c.ID())
		}
	}
	if err := f.part.Assign(id, f.c.ID()); err != nil {
		f.pool.give(p)
		return err
	}
	f.added = append(f.added, p)
	f.seeds++

	return nil
}

// eligible lists the untried, unreserved pool precincts the community may
// claim next, narrowed to the pool's edge where a coastal start is wanted.
func (f *fill) eligible() ([]*precinct.Precinct, error) {
	first := len(f.added) == 0
	out, err := workers.Filter(f.ctx, f.opts.Workers, f.pool.Precincts(), func(p *precinct.Precinct) bool {
		if f.tried[p.ID()] {
			return false
		}
		if owner, ok := f.reserved[p.ID()]; ok && owner != f.c.ID() {
			return false
		}
		return first || f.borders(p)
	})
	if err != nil {
		return nil, err
	}

	if (first && f.c.Len() > 0) || len(f.added) == 1 {
		var coast []*precinct.Precinct
		for _, p := range out {
			if f.pool.coastal(p) {
				coast = append(coast, p)
			}
		}
		if len(coast) > 0 {
			return coast, nil
		}
	}

	return out, nil
}

// try claims p and keeps it only when both the pool and the community's
// part of the island stay in one piece.
func (f *fill) try(p *precinct.Precinct) (bool, error) {
	f.pool.take(p)
	keep, err := f.whole(f.pool.IDs())
	if err == nil && keep {
		ids := make([]string, 0, len(f.added)+1)
		for _, q := range f.added {
			ids = append(ids, q.ID())
		}
		keep, err = f.whole(append(ids, p.ID()))
	}
	if err != nil || !keep {
		f.pool.give(p)
		return false, err
	}
	if err = f.part.Assign(p.ID(), f.c.ID()); err != nil {
		f.pool.give(p)
		return false, err
	}
	f.added = append(f.added, p)

	return true, nil
}

// borders reports whether p shares a Border edge with a member of the
// community.
func (f *fill) borders(p *precinct.Precinct) bool {
	ids, err := f.g.NeighborIDs(p.ID())
	if err != nil {
		return false
	}
	border := bfs.BordersOnly(f.g)
	for _, id := range ids {
		if f.c.Has(id) && border(p.ID(), id) {
			return true
		}
	}

	return false
}

func (f *fill) whole(ids []string) (bool, error) {
	return bfs.Connected(f.g, ids, bfs.WithContext(f.ctx), bfs.WithFilterNeighbor(bfs.BordersOnly(f.g)))
}

// restart returns every non-seed claim to the pool.
func (f *fill) restart() error {
	for _, p := range f.added[f.seeds:] {
		if err := f.part.Release(p.ID()); err != nil {
			return err
		}
		f.pool.give(p)
	}
	f.added = f.added[:f.seeds]
	f.tried = make(map[string]bool)

	return nil
}
