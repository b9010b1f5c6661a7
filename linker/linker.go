// Package linker chains island leftovers into multi-island communities.
//
// When the size planner cannot place whole communities on every island, the
// precincts left over on each island must join a community that spans
// several islands. Connect walks the islands in order; every island holding a
// leftover starts a chain that absorbs the whole leftover of the nearest
// islands until the chain reaches the next remaining target size. Consecutive
// islands of a chain are joined by one link: the closest pair of eligible
// precincts, measured between centroids. A precinct is eligible when it lies
// on its island's coast and removing it would not split the island. When a
// chain overshoots its target, the excess goes back to the last island and
// may start another chain there.
//
// Links become corridor edges of the adjacency graph and their precincts
// become seeds of the chain's Builder; a seed is never handed to another
// community.
package linker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/communities/bfs"
	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/core"
	"github.com/katalvlaran/communities/dfs"
	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/planner"
	"github.com/katalvlaran/communities/precinct"
)

// ErrNoLinkCandidate indicates a chain still short of its target with no
// island left to link.
var ErrNoLinkCandidate = errors.New("linker: no link candidate")

// Link joins two precincts on different islands.
type Link struct {
	From       string `json:"from"`
	To         string `json:"to"`
	FromIsland int    `json:"from_island"`
	ToIsland   int    `json:"to_island"`
}

// Chain describes one multi-island community.
type Chain struct {
	Community int    `json:"community"`
	Islands   []int  `json:"islands"`
	Links     []Link `json:"links"`
}

// Options configures Connect.
type Options struct {
	// FirstID is the community ID given to the first chain.
	FirstID int
	Logger  *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions starts IDs at 1 and logs nowhere.
func DefaultOptions() Options {
	return Options{FirstID: 1, Logger: zap.NewNop()}
}

// WithFirstID sets the ID of the first chained community.
func WithFirstID(id int) Option {
	return func(o *Options) { o.FirstID = id }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

type linker struct {
	ctx      context.Context
	g        *core.Graph
	islands  [][]*precinct.Precinct
	opts     Options
	eligible map[int][]*precinct.Precinct
	reserved map[string]bool
}

// Connect builds one Builder per chain and adds every link to g as a corridor.
// g must have been created WithCorridors. Builders get consecutive IDs from
// Options.FirstID.
func Connect(ctx context.Context, g *core.Graph, islands [][]*precinct.Precinct, plan *planner.Plan, opts ...Option) ([]Chain, []*community.Builder, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(plan.Leftover) != len(islands) {
		return nil, nil, fmt.Errorf("%w: plan covers %d islands, got %d", planner.ErrInfeasible, len(plan.Leftover), len(islands))
	}
	l := &linker{
		ctx:      ctx,
		g:        g,
		islands:  islands,
		opts:     o,
		eligible: make(map[int][]*precinct.Precinct),
		reserved: make(map[string]bool),
	}

	available := append([]int(nil), plan.Leftover...)
	remaining := append([]int(nil), plan.Remaining...)
	nextID := o.FirstID

	var (
		chains   []Chain
		builders []*community.Builder
	)
	for progressed := true; progressed; {
		progressed = false
		for i := range islands {
			if available[i] == 0 {
				continue
			}
			if len(remaining) == 0 {
				return nil, nil, fmt.Errorf("%w: island %d has %d precincts left and no community to join", planner.ErrInfeasible, i, available[i])
			}
			ch, b, err := l.chain(i, remaining[0], available, nextID)
			if err != nil {
				return nil, nil, err
			}
			chains = append(chains, ch)
			builders = append(builders, b)
			remaining = remaining[1:]
			nextID++
			progressed = true
		}
	}
	if len(remaining) > 0 {
		return nil, nil, fmt.Errorf("%w: %d community sizes left unplaced", planner.ErrInfeasible, len(remaining))
	}

	for _, ch := range chains {
		for _, lk := range ch.Links {
			if g.HasEdge(lk.From, lk.To) {
				continue
			}
			if _, err := g.AddEdge(lk.From, lk.To, core.AsCorridor()); err != nil {
				return nil, nil, fmt.Errorf("linker: corridor %s-%s: %w", lk.From, lk.To, err)
			}
		}
	}

	return chains, builders, nil
}

// chain grows one community from island home until it reaches target.
func (l *linker) chain(home, target int, available []int, id int) (Chain, *community.Builder, error) {
	b := community.NewBuilder(id)
	b.Allot(home, available[home])
	available[home] = 0
	ch := Chain{Community: id, Islands: []int{home}}
	inChain := map[int]bool{home: true}

	last := home
	var entry *precinct.Precinct
	for b.Total() < target {
		if err := l.ctx.Err(); err != nil {
			return Chain{}, nil, err
		}
		froms := []*precinct.Precinct{entry}
		if entry == nil {
			var err error
			if froms, err = l.free(last); err != nil {
				return Chain{}, nil, err
			}
		}

		var (
			bestFrom, bestTo *precinct.Precinct
			bestIsland       int
			bestD            float64
		)
		for j := range l.islands {
			if inChain[j] || available[j] == 0 {
				continue
			}
			tos, err := l.free(j)
			if err != nil {
				return Chain{}, nil, err
			}
			for _, q := range tos {
				for _, a := range froms {
					if d := a.DistanceSquared(q); bestTo == nil || d < bestD {
						bestFrom, bestTo, bestIsland, bestD = a, q, j, d
					}
				}
			}
		}
		if bestTo == nil {
			return Chain{}, nil, fmt.Errorf("%w: community %d at %d of %d precincts, last island %d",
				ErrNoLinkCandidate, id, b.Total(), target, last)
		}

		l.reserved[bestFrom.ID()] = true
		l.reserved[bestTo.ID()] = true
		b.Seed(last, bestFrom.ID())
		b.Seed(bestIsland, bestTo.ID())
		b.Allot(bestIsland, available[bestIsland])
		available[bestIsland] = 0
		inChain[bestIsland] = true
		ch.Islands = append(ch.Islands, bestIsland)
		ch.Links = append(ch.Links, Link{From: bestFrom.ID(), To: bestTo.ID(), FromIsland: last, ToIsland: bestIsland})
		l.opts.Logger.Debug("islands linked",
			zap.Int("community", id),
			zap.String("from", bestFrom.ID()),
			zap.String("to", bestTo.ID()),
			zap.Int("from_island", last),
			zap.Int("to_island", bestIsland))

		last, entry = bestIsland, bestTo
	}

	if over := b.Total() - target; over > 0 {
		b.Allot(last, b.Allotment[last]-over)
		available[last] += over
	}

	return ch, b, nil
}

// free returns the eligible precincts of island i not reserved by any chain.
func (l *linker) free(i int) ([]*precinct.Precinct, error) {
	all, err := l.coast(i)
	if err != nil {
		return nil, err
	}
	out := make([]*precinct.Precinct, 0, len(all))
	for _, p := range all {
		if !l.reserved[p.ID()] {
			out = append(out, p)
		}
	}

	return out, nil
}

// coast caches the precincts of island i that touch its outer boundary and
// are not cut vertices of the island.
func (l *linker) coast(i int) ([]*precinct.Precinct, error) {
	if ps, ok := l.eligible[i]; ok {
		return ps, nil
	}
	members := l.islands[i]
	region := geometry.NewRegion()
	for _, p := range members {
		region.Add(p.Outline())
	}
	cut, err := dfs.ArticulationPoints(l.g, precinct.IDs(members),
		dfs.WithContext(l.ctx),
		dfs.WithFilterNeighbor(bfs.BordersOnly(l.g)))
	if err != nil {
		return nil, fmt.Errorf("linker: island %d: %w", i, err)
	}
	var out []*precinct.Precinct
	for _, p := range members {
		if !cut[p.ID()] && region.OnBoundary(p.Outline()) {
			out = append(out, p)
		}
	}
	l.eligible[i] = out

	return out, nil
}
