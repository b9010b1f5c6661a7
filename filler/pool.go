package filler

import (
	"sync"

	"github.com/ctessum/geom"

	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/precinct"
)

// Pool is the unclaimed part of one island. Successive fills on the same
// island share it.
type Pool struct {
	mu      sync.RWMutex
	order   []*precinct.Precinct
	members map[string]*precinct.Precinct
	region  *geometry.Region
}

// NewPool returns a pool holding ps. Listing order follows ps.
func NewPool(ps []*precinct.Precinct) *Pool {
	pl := &Pool{
		order:   ps,
		members: make(map[string]*precinct.Precinct, len(ps)),
		region:  geometry.NewRegion(),
	}
	for _, p := range ps {
		if _, dup := pl.members[p.ID()]; dup {
			continue
		}
		pl.members[p.ID()] = p
		pl.region.Add(p.Outline())
	}

	return pl
}

// Len returns the number of unclaimed precincts.
func (pl *Pool) Len() int {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return len(pl.members)
}

// Has reports whether precinct id is unclaimed.
func (pl *Pool) Has(id string) bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	_, ok := pl.members[id]

	return ok
}

// IDs returns the unclaimed precinct IDs in listing order.
func (pl *Pool) IDs() []string {
	ps := pl.Precincts()
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}

	return out
}

// Precincts returns the unclaimed precincts in listing order.
func (pl *Pool) Precincts() []*precinct.Precinct {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	out := make([]*precinct.Precinct, 0, len(pl.members))
	seen := make(map[string]bool, len(pl.members))
	for _, p := range pl.order {
		if _, ok := pl.members[p.ID()]; ok && !seen[p.ID()] {
			seen[p.ID()] = true
			out = append(out, p)
		}
	}

	return out
}

// Boundary returns the outline of the unclaimed area.
func (pl *Pool) Boundary() geom.Polygon {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return pl.region.Boundary()
}

// coastal reports whether p touches the edge of the unclaimed area.
func (pl *Pool) coastal(p *precinct.Precinct) bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	return pl.region.OnBoundary(p.Outline())
}

// take claims p. It reports false when p was not in the pool.
func (pl *Pool) take(p *precinct.Precinct) bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if _, ok := pl.members[p.ID()]; !ok {
		return false
	}
	delete(pl.members, p.ID())
	pl.region.Remove(p.Outline())

	return true
}

// give returns p to the pool.
func (pl *Pool) give(p *precinct.Precinct) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if _, ok := pl.members[p.ID()]; ok {
		return
	}
	pl.members[p.ID()] = p
	pl.region.Add(p.Outline())
}
