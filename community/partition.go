package community

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/communities/precinct"
)

// Sentinel errors for partition operations.
var (
	// ErrUnknownPrecinct indicates a precinct ID outside the universe.
	ErrUnknownPrecinct = errors.New("community: unknown precinct")

	// ErrUnknownCommunity indicates a community ID that was never created.
	ErrUnknownCommunity = errors.New("community: unknown community")

	// ErrDuplicatePrecinct indicates the universe lists a precinct ID twice.
	ErrDuplicatePrecinct = errors.New("community: duplicate precinct")

	// ErrAlreadyAssigned indicates Assign on a precinct that already has an owner.
	ErrAlreadyAssigned = errors.New("community: precinct already assigned")

	// ErrNotAssigned indicates Release or Move on an unowned precinct.
	ErrNotAssigned = errors.New("community: precinct not assigned")

	// ErrSameCommunity indicates a Move into the precinct's current owner.
	ErrSameCommunity = errors.New("community: precinct already in target community")

	// ErrLastPrecinct indicates a Move that would empty the giving community.
	ErrLastPrecinct = errors.New("community: cannot move a community's last precinct")

	// ErrIncomplete indicates precincts without an owner.
	ErrIncomplete = errors.New("community: partition incomplete")
)

// Partition maps every precinct of a fixed universe to at most one community.
type Partition struct {
	mu sync.RWMutex

	precincts   map[string]*precinct.Precinct
	order       []string
	communities map[int]*Community
	ids         []int
	owner       map[string]int
}

// NewPartition creates empty communities with the given IDs over the
// precinct universe ps.
func NewPartition(ps []*precinct.Precinct, ids []int) (*Partition, error) {
	p := &Partition{
		precincts:   make(map[string]*precinct.Precinct, len(ps)),
		order:       make([]string, 0, len(ps)),
		communities: make(map[int]*Community, len(ids)),
		owner:       make(map[string]int, len(ps)),
	}
	for _, pr := range ps {
		if _, dup := p.precincts[pr.ID()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePrecinct, pr.ID())
		}
		p.precincts[pr.ID()] = pr
		p.order = append(p.order, pr.ID())
	}
	for _, id := range ids {
		if _, dup := p.communities[id]; dup {
			return nil, fmt.Errorf("community: duplicate community %d", id)
		}
		p.communities[id] = newCommunity(id)
		p.ids = append(p.ids, id)
	}
	sort.Ints(p.ids)

	return p, nil
}

// Precinct looks up a precinct of the universe.
func (p *Partition) Precinct(id string) (*precinct.Precinct, bool) {
	pr, ok := p.precincts[id]
	return pr, ok
}

// Precincts returns the universe in construction order.
func (p *Partition) Precincts() []*precinct.Precinct {
	out := make([]*precinct.Precinct, len(p.order))
	for i, id := range p.order {
		out[i] = p.precincts[id]
	}

	return out
}

// Community looks up a community.
func (p *Partition) Community(id int) (*Community, bool) {
	c, ok := p.communities[id]
	return c, ok
}

// Communities returns all communities sorted by ID.
func (p *Partition) Communities() []*Community {
	out := make([]*Community, len(p.ids))
	for i, id := range p.ids {
		out[i] = p.communities[id]
	}

	return out
}

// Owner returns the community owning precinct id.
func (p *Partition) Owner(id string) (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cid, ok := p.owner[id]

	return cid, ok
}

// Assign gives an unowned precinct to community cid.
func (p *Partition) Assign(id string, cid int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr, c, err := p.lookup(id, cid)
	if err != nil {
		return err
	}
	if cur, owned := p.owner[id]; owned {
		return fmt.Errorf("%w: %q owned by %d", ErrAlreadyAssigned, id, cur)
	}
	c.mu.Lock()
	c.add(pr)
	c.mu.Unlock()
	p.owner[id] = cid

	return nil
}

// Release takes an owned precinct back out of its community. It is meant for
// construction; it may leave a community empty.
func (p *Partition) Release(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr, ok := p.precincts[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrecinct, id)
	}
	cid, owned := p.owner[id]
	if !owned {
		return fmt.Errorf("%w: %q", ErrNotAssigned, id)
	}
	c := p.communities[cid]
	c.mu.Lock()
	c.remove(pr)
	c.mu.Unlock()
	delete(p.owner, id)

	return nil
}

// Move transfers precinct id from its owner to community to. Both rosters,
// both regions, all cached metrics and the ownership index change together
// under the partition lock.
func (p *Partition) Move(id string, to int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pr, dst, err := p.lookup(id, to)
	if err != nil {
		return err
	}
	from, owned := p.owner[id]
	if !owned {
		return fmt.Errorf("%w: %q", ErrNotAssigned, id)
	}
	if from == to {
		return fmt.Errorf("%w: %q in %d", ErrSameCommunity, id, to)
	}
	src := p.communities[from]

	first, second := src, dst
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	defer first.mu.Unlock()
	defer second.mu.Unlock()

	if len(src.precincts) == 1 {
		return fmt.Errorf("%w: %q of %d", ErrLastPrecinct, id, from)
	}
	src.remove(pr)
	dst.add(pr)
	p.owner[id] = to

	return nil
}

func (p *Partition) lookup(id string, cid int) (*precinct.Precinct, *Community, error) {
	pr, ok := p.precincts[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownPrecinct, id)
	}
	c, ok := p.communities[cid]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCommunity, cid)
	}

	return pr, c, nil
}

// Unassigned returns the unowned precinct IDs in construction order.
func (p *Partition) Unassigned() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for _, id := range p.order {
		if _, ok := p.owner[id]; !ok {
			out = append(out, id)
		}
	}

	return out
}

// Complete returns ErrIncomplete unless every precinct has an owner.
func (p *Partition) Complete() error {
	if left := p.Unassigned(); len(left) > 0 {
		return fmt.Errorf("%w: %d precincts unassigned, first %q", ErrIncomplete, len(left), left[0])
	}

	return nil
}

// Assignment returns a copy of the ownership index.
func (p *Partition) Assignment() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]int, len(p.owner))
	for id, cid := range p.owner {
		out[id] = cid
	}

	return out
}

// Restore replaces the whole state with assignment. Precincts absent from
// assignment end up unowned.
func (p *Partition) Restore(assignment map[string]int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, cid := range assignment {
		if _, _, err := p.lookup(id, cid); err != nil {
			return err
		}
	}
	for _, cid := range p.ids {
		c := p.communities[cid]
		c.mu.Lock()
		for id, pr := range c.precincts {
			if assignment[id] != cid {
				delete(c.precincts, id)
				c.region.Remove(pr.Outline())
			}
		}
		c.mu.Unlock()
	}
	for _, id := range p.order {
		cid, ok := assignment[id]
		if !ok {
			continue
		}
		c := p.communities[cid]
		c.mu.Lock()
		if _, member := c.precincts[id]; !member {
			c.precincts[id] = p.precincts[id]
			c.region.Add(p.precincts[id].Outline())
		}
		c.mu.Unlock()
	}
	p.owner = make(map[string]int, len(assignment))
	for id, cid := range assignment {
		p.owner[id] = cid
	}
	p.refreshLocked()

	return nil
}

// Refresh recomputes the metrics of every community.
func (p *Partition) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshLocked()
}

func (p *Partition) refreshLocked() {
	for _, cid := range p.ids {
		p.communities[cid].Refresh()
	}
}

// TotalPopulation sums the population of the whole universe.
func (p *Partition) TotalPopulation() int {
	return PopulationOf(p.Precincts())
}

// Views snapshots every community, sorted by ID.
func (p *Partition) Views() []View {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]View, len(p.ids))
	for i, cid := range p.ids {
		out[i] = p.communities[cid].Snapshot()
	}

	return out
}
