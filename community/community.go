package community

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ctessum/geom"

	"github.com/katalvlaran/communities/geometry"
	"github.com/katalvlaran/communities/precinct"
)

// Community is a set of precincts with cached metrics.
type Community struct {
	mu sync.RWMutex

	id        int
	precincts map[string]*precinct.Precinct
	region    *geometry.Region

	population   int
	partisanship float64
	stdev        float64
	compactness  float64
}

func newCommunity(id int) *Community {
	return &Community{
		id:        id,
		precincts: make(map[string]*precinct.Precinct),
		region:    geometry.NewRegion(),
	}
}

// ID returns the community identifier.
func (c *Community) ID() int { return c.id }

// Len returns the number of precincts.
func (c *Community) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.precincts)
}

// Has reports whether precinct id is a member.
func (c *Community) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.precincts[id]

	return ok
}

// PrecinctIDs returns the member IDs sorted ascending.
func (c *Community) PrecinctIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedIDs()
}

// Precincts returns the members sorted by ID.
func (c *Community) Precincts() []*precinct.Precinct {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sorted()
}

func (c *Community) sortedIDs() []string {
	ids := make([]string, 0, len(c.precincts))
	for id := range c.precincts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (c *Community) sorted() []*precinct.Precinct {
	ids := c.sortedIDs()
	out := make([]*precinct.Precinct, len(ids))
	for i, id := range ids {
		out[i] = c.precincts[id]
	}

	return out
}

// Population returns the summed population.
func (c *Community) Population() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.population
}

// Partisanship returns the Republican two-party share in [0, 1].
func (c *Community) Partisanship() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.partisanship
}

// StandardDeviation returns the spread of per-precinct partisanship.
func (c *Community) StandardDeviation() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stdev
}

// Compactness returns the Schwartzberg score of the community's region.
func (c *Community) Compactness() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.compactness
}

// Boundary returns the outline of the union of the members.
func (c *Community) Boundary() geom.Polygon {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.region.Boundary()
}

// Refresh recomputes every cached metric from the roster.
func (c *Community) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute()
}

// add and remove require c.mu held for writing.
func (c *Community) add(p *precinct.Precinct) {
	c.precincts[p.ID()] = p
	c.region.Add(p.Outline())
	c.recompute()
}

func (c *Community) remove(p *precinct.Precinct) {
	delete(c.precincts, p.ID())
	c.region.Remove(p.Outline())
	c.recompute()
}

func (c *Community) recompute() {
	members := c.sorted()
	c.population = PopulationOf(members)
	c.partisanship = PartisanshipOf(members)
	c.stdev = StandardDeviationOf(members)
	c.compactness = c.region.Compactness()
}

// String implements fmt.Stringer.
func (c *Community) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return fmt.Sprintf("Community(%d n=%d pop=%d share=%.3f sd=%.3f)",
		c.id, len(c.precincts), c.population, c.partisanship, c.stdev)
}

// View is an immutable snapshot of a community.
type View struct {
	ID                int          `json:"id"`
	Precincts         []string     `json:"precincts"`
	Boundary          geom.Polygon `json:"-"`
	Population        int          `json:"population"`
	Partisanship      float64      `json:"partisanship"`
	StandardDeviation float64      `json:"standard_deviation"`
	Compactness       float64      `json:"compactness"`
}

// Snapshot returns a View of the current state.
func (c *Community) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return View{
		ID:                c.id,
		Precincts:         c.sortedIDs(),
		Boundary:          c.region.Boundary(),
		Population:        c.population,
		Partisanship:      c.partisanship,
		StandardDeviation: c.stdev,
		Compactness:       c.compactness,
	}
}
