package refine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/precinct"
)

// Metric scores communities for one refinement pass. Lower is better.
type Metric interface {
	// Name labels logs, history and metrics.
	Name() string

	// Prepare is called at the start of every iteration, before any other
	// method, with the metrics of part freshly recomputed.
	Prepare(part *community.Partition)

	// Deviation scores c as it is.
	Deviation(c *community.Community) float64

	// Directions reports whether the worst community may give precincts
	// away and whether it may take them from its neighbors.
	Directions(worst *community.Community) (give, take bool)

	// Moved scores c as if p joined it (gain) or left it.
	Moved(c *community.Community, p *precinct.Precinct, gain bool) float64

	// Aggregate summarizes a whole partition.
	Aggregate(cs []*community.Community) float64
}

// Population scores a community by its absolute percent deviation from the
// ideal population.
type Population struct {
	// Ideal is the target population. Zero means total population divided
	// by the number of communities.
	Ideal float64

	// Overshoot, when positive, forbids moves that carry a community past
	// the ideal by more than this many percent.
	Overshoot float64

	ideal float64
}

// Name implements Metric.
func (m *Population) Name() string { return "population" }

// Prepare implements Metric.
func (m *Population) Prepare(part *community.Partition) {
	m.ideal = m.Ideal
	if m.ideal <= 0 {
		if n := len(part.Communities()); n > 0 {
			m.ideal = float64(part.TotalPopulation()) / float64(n)
		}
	}
}

// Target returns the ideal used by the current iteration.
func (m *Population) Target() float64 { return m.ideal }

func (m *Population) signed(pop int) float64 {
	if m.ideal <= 0 {
		return 0
	}

	return (float64(pop) - m.ideal) * 100 / m.ideal
}

// Deviation implements Metric.
func (m *Population) Deviation(c *community.Community) float64 {
	return math.Abs(m.signed(c.Population()))
}

// Directions implements Metric: an overpopulated community gives, an
// underpopulated one takes.
func (m *Population) Directions(worst *community.Community) (give, take bool) {
	d := m.signed(worst.Population())

	return d > 0, d < 0
}

// Moved implements Metric.
func (m *Population) Moved(c *community.Community, p *precinct.Precinct, gain bool) float64 {
	pop := c.Population()
	before := m.signed(pop)
	if gain {
		pop += p.Population()
	} else {
		pop -= p.Population()
	}
	after := m.signed(pop)
	if m.Overshoot > 0 && before*after < 0 && math.Abs(after) > m.Overshoot {
		return math.Inf(1)
	}

	return math.Abs(after)
}

// Aggregate implements Metric: the standard deviation of community
// populations.
func (m *Population) Aggregate(cs []*community.Community) float64 {
	if len(cs) == 0 {
		return 0
	}
	pops := make([]float64, len(cs))
	for i, c := range cs {
		pops[i] = float64(c.Population())
	}
	_, sd := stat.PopMeanStdDev(pops, nil)

	return sd
}

// Partisanship scores a community by the standard deviation of its
// precincts' republican two-party share.
type Partisanship struct{}

// Name implements Metric.
func (Partisanship) Name() string { return "partisanship" }

// Prepare implements Metric.
func (Partisanship) Prepare(*community.Partition) {}

// Deviation implements Metric.
func (Partisanship) Deviation(c *community.Community) float64 { return c.StandardDeviation() }

// Directions implements Metric: both ways.
func (Partisanship) Directions(*community.Community) (give, take bool) { return true, true }

// Moved implements Metric.
func (Partisanship) Moved(c *community.Community, p *precinct.Precinct, gain bool) float64 {
	members := c.Precincts()
	ps := make([]*precinct.Precinct, 0, len(members)+1)
	for _, q := range members {
		if q.ID() != p.ID() {
			ps = append(ps, q)
		}
	}
	if gain {
		ps = append(ps, p)
	}

	return community.StandardDeviationOf(ps)
}

// Aggregate implements Metric: the mean community standard deviation.
func (Partisanship) Aggregate(cs []*community.Community) float64 {
	if len(cs) == 0 {
		return 0
	}
	sds := make([]float64, len(cs))
	for i, c := range cs {
		sds[i] = c.StandardDeviation()
	}

	return stat.Mean(sds, nil)
}
