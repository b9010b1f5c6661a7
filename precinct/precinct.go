// Package precinct defines the indivisible voting unit the partitioner moves
// between communities: an ID, a polygon boundary, a population and the votes
// cast in it.
//
// A Precinct is immutable after New and safe to share across goroutines.
// New normalizes the boundary once so bordering and union queries never
// re-derive ring orientation.
package precinct

import (
	"errors"
	"fmt"

	"github.com/ctessum/geom"

	"github.com/katalvlaran/communities/geometry"
)

var (
	// ErrEmptyID indicates a precinct without an identifier.
	ErrEmptyID = errors.New("precinct: empty ID")

	// ErrNegativeCount indicates a negative population or vote count.
	ErrNegativeCount = errors.New("precinct: negative count")

	// ErrEmptyBoundary indicates a boundary with no usable ring.
	ErrEmptyBoundary = errors.New("precinct: empty boundary")
)

// Votes holds the ballots cast in one precinct.
type Votes struct {
	Democratic   int `json:"dem"`
	Republican   int `json:"rep"`
	Green        int `json:"green,omitempty"`
	Libertarian  int `json:"lib,omitempty"`
	Reform       int `json:"reform,omitempty"`
	Independent  int `json:"ind,omitempty"`
	Constitution int `json:"const,omitempty"`
}

// TwoParty returns Democratic + Republican.
func (v Votes) TwoParty() int { return v.Democratic + v.Republican }

// Total returns every ballot counted.
func (v Votes) Total() int {
	return v.TwoParty() + v.Green + v.Libertarian + v.Reform + v.Independent + v.Constitution
}

// Share returns the Republican fraction of the two-party vote, 0 with no votes.
func (v Votes) Share() float64 {
	if v.TwoParty() == 0 {
		return 0
	}

	return float64(v.Republican) / float64(v.TwoParty())
}

func (v Votes) validate() error {
	for _, n := range []int{v.Democratic, v.Republican, v.Green, v.Libertarian, v.Reform, v.Independent, v.Constitution} {
		if n < 0 {
			return ErrNegativeCount
		}
	}

	return nil
}

// Precinct is one indivisible unit of the partition.
type Precinct struct {
	id         string
	boundary   geom.Polygon
	population int
	votes      Votes

	outline  *geometry.Outline
	centroid geom.Point
}

// New validates and builds a Precinct.
func New(id string, boundary geom.Polygon, population int, votes Votes) (*Precinct, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if population < 0 {
		return nil, fmt.Errorf("%w: population %d of %q", ErrNegativeCount, population, id)
	}
	if err := votes.validate(); err != nil {
		return nil, fmt.Errorf("%w: votes of %q", err, id)
	}
	o := geometry.NewOutline(boundary)
	if o.Parts() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyBoundary, id)
	}

	return &Precinct{
		id:         id,
		boundary:   boundary,
		population: population,
		votes:      votes,
		outline:    o,
		centroid:   o.Centroid(),
	}, nil
}

// ID returns the unique identifier.
func (p *Precinct) ID() string { return p.id }

// Boundary returns the polygon as supplied to New.
func (p *Precinct) Boundary() geom.Polygon { return p.boundary }

// Outline returns the normalized boundary segments.
func (p *Precinct) Outline() *geometry.Outline { return p.outline }

// Population returns the resident count.
func (p *Precinct) Population() int { return p.population }

// Votes returns the ballot counts.
func (p *Precinct) Votes() Votes { return p.votes }

// HasVotes reports whether any two-party ballots were cast.
func (p *Precinct) HasVotes() bool { return p.votes.TwoParty() > 0 }

// Partisanship returns the Republican two-party share in [0, 1], 0 with no votes.
func (p *Precinct) Partisanship() float64 { return p.votes.Share() }

// Centroid returns the area-weighted centroid of the boundary.
func (p *Precinct) Centroid() geom.Point { return p.centroid }

// Area returns the boundary area.
func (p *Precinct) Area() float64 { return p.outline.Area() }

// DistanceSquared returns the squared distance between the two centroids.
func (p *Precinct) DistanceSquared(q *Precinct) float64 {
	dx := p.centroid.X - q.centroid.X
	dy := p.centroid.Y - q.centroid.Y

	return dx*dx + dy*dy
}

// String implements fmt.Stringer.
func (p *Precinct) String() string {
	return fmt.Sprintf("Precinct(%s pop=%d share=%.3f)", p.id, p.population, p.Partisanship())
}

// IDs returns the IDs of ps in order.
func IDs(ps []*Precinct) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.id
	}

	return out
}
