package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// Segment is a directed boundary edge.
type Segment struct {
	A, B geom.Point
}

// Reverse returns the segment walked the other way.
func (s Segment) Reverse() Segment { return Segment{A: s.B, B: s.A} }

// Length returns the Euclidean length of s.
func (s Segment) Length() float64 { return math.Hypot(s.B.X-s.A.X, s.B.Y-s.A.Y) }

// Outline is the normalized directed boundary of one polygon.
// Exterior rings run counter-clockwise, holes clockwise, so the interior is
// always on the left of every segment.
type Outline struct {
	rings     []geom.Path
	segments  []Segment
	area      float64
	perimeter float64
	parts     int
}

// NewOutline normalizes p. Rings are classified by nesting depth: a ring
// whose first vertex lies inside an odd number of the other rings is a hole.
// Closing duplicates, repeated vertices and rings with fewer than three
// distinct vertices are dropped.
func NewOutline(p geom.Polygon) *Outline {
	rings := make([][]geom.Point, 0, len(p))
	for _, r := range p {
		if open := openRing(r); len(open) >= 3 {
			rings = append(rings, open)
		}
	}

	o := &Outline{}
	for i, r := range rings {
		depth := 0
		for j, other := range rings {
			if i != j && r[0].Within(geom.Polygon{other}) == geom.Inside {
				depth++
			}
		}
		exterior := depth%2 == 0
		a := signedArea(r)
		if (a > 0) != exterior {
			reversePoints(r)
			a = -a
		}
		if exterior {
			o.parts++
		}
		o.area += a
		o.rings = append(o.rings, append(geom.Path(r), r[0]))
		for k := range r {
			s := Segment{A: r[k], B: r[(k+1)%len(r)]}
			o.segments = append(o.segments, s)
			o.perimeter += s.Length()
		}
	}

	return o
}

// Segments returns the directed segments. The slice must not be modified.
func (o *Outline) Segments() []Segment { return o.segments }

// Polygon returns the normalized closed rings.
func (o *Outline) Polygon() geom.Polygon {
	p := make(geom.Polygon, len(o.rings))
	for i, r := range o.rings {
		p[i] = append(geom.Path(nil), r...)
	}

	return p
}

// Centroid returns the area-weighted centroid of the normalized rings.
func (o *Outline) Centroid() geom.Point {
	if len(o.rings) == 0 {
		return geom.Point{}
	}

	return geom.Polygon(o.rings).Centroid()
}

// Area returns the enclosed area, holes subtracted.
func (o *Outline) Area() float64 { return o.area }

// Perimeter returns the total ring length, holes included.
func (o *Outline) Perimeter() float64 { return o.perimeter }

// Parts returns the number of exterior rings.
func (o *Outline) Parts() int { return o.parts }

// Borders reports whether o and other share at least one boundary segment.
func (o *Outline) Borders(other *Outline) bool {
	small, large := o, other
	if len(small.segments) > len(large.segments) {
		small, large = large, small
	}
	set := make(map[Segment]struct{}, len(small.segments))
	for _, s := range small.segments {
		set[s] = struct{}{}
	}
	for _, s := range large.segments {
		// Neighbors walk their common edge in opposite directions.
		if _, ok := set[s.Reverse()]; ok {
			return true
		}
	}

	return false
}

// Snap rounds every coordinate of p to the nearest multiple of tolerance,
// merging vertices that differ by floating point noise. A non-positive
// tolerance returns p unchanged.
func Snap(p geom.Polygon, tolerance float64) geom.Polygon {
	if tolerance <= 0 {
		return p
	}
	out := make(geom.Polygon, len(p))
	for i, r := range p {
		out[i] = make(geom.Path, len(r))
		for j, pt := range r {
			out[i][j] = geom.Point{
				X: math.Round(pt.X/tolerance) * tolerance,
				Y: math.Round(pt.Y/tolerance) * tolerance,
			}
		}
	}

	return out
}

// openRing drops the closing vertex and consecutive duplicates.
func openRing(r geom.Path) []geom.Point {
	out := make([]geom.Point, 0, len(r))
	for _, pt := range r {
		if len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}

	return out
}

// signedArea is the shoelace area, positive for counter-clockwise rings.
func signedArea(r []geom.Point) float64 {
	var sum float64
	for i := range r {
		j := (i + 1) % len(r)
		sum += r[i].X*r[j].Y - r[j].X*r[i].Y
	}

	return sum / 2
}

func reversePoints(r []geom.Point) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}
