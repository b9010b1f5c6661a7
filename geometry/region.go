package geometry

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// Region is the union of a set of outlines, kept as a multiset of the
// directed segments that are not cancelled by a neighbor inside the region.
//
// Region is not safe for concurrent mutation; concurrent readers are fine
// while nobody calls Add or Remove.
type Region struct {
	segments map[Segment]int
	members  int
}

// NewRegion returns an empty region.
func NewRegion() *Region {
	return &Region{segments: make(map[Segment]int)}
}

// Add merges o into the region. Segments o shares with a member cancel.
func (r *Region) Add(o *Outline) {
	for _, s := range o.segments {
		rev := s.Reverse()
		if n := r.segments[rev]; n > 0 {
			r.dec(rev, n)
			continue
		}
		r.segments[s]++
	}
	r.members++
}

// Remove takes o out of the region, restoring any segments its presence
// had cancelled. Removing an outline that was never added corrupts the region.
func (r *Region) Remove(o *Outline) {
	for _, s := range o.segments {
		if n := r.segments[s]; n > 0 {
			r.dec(s, n)
			continue
		}
		r.segments[s.Reverse()]++
	}
	r.members--
}

func (r *Region) dec(s Segment, n int) {
	if n == 1 {
		delete(r.segments, s)
		return
	}
	r.segments[s] = n - 1
}

// OnBoundary reports whether o, a member of the region, has at least one
// segment on the region's outer boundary.
func (r *Region) OnBoundary(o *Outline) bool {
	for _, s := range o.segments {
		if r.segments[s] > 0 {
			return true
		}
	}

	return false
}

// Empty reports whether the region has no members.
func (r *Region) Empty() bool { return r.members == 0 }

// Len returns the number of member outlines.
func (r *Region) Len() int { return r.members }

// Area returns the enclosed area, computed from the boundary segments.
// Sums run over sorted segments so results never depend on map iteration
// or on the order members were added.
func (r *Region) Area() float64 {
	var twice float64
	for _, s := range r.sortedSegments() {
		twice += s.A.X*s.B.Y - s.B.X*s.A.Y
	}
	if twice < 0 {
		return 0
	}

	return twice / 2
}

// Perimeter returns the length of the boundary.
func (r *Region) Perimeter() float64 {
	var p float64
	for _, s := range r.sortedSegments() {
		p += s.Length()
	}

	return p
}

// sortedSegments expands the multiset into a sorted slice.
func (r *Region) sortedSegments() []Segment {
	segs := make([]Segment, 0, len(r.segments))
	for s, n := range r.segments {
		for i := 0; i < n; i++ {
			segs = append(segs, s)
		}
	}
	sort.Slice(segs, func(i, j int) bool { return lessSegment(segs[i], segs[j]) })

	return segs
}

// Compactness returns the Schwartzberg score of the region, 0 when empty.
func (r *Region) Compactness() float64 {
	if r.members == 0 {
		return 0
	}
	return Schwartzberg(r.Area(), r.Perimeter())
}

// Schwartzberg returns 2π·sqrt(area/π) / perimeter, 0 for a zero perimeter.
func Schwartzberg(area, perimeter float64) float64 {
	if perimeter <= 0 || area <= 0 {
		return 0
	}

	return 2 * math.Pi * math.Sqrt(area/math.Pi) / perimeter
}

// Boundary chains the surviving segments into closed rings. Exterior rings
// run counter-clockwise and holes clockwise; the result is deterministic.
func (r *Region) Boundary() geom.Polygon {
	segs := r.sortedSegments()

	// out[start] lists segment indexes leaving start, in sorted order.
	out := make(map[geom.Point][]int, len(segs))
	for i, s := range segs {
		out[s.A] = append(out[s.A], i)
	}
	used := make([]bool, len(segs))
	next := func(at geom.Point) int {
		for _, i := range out[at] {
			if !used[i] {
				return i
			}
		}
		return -1
	}

	var poly geom.Polygon
	for i := range segs {
		if used[i] {
			continue
		}
		start := segs[i].A
		ring := geom.Path{start}
		for k := i; k >= 0; k = next(ring[len(ring)-1]) {
			used[k] = true
			ring = append(ring, segs[k].B)
			if segs[k].B == start {
				break
			}
		}
		if len(ring) >= 4 && ring[0] == ring[len(ring)-1] {
			poly = append(poly, ring)
		}
	}

	return poly
}

func lessSegment(a, b Segment) bool {
	if a.A.X != b.A.X {
		return a.A.X < b.A.X
	}
	if a.A.Y != b.A.Y {
		return a.A.Y < b.A.Y
	}
	if a.B.X != b.B.X {
		return a.B.X < b.B.X
	}
	return a.B.Y < b.B.Y
}
