package geometry

import (
	"github.com/ctessum/geom"
)

// Oracle answers the polygon queries of adjacency discovery. Implementations
// must be safe for concurrent use.
type Oracle interface {
	// Contains reports whether pt lies inside p or on its edge.
	Contains(p geom.Polygon, pt geom.Point) bool
	// Borders reports whether a and b share a stretch of boundary.
	Borders(a, b geom.Polygon) bool
}

// Planar is the Oracle for precinct data in projected coordinates.
type Planar struct{}

var _ Oracle = Planar{}

// Contains implements Oracle.
func (Planar) Contains(p geom.Polygon, pt geom.Point) bool {
	return pt.Within(p) != geom.Outside
}

// Borders implements Oracle. Each polygon is split at the other's vertices
// first, so a border shared only in part still matches segment for segment.
func (Planar) Borders(a, b geom.Polygon) bool {
	na, nb := split(a, vertices(b)), split(b, vertices(a))

	return NewOutline(na).Borders(NewOutline(nb))
}
