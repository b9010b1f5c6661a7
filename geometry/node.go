package geometry

import (
	"context"
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/katalvlaran/communities/workers"
)

// onSegment is the largest distance from a segment, as a fraction of its
// length, at which a vertex still counts as lying on it.
const onSegment = 1e-9

// Node splits every segment of polys at the vertices of other polygons that
// lie strictly inside it, so polygons sharing part of a border also share
// every vertex along it. A long edge running past two smaller neighbors (a
// T-junction) becomes one segment per neighbor. Polygons that gain no vertex
// are returned as given. Work runs on at most limit goroutines.
func Node(ctx context.Context, polys []geom.Polygon, limit int) ([]geom.Polygon, error) {
	index := rtree.NewTree(25, 50)
	for i, p := range polys {
		if len(p) == 0 {
			continue
		}
		index.Insert(&indexed{Polygon: p, i: i})
	}

	out := make([]geom.Polygon, len(polys))
	err := workers.Run(ctx, limit, len(polys), func(_ context.Context, i int) error {
		out[i] = polys[i]
		if len(polys[i]) == 0 {
			return nil
		}
		var pts []geom.Point
		for _, hit := range index.SearchIntersect(searchBox(polys[i])) {
			if j := hit.(*indexed).i; j != i {
				pts = append(pts, vertices(polys[j])...)
			}
		}
		out[i] = split(polys[i], pts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// VertexCount returns the number of vertices of p, closing vertices included.
func VertexCount(p geom.Polygon) int {
	n := 0
	for _, r := range p {
		n += len(r)
	}

	return n
}

func vertices(p geom.Polygon) []geom.Point {
	pts := make([]geom.Point, 0, VertexCount(p))
	for _, r := range p {
		pts = append(pts, r...)
	}

	return pts
}

// searchBox is the bounding box of p widened so that polygons meeting
// exactly on its edge are still returned by the index.
func searchBox(p geom.Polygon) *geom.Bounds {
	b := *p.Bounds()
	b.Min.X -= touchSlack
	b.Min.Y -= touchSlack
	b.Max.X += touchSlack
	b.Max.Y += touchSlack

	return &b
}

// split inserts the points of pts lying inside a segment of p. It returns p
// itself when nothing was inserted.
func split(p geom.Polygon, pts []geom.Point) geom.Polygon {
	if len(pts) == 0 {
		return p
	}
	out := make(geom.Polygon, len(p))
	changed := false
	for i, ring := range p {
		closed := len(ring) > 1 && ring[0] == ring[len(ring)-1]
		segs := len(ring)
		if closed {
			segs--
		}
		nr := make(geom.Path, 0, len(ring))
		for k := 0; k < segs; k++ {
			nr = append(nr, ring[k])
			if on := inside(ring[k], ring[(k+1)%len(ring)], pts); len(on) > 0 {
				nr = append(nr, on...)
				changed = true
			}
		}
		if closed {
			nr = append(nr, ring[len(ring)-1])
		}
		out[i] = nr
	}
	if !changed {
		return p
	}

	return out
}

// inside returns the distinct points of pts strictly between a and b on the
// segment a-b, ordered from a to b.
func inside(a, b geom.Point, pts []geom.Point) []geom.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return nil
	}
	type hit struct {
		t float64
		p geom.Point
	}
	var hits []hit
	for _, p := range pts {
		if p == a || p == b {
			continue
		}
		// |cross| / |ab| is the distance from p to the line.
		if cross := (p.X-a.X)*dy - (p.Y-a.Y)*dx; math.Abs(cross) > onSegment*l2 {
			continue
		}
		if t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2; t > 0 && t < 1 {
			hits = append(hits, hit{t: t, p: p})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
	on := make([]geom.Point, 0, len(hits))
	for _, h := range hits {
		if len(on) == 0 || on[len(on)-1] != h.p {
			on = append(on, h.p)
		}
	}

	return on
}
