package geometry

import (
	"context"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/katalvlaran/communities/workers"
)

// touchSlack widens search boxes so that polygons meeting exactly on a box
// edge are still returned by the index.
const touchSlack = 1e-9

type indexed struct {
	geom.Polygon
	i int
}

// Pair is an unordered pair of polygon indexes with I < J.
type Pair struct {
	I, J int
}

// Neighbors returns every pair of polys that border according to oracle,
// sorted by (I, J). Candidate pairs come from an rtree of bounding boxes and
// are confirmed on a pool of at most limit goroutines.
func Neighbors(ctx context.Context, oracle Oracle, polys []geom.Polygon, limit int) ([]Pair, error) {
	index := rtree.NewTree(25, 50)
	for i, p := range polys {
		if len(p) == 0 {
			continue
		}
		index.Insert(&indexed{Polygon: p, i: i})
	}

	found := make([][]Pair, len(polys))
	err := workers.Run(ctx, limit, len(polys), func(_ context.Context, i int) error {
		if len(polys[i]) == 0 {
			return nil
		}
		for _, hit := range index.SearchIntersect(searchBox(polys[i])) {
			j := hit.(*indexed).i
			if j <= i {
				continue
			}
			if oracle.Borders(polys[i], polys[j]) {
				found[i] = append(found[i], Pair{I: i, J: j})
			}
		}
		sort.Slice(found[i], func(a, b int) bool { return found[i][a].J < found[i][b].J })
		return nil
	})
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	for _, f := range found {
		pairs = append(pairs, f...)
	}

	return pairs, nil
}
