package geometry_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/ctessum/geom"

	"github.com/katalvlaran/communities/geometry"
)

func BenchmarkNeighbors_Grid(b *testing.B) {
	const n = 40
	polys := make([]geom.Polygon, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			polys = append(polys, square(float64(c), float64(r)))
		}
	}
	workers := runtime.GOMAXPROCS(0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := geometry.Neighbors(context.Background(), geometry.Planar{}, polys, workers); err != nil {
			b.Fatal(err)
		}
	}
}
