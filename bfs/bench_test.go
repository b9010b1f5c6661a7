package bfs_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/communities/bfs"
)

// BenchmarkConnected_Grid measures the contiguity check used on every fill pick.
func BenchmarkConnected_Grid(b *testing.B) {
	const n = 60
	g := grid(b, n, n)
	members := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			members = append(members, fmt.Sprintf("%d,%d", r, c))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bfs.Connected(g, members)
	}
}
