package core_test

import (
	"fmt"

	"github.com/katalvlaran/communities/core"
)

// ExampleGraph demonstrates building a small adjacency graph with a ferry corridor.
func ExampleGraph() {
	g := core.NewGraph(core.WithCorridors())

	// Three mainland precincts in a row, plus an island reached by ferry.
	_, _ = g.AddEdge("m1", "m2")
	_, _ = g.AddEdge("m2", "m3")
	_, _ = g.AddEdge("m3", "isle", core.AsCorridor())

	nbrs, _ := g.NeighborIDs("m3")
	fmt.Println("Vertices:", g.Vertices())
	fmt.Println("m3 neighbors:", nbrs)
	for _, e := range g.Corridors() {
		fmt.Printf("%s: %s-%s (%s)\n", e.ID, e.From, e.To, e.Kind)
	}

	// Output:
	// Vertices: [m1 m2 m3 isle]
	// m3 neighbors: [isle m2]
	// e3: m3-isle (corridor)
}
