// Package dfs finds articulation points (cut vertices) of a core.Graph,
// optionally restricted to a member subset.
//
// What:
//
//   - ArticulationPoints: vertices whose removal splits the connected piece
//     they belong to. Iterative Tarjan low-link search, so deep chains of
//     precincts never grow the goroutine stack.
//
// Why:
//
//	A precinct picked as a link endpoint must be removable from its island
//	without stranding part of the island: the island's remaining precincts
//	still have to be claimable by contiguous communities. Cut vertices are
//	exactly the precincts that would strand something.
//
// Options:
//
//   - WithContext: cancellation, checked once per vertex finish.
//   - WithFilterNeighbor: skip edges, e.g. bfs.BordersOnly.
//
// Complexity:
//
//	Time O(V + E·log d), Memory O(V).
//
// Errors:
//
//   - ErrGraphNil             graph pointer is nil
//   - ErrStartVertexNotFound  a member is not a vertex of the graph
//   - context errors
package dfs
