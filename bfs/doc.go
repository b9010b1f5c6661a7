// Package bfs answers the two reachability questions the partitioner keeps
// asking of a core.Graph: which connected pieces does a set of precincts
// fall into, and is a set of precincts still one piece.
//
// What
//
//   - Components groups a member list into connected pieces (islands).
//   - Connected reports whether a member list forms a single piece.
//   - WithFilterNeighbor prunes individual edges; BordersOnly ignores
//     corridors, for contiguity on the ground.
//
// Why
//
//	Contiguity of a community, and "annexing this precinct does not split the
//	remaining unclaimed area", are both reachability questions on the
//	adjacency graph. Answering them on the graph instead of on polygons keeps
//	corridors first-class and costs O(V + E) of the subset only.
//
// Determinism
//
//	core.NeighborIDs returns sorted IDs and the walk enqueues in that order.
//	Components lists pieces in order of their first member in the input and
//	each piece in input order.
//
// Complexity (V = |members|, E = edges among them)
//
//   - Time:   O(V + E·log d)
//   - Memory: O(V)
//
// Errors
//
//	ErrGraphNil, ErrStartVertexNotFound, ErrNeighbors or context errors.
package bfs
