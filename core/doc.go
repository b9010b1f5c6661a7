// Package core provides the thread-safe precinct adjacency Graph that every
// partitioning stage walks: island discovery, link-candidate screening,
// fill-time contiguity checks and refinement exchanges.
//
// The Graph G = (V,E) is undirected and unweighted. Vertices are precinct IDs.
// Every edge carries a Kind:
//
//   - Border: the two precincts share at least one boundary segment.
//   - Corridor: an externally declared connection (a bridge, a ferry, or a
//     link chosen while chaining islands) that counts as adjacency for
//     contiguity even though the polygons never touch.
//
// Storage follows the nested-map layout adjacency[from][to] = edgeID, mirrored
// for both endpoints, with collision-free atomic Edge.ID generation
// ("e1", "e2", …) and separate sync.RWMutex locks for vertices (muVert) and
// edges+adjacency (muEdgeAdj).
//
// Configuration Options (GraphOption):
//
//	– WithCorridors()
//	    Permits Corridor edges; otherwise AddEdge(..., AsCorridor()) → ErrCorridorNotAllowed.
//
// EdgeOptions:
//
//	– AsCorridor()
//	    Marks the new edge as a Corridor instead of a Border.
//
// Core Methods:
//
//	AddVertex(id string) error                               // O(1)
//	HasVertex(id string) bool                                // O(1)
//	AddEdge(from, to string, opts ...EdgeOption) (string, error) // O(1)
//	HasEdge(from, to string) bool                            // O(1)
//	Edge(from, to string) (*Edge, error)                     // O(1)
//	NeighborIDs(id string) ([]string, error)                 // O(d·log d)
//	Vertices() []string                                      // O(V), insertion order
//	Corridors() []*Edge                                      // O(E·log E)
//	VertexCount(), EdgeCount() int                           // O(1)
//
// Errors:
//
//	ErrEmptyVertexID      - vertex ID is the empty string.
//	ErrVertexNotFound     - requested vertex does not exist.
//	ErrEdgeNotFound       - requested edge does not exist.
//	ErrLoopNotAllowed     - a precinct cannot border itself.
//	ErrDuplicateEdge      - the two precincts are already adjacent.
//	ErrCorridorNotAllowed - corridor edge on a graph built without WithCorridors.
package core
