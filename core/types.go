// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrEmptyVertexID indicates that the provided vertex ID is empty.
	ErrEmptyVertexID = errors.New("core: vertex ID is empty")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrDuplicateEdge indicates the endpoints are already adjacent.
	ErrDuplicateEdge = errors.New("core: vertices already adjacent")

	// ErrCorridorNotAllowed indicates a Corridor edge on a graph without corridor support.
	ErrCorridorNotAllowed = errors.New("core: corridor edges not allowed")
)

// EdgeKind tells why two precincts are adjacent.
type EdgeKind int

const (
	// Border edges join precincts sharing a boundary segment.
	Border EdgeKind = iota
	// Corridor edges join precincts declared connected without touching.
	Corridor
)

// String implements fmt.Stringer.
func (k EdgeKind) String() string {
	switch k {
	case Border:
		return "border"
	case Corridor:
		return "corridor"
	default:
		return "unknown"
	}
}

// Edge is an undirected adjacency between two precincts.
type Edge struct {
	// ID uniquely identifies this edge in the Graph.
	ID string

	// From and To are the endpoint IDs, in the order AddEdge received them.
	From string
	To   string

	// Kind is Border or Corridor.
	Kind EdgeKind
}

// Other returns the endpoint opposite id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}

	return e.From
}

// GraphOption configures behavior of a Graph before creation.
type GraphOption func(g *Graph)

// WithCorridors permits Corridor edges.
func WithCorridors() GraphOption {
	return func(g *Graph) { g.allowCorridors = true }
}

// WithCapacity pre-sizes the vertex maps for n precincts.
func WithCapacity(n int) GraphOption {
	return func(g *Graph) {
		if n > 0 {
			g.capacity = n
		}
	}
}

// EdgeOption configures properties of individual edges when added.
type EdgeOption func(*Edge)

// AsCorridor marks the edge as a Corridor.
func AsCorridor() EdgeOption {
	return func(e *Edge) { e.Kind = Corridor }
}

// Graph is the precinct adjacency graph.
//
// muVert protects vertices and order; muEdgeAdj protects edges and adjacency.
// nextEdgeID is an atomic counter for unique Edge.ID generation.
type Graph struct {
	muVert    sync.RWMutex // guards vertices, order
	muEdgeAdj sync.RWMutex // guards edges, adjacency

	allowCorridors bool
	capacity       int

	nextEdgeID uint64
	vertices   map[string]int // vertex ID → insertion index
	order      []string
	edges      map[string]*Edge

	// adjacency[from][to] = edgeID, mirrored.
	adjacency map[string]map[string]string
}

// NewGraph creates an empty Graph. By default only Border edges are accepted.
// Complexity: O(1)
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	g.vertices = make(map[string]int, g.capacity)
	g.order = make([]string, 0, g.capacity)
	g.edges = make(map[string]*Edge, 3*g.capacity)
	g.adjacency = make(map[string]map[string]string, g.capacity)

	return g
}
