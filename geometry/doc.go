// Package geometry answers the planar questions the partitioner asks about
// precinct polygons: do two precincts share a boundary, what is the outline
// of a set of precincts, how compact is it, how many disjoint parts does it
// have, and which precincts touch the outer edge of a region.
//
// What:
//
//   - Outline: the directed boundary segments of one polygon, with exterior
//     rings normalized counter-clockwise and holes clockwise.
//   - Region: an incrementally maintained union of outlines. Adding a precinct
//     cancels every segment it shares with a member already inside, so the
//     surviving segments are exactly the region's boundary. Removing a
//     precinct restores them. Both are O(segments of the precinct).
//   - Oracle / Planar: containment and bordering of whole polygons.
//   - Node: splits edges at the vertices of neighboring polygons lying on
//     them, so every shared stretch of border is a shared segment.
//   - Neighbors: rtree-accelerated discovery of bordering precinct pairs on a
//     worker pool.
//
// Why:
//
//	Precincts of a real dataset tile the plane. Once noded, neighbors share
//	vertices exactly and the union of tiled inputs reduces to segment
//	cancellation, so a community's boundary never has to be recomputed from
//	scratch after an exchange.
//
// Bordering:
//
//	Two polygons border when they share a stretch of boundary of positive
//	length, even when one edge runs past several edges of the other (a
//	T-junction). Touching at a single vertex is not bordering. Coordinates
//	are compared exactly; snap noisy inputs to a grid with Snap first.
//
// Compactness:
//
//	Schwartzberg score = 2π·sqrt(A/π) / P, the ratio of the perimeter of a
//	circle with the region's area to the region's perimeter. 1 for a disc,
//	≈0.886 for a square, towards 0 for elongated shapes.
//
// Complexity:
//
//	NewOutline O(k + r²) for k segments and r rings, Region.Add/Remove O(k),
//	Region.Boundary O(s log s) for s boundary segments,
//	Node and Neighbors O(n log n + pairs·k) on the pool.
package geometry
