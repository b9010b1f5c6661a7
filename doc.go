// Package communities partitions a state's precincts into N contiguous
// communities of near-equal population, then refines the partition so
// each community is as politically homogeneous as it can be.
//
// 🚀 What happens in a run?
//
//  1. Adjacency: precincts sharing a boundary segment become neighbors
//  2. Islands:   connected components of the border graph
//  3. Plan:      target sizes, whole-island communities, leftovers
//  4. Link:      leftovers chained across islands by corridor edges
//  5. Fill:      randomized contiguous growth of every community
//  6. Refine:    population balancing, then partisanship minimization
//
// Under the hood, everything is organized under these subpackages:
//
//	core/      thread-safe precinct adjacency Graph with Border and Corridor edges
//	bfs/, dfs/ traversal, components, connectivity and articulation points
//	geometry/  polygon outlines, shared-border oracle, pairwise neighbor search
//	precinct/  the immutable Precinct with population and votes
//	community/ Community aggregates, the Partition and in-progress Builders
//	planner/   community sizes and island allotments
//	linker/    cross-island chains and their corridors
//	filler/    the randomized restart-on-failure fill
//	refine/    the worst-community exchange loop and its metrics
//	pipeline/  the stage driver with snapshots on failure
//	dataset/   GeoJSON precincts in, GeoJSON communities out
//	config/, logging/, metrics/, snapshot/ run settings and observability
//	synth/     synthetic grids, archipelagos and wheels for tests and demos
//
// Quick start:
//
//	go run ./cmd/communities -synth 6x6 -communities 4 -out communities.geojson
//
// See examples/ for programmatic use.
package communities
