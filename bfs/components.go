package bfs

import (
	"sort"

	"github.com/katalvlaran/communities/core"
)

// Components partitions members into connected pieces of g. Pieces are
// ordered by their first member in the input and list members in input
// order. Duplicate IDs are ignored; IDs missing from g yield ErrStartVertexNotFound.
//
// Complexity: O(V + E·log d).
func Components(g *core.Graph, members []string, opts ...Option) ([][]string, error) {
	o, err := build(g, opts)
	if err != nil {
		return nil, err
	}
	in := set(members)
	rank := make(map[string]int, len(members))
	for i, id := range members {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}

	visited := make(map[string]bool, len(members))
	var out [][]string
	for _, id := range members {
		if visited[id] {
			continue
		}
		w := newWalker(g, o, in, visited)
		if err = w.start(id); err != nil {
			return nil, err
		}
		if err = w.loop(); err != nil {
			return nil, err
		}
		piece := w.order
		sort.Slice(piece, func(i, j int) bool { return rank[piece[i]] < rank[piece[j]] })
		out = append(out, piece)
	}

	return out, nil
}

// Connected reports whether members form a single connected piece of g.
// An empty member list is connected.
func Connected(g *core.Graph, members []string, opts ...Option) (bool, error) {
	if len(members) == 0 {
		return true, nil
	}
	o, err := build(g, opts)
	if err != nil {
		return false, err
	}
	in := set(members)
	w := newWalker(g, o, in, make(map[string]bool, len(members)))
	if err = w.start(members[0]); err != nil {
		return false, err
	}
	if err = w.loop(); err != nil {
		return false, err
	}

	return len(w.order) == len(in), nil
}

// BordersOnly is a neighbor filter that ignores Corridor edges.
func BordersOnly(g *core.Graph) func(curr, neighbor string) bool {
	return func(curr, neighbor string) bool {
		e, err := g.Edge(curr, neighbor)
		return err == nil && e.Kind == core.Border
	}
}
