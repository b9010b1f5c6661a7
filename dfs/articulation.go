package dfs

import (
	"fmt"

	"github.com/katalvlaran/communities/core"
)

type frame struct {
	id       string
	parent   string
	nbrs     []string
	next     int
	children int
}

// ArticulationPoints returns the cut vertices of the subgraph induced by
// members, as a set. A nil or empty member list yields an empty set.
func ArticulationPoints(g *core.Graph, members []string, opts ...Option) (map[string]bool, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	in := make(map[string]struct{}, len(members))
	for _, id := range members {
		if !g.HasVertex(id) {
			return nil, fmt.Errorf("%w: %q", ErrStartVertexNotFound, id)
		}
		in[id] = struct{}{}
	}

	var (
		disc  = make(map[string]int, len(members))
		low   = make(map[string]int, len(members))
		cut   = make(map[string]bool)
		timer int
		stack []*frame
	)
	push := func(id, parent string) error {
		nbrs, err := g.NeighborIDs(id)
		if err != nil {
			return err
		}
		timer++
		disc[id], low[id] = timer, timer
		stack = append(stack, &frame{id: id, parent: parent, nbrs: nbrs})
		return nil
	}

	for _, root := range members {
		if _, seen := disc[root]; seen {
			continue
		}
		if err := push(root, ""); err != nil {
			return nil, err
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			if f.next < len(f.nbrs) {
				nb := f.nbrs[f.next]
				f.next++
				if _, ok := in[nb]; !ok || nb == f.parent {
					continue
				}
				if o.FilterNeighbor != nil && !o.FilterNeighbor(f.id, nb) {
					continue
				}
				if d, seen := disc[nb]; seen {
					low[f.id] = min(low[f.id], d)
					continue
				}
				f.children++
				if err := push(nb, f.id); err != nil {
					return nil, err
				}
				continue
			}

			if err := o.Ctx.Err(); err != nil {
				return nil, err
			}
			stack = stack[:len(stack)-1]
			if f.parent == "" {
				if f.children >= 2 {
					cut[f.id] = true
				}
				continue
			}
			p := stack[len(stack)-1]
			low[p.id] = min(low[p.id], low[f.id])
			if p.parent != "" && low[f.id] >= disc[p.id] {
				cut[p.id] = true
			}
		}
	}

	return cut, nil
}
