package bfs

import (
	"context"
	"fmt"

	"github.com/katalvlaran/communities/core"
)

// walker holds the state of one member-restricted breadth-first walk.
// visited may be shared across walks so Components can sweep a member list
// with one allocation.
type walker struct {
	graph   *core.Graph
	ctx     context.Context
	filter  func(curr, neighbor string) bool
	members map[string]struct{}
	queue   []string
	visited map[string]bool
	order   []string
}

func build(g *core.Graph, opts []Option) (Options, error) {
	o := DefaultOptions()
	if g == nil {
		return o, ErrGraphNil
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o, nil
}

func newWalker(g *core.Graph, o Options, members map[string]struct{}, visited map[string]bool) *walker {
	return &walker{
		graph:   g,
		ctx:     o.Ctx,
		filter:  o.FilterNeighbor,
		members: members,
		queue:   make([]string, 0, len(members)),
		visited: visited,
	}
}

// start enqueues id, or reports ErrStartVertexNotFound when g lacks it.
func (w *walker) start(id string) error {
	if !w.graph.HasVertex(id) {
		return fmt.Errorf("%w: %q", ErrStartVertexNotFound, id)
	}
	w.enqueue(id)

	return nil
}

func (w *walker) enqueue(id string) {
	w.visited[id] = true
	w.queue = append(w.queue, id)
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		id := w.queue[0]
		w.queue = w.queue[1:]
		w.order = append(w.order, id)

		neighbors, err := w.graph.NeighborIDs(id)
		if err != nil {
			return fmt.Errorf("%w: failed to get neighbors of %q: %v", ErrNeighbors, id, err)
		}
		for _, nbr := range neighbors {
			if w.visited[nbr] {
				continue
			}
			if _, ok := w.members[nbr]; !ok {
				continue
			}
			if !w.filter(id, nbr) {
				continue
			}
			w.enqueue(nbr)
		}
	}

	return nil
}

func set(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}

	return s
}
