// Package workers runs index-addressed scans on a fixed-size goroutine pool.
//
// Every parallel step of the partitioner is a read-only scan: which pool
// precincts border a community, which candidate exchanges keep both sides
// contiguous, which polygon pairs share a boundary. Each scan writes into its
// own slot of a result slice and the caller merges sequentially afterwards,
// so no mutation ever happens while a scan is in flight.
package workers

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run calls fn(ctx, i) for every i in [0, n) on at most limit goroutines.
// Worker w handles the stripe i = w, w+limit, w+2·limit, … .
// A limit below 1 runs the scan on the calling goroutine.
// The first error cancels the shared context and is returned.
func Run(ctx context.Context, limit, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	if limit < 1 {
		limit = 1
	}
	if limit > n {
		limit = n
	}
	if limit == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for w := 0; w < limit; w++ {
		g.Go(func() error {
			for i := w; i < n; i += limit {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(gctx, i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// Filter returns the items for which keep reports true, in input order.
func Filter[T any](ctx context.Context, limit int, items []T, keep func(T) bool) ([]T, error) {
	marks := make([]bool, len(items))
	err := Run(ctx, limit, len(items), func(_ context.Context, i int) error {
		marks[i] = keep(items[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i, ok := range marks {
		if ok {
			out = append(out, items[i])
		}
	}

	return out, nil
}
