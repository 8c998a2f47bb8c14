package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn over items with at most limit goroutines in flight.
// Stops on the first error and cancels the remaining work.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, item := range items {
		g.Go(func() error {
			return fn(ctx, item)
		})
	}

	return g.Wait()
}
