package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element of items in its own goroutine and
// waits for all of them. The first error encountered is returned.
func ForEach[T any](items []T, action func(T) error) error {
	group := errgroup.Group{}
	for _, item := range items {
		item := item
		group.Go(func() error {
			return action(item)
		})
	}
	return group.Wait()
}

// ForEachLimit is ForEach with at most workers goroutines in flight and
// context cancellation: once ctx is done or an action fails, remaining
// elements are skipped.
func ForEachLimit[T any](ctx context.Context, workers int, items []T, action func(context.Context, T) error) error {
	group, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		item := item
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(ctx, item)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
