// Package workpool runs independent per-item work with bounded concurrency.
package workpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of processing one item. Index is the position of the
// item in the input slice.
type Outcome[R any] struct {
	Index int
	Value R
	Err   error
}

// Map applies fn to every item with at most width calls in flight and
// returns one Outcome per item, ordered by Index. A failing item does not
// cancel the others; its error is recorded on its Outcome. Items not yet
// started when ctx is cancelled report ctx.Err().
func Map[T, R any](ctx context.Context, items []T, width int, fn func(ctx context.Context, item T) (R, error)) []Outcome[R] {
	if width <= 0 {
		width = 1
	}

	out := make([]Outcome[R], len(items))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(width)

	for i, item := range items {
		g.Go(func() error {
			var (
				val R
				err error
			)
			if cerr := gctx.Err(); cerr != nil {
				err = cerr
			} else {
				val, err = fn(gctx, item)
			}

			mu.Lock()
			out[i] = Outcome[R]{Index: i, Value: val, Err: err}
			mu.Unlock()
			return nil // don't abort siblings on individual failure
		})
	}

	_ = g.Wait()
	return out
}
