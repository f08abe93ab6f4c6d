package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrderAndErrors(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	out := Map(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, errors.New("boom")
		}
		return n * n, nil
	})

	require.Len(t, out, 5)
	for i, o := range out {
		assert.Equal(t, i, o.Index)
	}
	assert.Equal(t, 1, out[0].Value)
	assert.Equal(t, 16, out[3].Value)
	assert.EqualError(t, out[2].Err, "boom")
	assert.NoError(t, out[4].Err)
}

func TestMap_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	items := make([]int, 20)

	Map(context.Background(), items, 3, func(_ context.Context, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestMap_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	out := Map(ctx, []string{"a", "b"}, 1, func(_ context.Context, s string) (string, error) {
		calls.Add(1)
		return s, nil
	})

	require.Len(t, out, 2)
	assert.Zero(t, calls.Load())
	for _, o := range out {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestMap_Empty(t *testing.T) {
	t.Parallel()

	out := Map(context.Background(), []int(nil), 4, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	assert.Empty(t, out)
}
