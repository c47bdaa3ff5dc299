package rediscounter

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestCounter_Allocate(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	n, err := c.Allocate(ctx, "product-tracking-id")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = c.Allocate(ctx, "product-tracking-id")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// Independent keys do not share a sequence.
	n, err = c.Allocate(ctx, "other-tracking-id")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestCounter_Allocate_BackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	mr.Close()

	_, err := c.Allocate(context.Background(), "product-tracking-id")
	require.Error(t, err)
}

func TestCounter_Allocate_CorruptedKey(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("product-tracking-id", "not-a-number"))

	c := New(mr.Addr())
	_, err := c.Allocate(context.Background(), "product-tracking-id")
	require.Error(t, err)
}

func TestCounter_Allocate_ConcurrentCallersGetDistinctValues(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	const callers = 50
	var wg sync.WaitGroup
	values := make(chan int64, callers)
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := c.Allocate(context.Background(), "product-tracking-id")
			values <- n
			errs <- err
		}()
	}
	wg.Wait()
	close(values)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[int64]struct{}{}
	for n := range values {
		_, dup := seen[n]
		require.False(t, dup, "value %d allocated twice", n)
		seen[n] = struct{}{}
	}
	require.Len(t, seen, callers)
}
