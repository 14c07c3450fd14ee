package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleGet_InitRunsOnce(t *testing.T) {
	var calls atomic.Int32
	h := New(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := h.Get(context.Background())
			require.NoError(t, err)
			require.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), calls.Load())
	require.True(t, h.Ready())
}

func TestHandleGet_FailureIsSticky(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	h := New(func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	})

	_, err := h.Get(context.Background())
	require.ErrorIs(t, err, boom)
	_, err = h.Get(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, int32(1), calls.Load())
	require.False(t, h.Ready())
}

func TestHandleGet_WaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	h := New(func(ctx context.Context) (int, error) {
		close(entered)
		<-release
		return 7, nil
	})

	go func() {
		_, _ = h.Get(context.Background())
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	v, err := h.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}
