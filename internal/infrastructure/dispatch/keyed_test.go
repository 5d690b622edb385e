package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedExecutor_OrderPerKey(t *testing.T) {
	e := New(Config{Shards: 4, QueueSize: 64})
	defer e.Close()

	var mu sync.Mutex
	seen := make(map[string][]int)

	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "d", "e"}
	for _, key := range keys {
		for i := 0; i < 50; i++ {
			i := i
			key := key
			done, err := e.Submit(context.Background(), key, func(ctx context.Context) error {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
				return nil
			})
			require.NoError(t, err)

			wg.Add(1)
			go func() {
				defer wg.Done()
				<-done
			}()
		}
	}
	wg.Wait()

	for _, key := range keys {
		order := seen[key]
		require.Len(t, order, 50, "key %s", key)
		for i, v := range order {
			assert.Equal(t, i, v, "key %s executed out of submission order", key)
		}
	}
}

func TestKeyedExecutor_NoConcurrencyPerKey(t *testing.T) {
	e := New(Config{Shards: 8, QueueSize: 64})
	defer e.Close()

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Do(context.Background(), "same-key", func(ctx context.Context) error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxRunning, "tasks for one key must never overlap")
}

func TestKeyedExecutor_CallerTimeoutDoesNotCancelTask(t *testing.T) {
	e := New(Config{Shards: 1, QueueSize: 8})
	defer e.Close()

	completed := make(chan struct{})

	// Occupy the shard so the next submission waits in queue.
	blocker := make(chan struct{})
	_, err := e.Submit(context.Background(), "k", func(ctx context.Context) error {
		<-blocker
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Do(ctx, "k", func(taskCtx context.Context) error {
			close(completed)
			return nil
		})
	}()

	require.ErrorIs(t, <-errCh, context.DeadlineExceeded)

	close(blocker)

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("task was dropped after caller timeout")
	}
}

func TestKeyedExecutor_SubmitAfterClose(t *testing.T) {
	e := New(Config{Shards: 1})
	e.Close()

	_, err := e.Submit(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}
