// Package dispatch provides a worker pool with per-key FIFO ordering, used
// to keep blocking storage work off latency-sensitive callers while
// serializing all mutations for one player.
package dispatch

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
)

// ErrClosed is returned for submissions after Close.
var ErrClosed = errors.New("dispatch: executor closed")

// KeyedExecutor hashes each key onto a fixed shard. Every shard is a single
// goroutine draining a FIFO queue, so tasks sharing a key run in submission
// order and never concurrently, while tasks on different shards proceed in
// parallel.
type KeyedExecutor struct {
	shards  []chan job
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type job struct {
	task func(ctx context.Context) error
	done chan error
}

// Config for KeyedExecutor.
type Config struct {
	// Shards is the number of worker goroutines. More shards means more
	// cross-key parallelism.
	Shards int
	// QueueSize bounds each shard's pending queue. Submissions block once
	// the queue is full.
	QueueSize int
}

// New creates a started KeyedExecutor.
func New(cfg Config) *KeyedExecutor {
	if cfg.Shards <= 0 {
		cfg.Shards = 16
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &KeyedExecutor{
		shards:  make([]chan job, cfg.Shards),
		baseCtx: ctx,
		cancel:  cancel,
	}

	for i := range e.shards {
		e.shards[i] = make(chan job, cfg.QueueSize)
		e.wg.Add(1)
		go e.run(e.shards[i])
	}

	return e
}

func (e *KeyedExecutor) run(queue chan job) {
	defer e.wg.Done()
	for j := range queue {
		// Tasks run on the executor's own context: once accepted, store
		// work is not cancelled by an impatient caller.
		j.done <- j.task(e.baseCtx)
	}
}

// Submit enqueues a task for the key and returns a channel that receives
// the task's result exactly once.
func (e *KeyedExecutor) Submit(ctx context.Context, key string, task func(ctx context.Context) error) (<-chan error, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, ErrClosed
	}

	j := job{task: task, done: make(chan error, 1)}

	select {
	case e.shards[e.shard(key)] <- j:
		return j.done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do submits the task and waits for it. When the caller's context expires
// first, Do returns the context error but the task still runs to
// completion on its shard; its durable effects are not rolled back.
func (e *KeyedExecutor) Do(ctx context.Context, key string, task func(ctx context.Context) error) error {
	done, err := e.Submit(ctx, key, task)
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for queued tasks to finish.
func (e *KeyedExecutor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	for _, queue := range e.shards {
		close(queue)
	}
	e.wg.Wait()
	e.cancel()
}

func (e *KeyedExecutor) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(e.shards)))
}
