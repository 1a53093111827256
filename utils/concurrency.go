package utils

import (
	"context"
	"sync"
	"time"
)

// WorkerPool fans work out to goroutines. A maxWorkers of 0 or less means no
// cap: every submitted job gets its own goroutine immediately.
type WorkerPool struct {
	maxWorkers int
	startDelay time.Duration
	semaphore  chan struct{}
	wg         sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool with the given concurrency cap. Each job
// waits startDelay before running, which paces requests without serialising them.
func NewWorkerPool(maxWorkers int, startDelay time.Duration) *WorkerPool {
	wp := &WorkerPool{
		maxWorkers: maxWorkers,
		startDelay: startDelay,
	}
	if maxWorkers > 0 {
		wp.semaphore = make(chan struct{}, maxWorkers)
	}
	return wp
}

// Submit schedules job. Jobs whose context is already done by the time they
// would start are skipped.
func (wp *WorkerPool) Submit(ctx context.Context, job func(ctx context.Context)) {
	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()

		if wp.semaphore != nil {
			select {
			case wp.semaphore <- struct{}{}:
				defer func() { <-wp.semaphore }()
			case <-ctx.Done():
				return
			}
		}

		if wp.startDelay > 0 {
			timer := time.NewTimer(wp.startDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}()
}

// Wait blocks until all submitted jobs have completed or been skipped.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Done returns a channel closed once every submitted job has finished.
func (wp *WorkerPool) Done() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(ch)
	}()
	return ch
}

// KeyedSet is a thread-safe last-write-wins collection keyed by string.
// Iteration order is first-insertion order of each key.
type KeyedSet[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewKeyedSet creates an empty KeyedSet.
func NewKeyedSet[T any]() *KeyedSet[T] {
	return &KeyedSet[T]{items: make(map[string]T)}
}

// Put stores v under key and returns true if the key was new.
func (s *KeyedSet[T]) Put(key string, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.items[key]
	if !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = v
	return !exists
}

// Size returns the number of unique keys tracked.
func (s *KeyedSet[T]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Values returns a snapshot of the stored values.
func (s *KeyedSet[T]) Values() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}
