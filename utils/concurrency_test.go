package utils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedSetNoDuplicates(t *testing.T) {
	s := NewKeyedSet[int]()

	if !s.Put("a1b2", 1) {
		t.Error("first Put should return true")
	}
	if s.Put("a1b2", 2) {
		t.Error("second Put of same key should return false")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
	if got := s.Values(); len(got) != 1 || got[0] != 2 {
		t.Errorf("last write should win, got %v", got)
	}
}

func TestKeyedSetKeepsInsertionOrder(t *testing.T) {
	s := NewKeyedSet[string]()
	s.Put("b", "first")
	s.Put("a", "second")
	s.Put("b", "third")

	got := s.Values()
	if len(got) != 2 || got[0] != "third" || got[1] != "second" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestKeyedSetConcurrency(t *testing.T) {
	s := NewKeyedSet[int]()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		i := i
		pool.Submit(context.Background(), func(context.Context) {
			if s.Put("same", i) {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolUnboundedRunsEverythingAtOnce(t *testing.T) {
	pool := NewWorkerPool(0, 0)
	var running, peak int64
	release := make(chan struct{})

	for i := 0; i < 20; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			<-release
			atomic.AddInt64(&running, -1)
		})
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&peak) < 20 {
		select {
		case <-deadline:
			t.Fatalf("peak concurrency %d, want 20", atomic.LoadInt64(&peak))
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(release)
	pool.Wait()
}

func TestWorkerPoolCapsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2, 0)
	var running, peak int64

	for i := 0; i < 10; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()

	if peak > 2 {
		t.Errorf("peak concurrency %d exceeds cap 2", peak)
	}
}

func TestWorkerPoolSkipsCancelledJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int64
	pool := NewWorkerPool(0, 50*time.Millisecond)
	for i := 0; i < 5; i++ {
		pool.Submit(ctx, func(context.Context) { atomic.AddInt64(&ran, 1) })
	}

	select {
	case <-pool.Done():
	case <-time.After(time.Second):
		t.Fatal("pool did not drain after cancellation")
	}
	if ran != 0 {
		t.Errorf("expected no job to run after cancel, got %d", ran)
	}
}
