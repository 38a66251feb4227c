package utils

import (
	"errors"
	"sync"
)

// WorkerPool runs jobs on a bounded number of goroutines and collects
// their errors.
type WorkerPool struct {
	semaphore chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	errs      []error
}

// NewWorkerPool creates a WorkerPool running at most maxWorkers jobs at once.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		semaphore: make(chan struct{}, maxWorkers),
	}
}

// Submit enqueues a job for execution in the pool. It blocks while every
// worker slot is busy.
func (wp *WorkerPool) Submit(job func() error) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		if err := job(); err != nil {
			wp.mu.Lock()
			wp.errs = append(wp.errs, err)
			wp.mu.Unlock()
		}
	}()
}

// Wait blocks until all submitted jobs have completed and returns their
// errors joined together.
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return errors.Join(wp.errs...)
}

// OrderedSet is a thread-safe set of strings that remembers insertion order.
type OrderedSet struct {
	mu     sync.RWMutex
	seen   map[string]struct{}
	values []string
}

// NewOrderedSet creates an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add returns true if the value was newly added, false if already present.
func (s *OrderedSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Size returns the number of unique values tracked.
func (s *OrderedSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Values returns a copy of the values in insertion order.
func (s *OrderedSet) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
