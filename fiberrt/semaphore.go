package fiberrt

import "sync"

// Semaphore is a counting semaphore (spec.md §4.E), used for the
// worker-thread start handshake and any other hand-off that must block
// a whole OS thread rather than just a fiber.
type Semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count uint32
}

// NewSemaphore constructs a semaphore with the given initial count.
func NewSemaphore(initial uint32) *Semaphore {
	s := &Semaphore{count: initial}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Wait blocks until the count is positive, then decrements it.
func (s *Semaphore) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
}

// Notify increments the count and wakes one waiter.
func (s *Semaphore) Notify() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}
