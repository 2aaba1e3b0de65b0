package fiberrt

import (
	"runtime"
	"sync"
)

// Thread wraps an OS thread spawned explicitly for a scheduler's worker
// pool, pinned for its whole life via runtime.LockOSThread so its OS
// tid stays stable for the affinity contract (spec.md §4.D). The
// constructor blocks until the new thread has recorded its own tid and
// copied its callback out of the handle, via the counting-semaphore
// handshake spec.md §4.D describes.
type Thread struct {
	name string
	tid  int
	sem  *Semaphore
	done chan struct{}
	once sync.Once
}

// NewThread spawns a new OS thread running fn under the given name and
// blocks until it has started.
func NewThread(fn func(), name string) *Thread {
	assertf(fn != nil, "thread %q: NewThread requires a non-nil entry", name)
	t := &Thread{
		name: name,
		sem:  NewSemaphore(0),
		done: make(chan struct{}),
	}
	go t.bootstrap(fn)
	t.sem.Wait()
	return t
}

func (t *Thread) bootstrap(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	t.tid = realOSThreadID()
	markWorkerThread(t.tid)
	currentAmbient().currentFiber = newBootstrapFiber()

	cb := fn
	t.sem.Notify()

	cb()
}

// ID returns the thread's OS-level tid, valid once NewThread returns.
func (t *Thread) ID() int { return t.tid }

// Name returns the thread's human-readable name.
func (t *Thread) Name() string { return t.name }

// Join blocks until the thread's entry function returns.
func (t *Thread) Join() {
	t.once.Do(func() {
		<-t.done
	})
}
