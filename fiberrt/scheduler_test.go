package fiberrt

import (
	"sync"
	"sync/atomic"
	"testing"
)

// S1 — fiber lifecycle on a single-worker, use-caller scheduler: submit
// a fiber that prints A then yield_to_hold's, separately re-schedule
// the same handle before ever driving the loop, then Stop and expect
// A, then B, both observed on the root thread.
func TestSchedulerS1FiberLifecycle(t *testing.T) {
	s := NewScheduler(1, true, "s1")
	s.Start()

	var log []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}

	rootTid := s.ThreadIDs()[0]
	var sawTidA, sawTidB int

	f := NewFiber(func() {
		sawTidA = GetThreadId()
		record("A")
		YieldToHold()
		sawTidB = GetThreadId()
		record("B")
	}, 4096, false)

	s.Schedule(f, AnyThread)
	s.Schedule(f, AnyThread)

	s.Stop()

	mu.Lock()
	got := append([]string{}, log...)
	mu.Unlock()

	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("log = %v, want [A B]", got)
	}
	if sawTidA != rootTid || sawTidB != rootTid {
		t.Fatalf("closure observed tids (%d, %d), want both == root tid %d", sawTidA, sawTidB, rootTid)
	}
	if !s.Stopping() {
		t.Fatal("Stopping() is false after Stop()")
	}
}

// S2 — affinity: five tasks pinned to worker #2's tid must all run
// there, never on worker #1 or #3.
func TestSchedulerS2Affinity(t *testing.T) {
	s := NewScheduler(3, false, "s2")
	s.Start()
	tids := s.ThreadIDs()
	target := tids[1]

	var wg sync.WaitGroup
	var mu sync.Mutex
	var observed []int
	wg.Add(5)
	for i := 0; i < 5; i++ {
		s.Schedule(func() {
			defer wg.Done()
			mu.Lock()
			observed = append(observed, GetThreadId())
			mu.Unlock()
		}, target)
	}
	wg.Wait()
	s.Stop()

	if len(observed) != 5 {
		t.Fatalf("observed %d runs, want 5", len(observed))
	}
	for _, tid := range observed {
		if tid != target {
			t.Fatalf("task ran on tid %d, want worker #2's tid %d", tid, target)
		}
	}
}

// S3 — recursive scheduling: a fiber decrements a counter from 5 to 0,
// re-scheduling itself onto its own tid each tick, for six executions
// total.
func TestSchedulerS3RecursiveScheduling(t *testing.T) {
	s := NewScheduler(1, false, "s3")
	s.Start()

	var execCount int32
	var lastCounter int32 = -1
	done := make(chan struct{})

	var f *Fiber
	f = NewFiber(func() {
		for i := 0; i < 6; i++ {
			n := atomic.AddInt32(&execCount, 1)
			atomic.StoreInt32(&lastCounter, 5-int32(i))
			_ = n
			if i < 5 {
				s.Schedule(f, GetThreadId())
				YieldToHold()
			}
		}
		close(done)
	}, 4096, false)

	s.Schedule(f, AnyThread)
	<-done
	s.Stop()

	if got := atomic.LoadInt32(&execCount); got != 6 {
		t.Fatalf("execCount = %d, want 6", got)
	}
	if got := atomic.LoadInt32(&lastCounter); got != 0 {
		t.Fatalf("final counter = %d, want 0", got)
	}
}

// S4 — a closure that panics must not take the worker down: subsequent
// tasks still run and Stop still terminates.
func TestSchedulerS4ErrorInFiber(t *testing.T) {
	s := NewScheduler(1, false, "s4")
	s.Start()

	var sawX bool
	s.Schedule(func() {
		sawX = true
		panic("X")
	}, AnyThread)

	okDone := make(chan struct{})
	s.Schedule(func() {
		close(okDone)
	}, AnyThread)
	<-okDone

	s.Stop()

	if !sawX {
		t.Fatal("panicking closure never ran")
	}
	if !s.Stopping() {
		t.Fatal("Stopping() is false after Stop() following a fiber exception")
	}
}

// Property 6: a fiber that repeatedly yield_to_ready's is re-scheduled
// to the tail, not starved or run unboundedly within one pass.
func TestSchedulerYieldToReadyIsBoundedPerFiber(t *testing.T) {
	s := NewScheduler(1, false, "yield-ready")
	s.Start()

	const fiberCount = 3
	var wg sync.WaitGroup
	counts := make([]int32, fiberCount)
	wg.Add(fiberCount)

	for i := 0; i < fiberCount; i++ {
		idx := i
		s.Schedule(func() {
			defer wg.Done()
			atomic.AddInt32(&counts[idx], 1)
			YieldToReady()
			atomic.AddInt32(&counts[idx], 1)
		}, AnyThread)
	}
	wg.Wait()
	s.Stop()

	for i, c := range counts {
		if c != 2 {
			t.Fatalf("fiber %d ran %d times, want exactly 2 (once before, once after yield_to_ready)", i, c)
		}
	}
}

// Property 1: active/idle never go negative and never exceed the
// worker pool size, even right after heavy scheduling.
func TestSchedulerActiveIdleInvariant(t *testing.T) {
	s := NewScheduler(2, false, "invariant")
	s.Start()

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		s.Schedule(func() { wg.Done() }, AnyThread)
	}
	wg.Wait()
	s.Stop()

	if s.ActiveCount() < 0 {
		t.Fatalf("ActiveCount() = %d, must be >= 0", s.ActiveCount())
	}
	if s.IdleCount() < 0 {
		t.Fatalf("IdleCount() = %d, must be >= 0", s.IdleCount())
	}
	if got, max := s.ActiveCount()+s.IdleCount(), int32(s.WorkerCount()); got > max {
		t.Fatalf("active+idle = %d, want <= worker count %d", got, max)
	}
}

func TestSchedulerStopJoinsAllThreads(t *testing.T) {
	s := NewScheduler(4, false, "join")
	s.Start()
	s.Stop()

	if !s.Stopping() {
		t.Fatal("Stopping() false after Stop()")
	}
}

// Destruction (spec.md §4.G) requires clearing the ambient current-
// scheduler pointer on the constructing thread once it is no longer
// current. For a use-caller scheduler, that thread is the one running
// the test itself.
func TestSchedulerStopClearsCurrentScheduler(t *testing.T) {
	s := NewScheduler(1, true, "destruction")

	if got := CurrentScheduler(); got != s {
		t.Fatalf("CurrentScheduler() after NewScheduler(useCaller=true) = %v, want %v", got, s)
	}

	s.Start()
	s.Stop()

	if got := CurrentScheduler(); got != nil {
		t.Fatalf("CurrentScheduler() after Stop() = %v, want nil", got)
	}
}

// A second use-caller scheduler must be constructible on the same
// goroutine right after the first is stopped: NewScheduler asserts
// CurrentScheduler() == nil, so this only passes if Stop() actually
// cleared the first scheduler's ambient pointer rather than merely
// leaving it stale.
func TestSchedulerStopAllowsNewUseCallerSchedulerSameThread(t *testing.T) {
	first := NewScheduler(1, true, "destruction-a")
	first.Start()
	first.Stop()

	second := NewScheduler(1, true, "destruction-b")
	second.Start()
	defer second.Stop()

	if got := CurrentScheduler(); got != second {
		t.Fatalf("CurrentScheduler() = %v, want the newly constructed scheduler %v", got, second)
	}
}
