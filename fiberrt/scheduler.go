package fiberrt

import (
	"fmt"
	"sync/atomic"
)

// AnyThread means a queue entry has no affinity: any worker may run it.
const AnyThread = -1

// Hooks lets a scheduler's tickle and idle behavior be overridden. The
// Stopping predicate is not part of it and cannot be overridden. The default
// implementation logs on tickle and parks in YieldToHold until Stopping
// returns true.
type Hooks interface {
	Tickle(s *Scheduler)
	Idle(s *Scheduler)
}

type defaultHooks struct{}

func (defaultHooks) Tickle(s *Scheduler) {
	diagnostics.Debugf("scheduler %q: tickle", s.name)
}

func (defaultHooks) Idle(s *Scheduler) {
	for !s.Stopping() {
		YieldToHold()
	}
}

type queueEntry struct {
	fiber    *Fiber
	callback func()
	thread   int
}

func (e queueEntry) empty() bool { return e.fiber == nil && e.callback == nil }

// Stats tracks observability counters not named by any invariant,
// ported in idiom from thanhhungg97-jvm/runtime.SchedulerStats.
type Stats struct {
	FibersCreated   int64
	FibersCompleted int64
	ContextSwitches int64
}

// Scheduler is the multi-threaded dispatch loop spec.md §4.G describes:
// a pool of worker OS threads pulling {Fiber|Callback, affinity}
// entries off a shared ready queue, skipping (and tickling) entries
// affinitized elsewhere rather than ever poaching them.
type Scheduler struct {
	name string

	mu      Mutex
	entries []queueEntry

	threads     []*Thread
	threadIDs   []int
	threadCount int
	useCaller   bool

	active int32
	idle   int32

	stopping bool
	autoStop bool

	rootThread int
	rootFiber  *Fiber

	hooks Hooks

	created   int64
	completed int64
	switches  int64
}

// NewScheduler constructs a scheduler with threadCount worker threads.
// If useCaller is true, the constructing goroutine is itself bound as
// one of those workers (spec.md §4.G): the OS tid it is running on at
// construction is recorded as the root thread id (the goroutine is not
// pinned with runtime.LockOSThread) and a caller-entry root fiber
// wrapping run() is created, so Stop must later be called from this
// same goroutine to drive that root fiber.
func NewScheduler(threadCount int, useCaller bool, name string) *Scheduler {
	assertf(threadCount > 0, "scheduler %q: threadCount must be > 0", name)
	if name == "" {
		name = "scheduler"
	}

	s := &Scheduler{
		name:        name,
		stopping:    true,
		rootThread:  -1,
		threadCount: threadCount,
		useCaller:   useCaller,
		hooks:       defaultHooks{},
	}

	if useCaller {
		assertf(CurrentScheduler() == nil, "scheduler %q: a scheduler is already current on this thread", name)
		rootTid := realOSThreadID()
		markWorkerThread(rootTid)
		setCurrentScheduler(s)

		s.rootFiber = newRootFiber(func() { s.run() }, rootTid, s)
		s.rootThread = rootTid
		s.threadIDs = append(s.threadIDs, rootTid)
		s.threadCount--
	}

	return s
}

// SetHooks overrides the tickle/idle behavior. Must be called before
// Start.
func (s *Scheduler) SetHooks(h Hooks) {
	if h == nil {
		h = defaultHooks{}
	}
	s.hooks = h
}

// Name returns the scheduler's name, used to label spawned worker
// threads.
func (s *Scheduler) Name() string { return s.name }

// Start spawns the configured worker threads. A no-op if already
// started and not yet stopped.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if !s.stopping {
		s.mu.Unlock()
		return
	}
	assertf(len(s.threads) == 0, "scheduler %q: Start called more than once", s.name)
	s.stopping = false
	s.mu.Unlock()

	threads := make([]*Thread, s.threadCount)
	for i := 0; i < s.threadCount; i++ {
		name := fmt.Sprintf("%s_%d", s.name, i)
		threads[i] = NewThread(func() { s.run() }, name)
	}

	s.mu.Lock()
	s.threads = threads
	for _, t := range threads {
		s.threadIDs = append(s.threadIDs, t.ID())
	}
	s.mu.Unlock()
}

// Schedule enqueues work (a *Fiber or a func()), optionally affinitized
// to the worker whose GetThreadId() equals thread (AnyThread for none).
// Tickles once if the queue was empty.
func (s *Scheduler) Schedule(work interface{}, thread int) {
	s.mu.Lock()
	needTickle := s.pushLocked(entryFor(work, thread))
	s.mu.Unlock()
	if needTickle {
		s.hooks.Tickle(s)
	}
}

// ScheduleBatch enqueues many items under a single lock acquisition,
// tickling at most once.
func (s *Scheduler) ScheduleBatch(items []interface{}, thread int) {
	needTickle := false
	s.mu.Lock()
	for _, w := range items {
		if s.pushLocked(entryFor(w, thread)) {
			needTickle = true
		}
	}
	s.mu.Unlock()
	if needTickle {
		s.hooks.Tickle(s)
	}
}

func (s *Scheduler) pushLocked(e queueEntry) (wasEmpty bool) {
	wasEmpty = len(s.entries) == 0
	s.entries = append(s.entries, e)
	return wasEmpty
}

func entryFor(work interface{}, thread int) queueEntry {
	e := queueEntry{thread: thread}
	switch w := work.(type) {
	case *Fiber:
		e.fiber = w
	case func():
		e.callback = w
	default:
		assertf(false, "scheduler: Schedule requires a *Fiber or func(), got %T", work)
	}
	return e
}

// ActiveCount returns the number of entries currently dispatched but
// not yet back on the ready queue.
func (s *Scheduler) ActiveCount() int32 { return atomic.LoadInt32(&s.active) }

// IdleCount returns the number of workers currently parked in the idle
// fiber.
func (s *Scheduler) IdleCount() int32 { return atomic.LoadInt32(&s.idle) }

// WorkerCount returns the total number of worker slots, including the
// root thread for a use-caller scheduler.
func (s *Scheduler) WorkerCount() int {
	n := s.threadCount
	if s.useCaller {
		n++
	}
	return n
}

// ThreadIDs returns the tids of every worker thread, including the root
// thread for a use-caller scheduler.
func (s *Scheduler) ThreadIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.threadIDs))
	copy(out, s.threadIDs)
	return out
}

// Stats returns a snapshot of the scheduler's observability counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		FibersCreated:   atomic.LoadInt64(&s.created),
		FibersCompleted: atomic.LoadInt64(&s.completed),
		ContextSwitches: atomic.LoadInt64(&s.switches),
	}
}

// Stopping reports whether the scheduler has been told to stop, has no
// pending work, and has nothing in flight — the predicate spec.md §4.G
// gives verbatim: autoStop && stopping && queue.empty() && active==0.
func (s *Scheduler) Stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoStop && s.stopping && len(s.entries) == 0 && atomic.LoadInt32(&s.active) == 0
}

// Stop asks the scheduler to drain and shut down, then blocks until
// every worker thread (and, for a use-caller scheduler, the root
// fiber's dispatch loop) has exited. For a use-caller scheduler, Stop
// must be called from the same goroutine that constructed it.
func (s *Scheduler) Stop() {
	// Destruction (spec.md §4.G) requires clearing the ambient
	// current-scheduler pointer on the calling thread if s is still
	// current there; for a use-caller scheduler that is the thread
	// that constructed s, which is also the only thread Stop may be
	// called from (asserted below). Worker threads (and, for a
	// use-caller scheduler, the root fiber's own backing goroutine)
	// clear their own ambient pointer as run() returns.
	defer clearCurrentScheduler(s)

	s.mu.Lock()
	s.autoStop = true
	s.mu.Unlock()

	if s.rootFiber != nil && s.threadCount == 0 {
		st := s.rootFiber.State()
		if st == StateTerm || st == StateInit {
			s.mu.Lock()
			s.stopping = true
			s.mu.Unlock()
			if s.Stopping() {
				return
			}
		}
	}

	if s.rootThread != -1 {
		assertf(GetThreadId() == s.rootThread, "scheduler %q: Stop must be called on the thread that constructed it", s.name)
	} else {
		assertf(CurrentScheduler() != s, "scheduler %q: Stop must not be called from inside one of its own workers", s.name)
	}

	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	for i := 0; i < s.threadCount; i++ {
		s.hooks.Tickle(s)
	}
	if s.rootFiber != nil {
		s.hooks.Tickle(s)
	}

	if s.rootFiber != nil && !s.Stopping() {
		s.rootFiber.Call()
	}

	s.mu.Lock()
	threads := s.threads
	s.threads = nil
	s.mu.Unlock()

	for _, t := range threads {
		t.Join()
	}
}

// run is the dispatch loop every worker thread (and the root fiber, for
// a use-caller scheduler) executes: scan the ready queue for eligible
// work, skipping entries affinitized to a different worker, and fall
// back to the idle fiber when nothing is eligible.
func (s *Scheduler) run() {
	setCurrentScheduler(s)
	_ = CurrentFiber()

	idleFiber := NewFiber(func() { s.hooks.Idle(s) }, 0, false)
	atomic.AddInt64(&s.created, 1)
	var callbackFiber *Fiber

	for {
		entry, tickleMe, wasActive := s.dequeue()

		if tickleMe {
			s.hooks.Tickle(s)
		}

		switch {
		case entry.fiber != nil && entry.fiber.State() != StateTerm && entry.fiber.State() != StateExcept:
			entry.fiber.SwapIn()
			atomic.AddInt64(&s.switches, 1)
			atomic.AddInt32(&s.active, -1)
			switch entry.fiber.State() {
			case StateReady:
				s.Schedule(entry.fiber, AnyThread)
			case StateTerm, StateExcept:
				atomic.AddInt64(&s.completed, 1)
			default:
				entry.fiber.setState(StateHold)
			}

		case entry.fiber != nil:
			// Already TERM/EXCEPT: dropped, not run again (see the
			// dispatch-loop resolution in DESIGN.md §6).
			atomic.AddInt32(&s.active, -1)

		case entry.callback != nil:
			if callbackFiber != nil {
				callbackFiber.Reset(entry.callback)
			} else {
				callbackFiber = NewFiber(entry.callback, 0, false)
				atomic.AddInt64(&s.created, 1)
			}
			callbackFiber.SwapIn()
			atomic.AddInt64(&s.switches, 1)
			atomic.AddInt32(&s.active, -1)
			switch callbackFiber.State() {
			case StateReady:
				s.Schedule(callbackFiber, AnyThread)
				callbackFiber = nil
			case StateTerm, StateExcept:
				atomic.AddInt64(&s.completed, 1)
				callbackFiber.Reset(func() {})
			default:
				callbackFiber.setState(StateHold)
				callbackFiber = nil
			}

		default:
			if wasActive {
				atomic.AddInt32(&s.active, -1)
				continue
			}
			if idleFiber.State() == StateTerm {
				clearCurrentScheduler(s)
				return
			}
			atomic.AddInt32(&s.idle, 1)
			idleFiber.SwapIn()
			atomic.AddInt32(&s.idle, -1)
			if idleFiber.State() != StateTerm && idleFiber.State() != StateExcept {
				idleFiber.setState(StateHold)
			}
		}
	}
}

func (s *Scheduler) dequeue() (entry queueEntry, tickleMe, wasActive bool) {
	entry.thread = AnyThread
	myTid := GetThreadId()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		e := s.entries[i]
		if e.empty() {
			continue
		}
		if e.thread != AnyThread && e.thread != myTid {
			tickleMe = true
			continue
		}
		if e.fiber != nil && e.fiber.State() == StateExec {
			continue
		}
		entry = e
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		atomic.AddInt32(&s.active, 1)
		wasActive = true
		break
	}
	return entry, tickleMe, wasActive
}
