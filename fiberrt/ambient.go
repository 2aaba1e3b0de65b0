package fiberrt

import "sync"

// Go gives user code no thread-local storage, so the three per-OS-thread
// slots spec.md §3 describes (current_fiber, thread_bootstrap_fiber,
// current_scheduler) are emulated here, keyed by a stable-for-this-
// goroutine id rather than a raw kernel tid: a fiber's backing goroutine
// is the only piece of code that ever runs its closure, so keying on the
// goroutine that is doing the asking gives exactly the same "only visible
// to the thread that set it" isolation the spec asks for, without a real
// TLS primitive.
type ambient struct {
	currentFiber   *Fiber
	bootstrapFiber *Fiber
	isWorker       bool
	workerTid      int
	workerSched    *Scheduler
}

var (
	ambientMu sync.Mutex
	ambientByGID = map[uint64]*ambient{}
)

func currentAmbient() *ambient {
	gid := goroutineID()

	ambientMu.Lock()
	defer ambientMu.Unlock()
	a, ok := ambientByGID[gid]
	if !ok {
		a = &ambient{}
		ambientByGID[gid] = a
	}
	return a
}

// markWorkerThread records that the calling goroutine is a genuine,
// LockOSThread-pinned worker with the given real OS thread id.
func markWorkerThread(tid int) {
	a := currentAmbient()
	a.isWorker = true
	a.workerTid = tid
}

func setCurrentScheduler(s *Scheduler) {
	currentAmbient().workerSched = s
}

// clearCurrentScheduler nils the calling goroutine's current-scheduler
// pointer, but only if it is still s — the Destruction operation
// (spec.md §4.G: "if this is the current scheduler, clear the ambient
// pointer") must not clobber some other scheduler that has since become
// current on this same thread.
func clearCurrentScheduler(s *Scheduler) {
	a := currentAmbient()
	if a.workerSched == s {
		a.workerSched = nil
	}
}

// CurrentScheduler returns the scheduler the calling code is running
// under, or nil if none. Code running inside a fiber's closure inherits
// the scheduler that last resumed it (see Fiber.SwapIn); code running on
// a worker's own dispatch loop reads it directly.
func CurrentScheduler() *Scheduler {
	a := currentAmbient()
	if a.isWorker {
		return a.workerSched
	}
	if a.currentFiber != nil {
		return a.currentFiber.currentScheduler
	}
	return nil
}

// CurrentFiber returns the fiber currently EXEC on the calling goroutine,
// lazily installing the per-thread bootstrap fiber (id 0) the first time
// it is asked on a goroutine that has never run one, matching spec.md
// §4.C's GetThis().
func CurrentFiber() *Fiber {
	a := currentAmbient()
	if a.currentFiber != nil {
		return a.currentFiber
	}
	f := newBootstrapFiber()
	a.currentFiber = f
	a.bootstrapFiber = f
	return f
}

// MainFiberOnThisThread is the fiber a swapOut/back returns control to:
// the bootstrap fiber for an ordinary worker, or the root fiber for the
// thread that constructed a use-caller scheduler.
func MainFiberOnThisThread() *Fiber {
	a := currentAmbient()
	if s := a.workerSched; a.isWorker && s != nil && s.rootFiber != nil && a.workerTid == s.rootThread {
		return s.rootFiber
	}
	return CurrentFiber()
}

// GetThreadId reports the OS-level affinity identity observable from the
// calling code: a worker's own real tid, or — from inside a fiber's
// closure — the tid of whichever worker most recently resumed it. See
// DESIGN.md for why this is not always a literal syscall result.
func GetThreadId() int {
	a := currentAmbient()
	if a.isWorker {
		return a.workerTid
	}
	if a.currentFiber != nil {
		return int(loadWorkerID(a.currentFiber))
	}
	return realOSThreadID()
}
