package fiberrt

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/huangjl/fibersched/config"
)

// State is a fiber's position in the lifecycle spec.md §4.C names:
// INIT -> EXEC -> (READY|HOLD|TERM|EXCEPT), with reset only legal from
// TERM, INIT, or EXCEPT.
type State int32

const (
	StateInit State = iota
	StateReady
	StateExec
	StateHold
	StateTerm
	StateExcept
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateReady:
		return "READY"
	case StateExec:
		return "EXEC"
	case StateHold:
		return "HOLD"
	case StateTerm:
		return "TERM"
	case StateExcept:
		return "EXCEPT"
	default:
		return "UNKNOWN"
	}
}

var (
	fiberIDCounter uint64
	liveFiberCount int64
)

// TotalFibers returns the number of fibers currently live (constructed
// but not yet released), matching the original's s_fiber_count.
func TotalFibers() int64 { return atomic.LoadInt64(&liveFiberCount) }

const defaultFiberStackSize uint32 = 128 * 1024

// fiberStackSize is nil if "fiber.stack_size" was already registered
// elsewhere with a type other than uint32 — a type mismatch is not
// fatal for the core (spec.md §7), so every read of this var must fall
// back to defaultFiberStackSize rather than dereference a nil handle.
var fiberStackSize = config.Lookup("fiber.stack_size", defaultFiberStackSize, "fiber stack size in bytes")

// Fiber is a user-space stackful coroutine: one cooperative unit of
// execution with its own stack accounting, resumed and suspended by
// symmetric context swaps rather than being scheduled preemptively.
//
// The Go port backs a fiber's current "life" (the span from launch or
// reset through its next TERM/EXCEPT) with exactly one goroutine parked
// on a channel rendezvous; see SPEC_FULL.md §0 for why, and DESIGN.md
// for the affinity-propagation consequences.
type Fiber struct {
	id          uint64
	isBootstrap bool
	isRootFiber bool

	stack     []byte
	stackSize uint32
	useCaller bool

	mu    sync.Mutex
	state State
	entry func()

	resume  chan struct{}
	yielded chan struct{}

	// currentWorkerID/currentScheduler are propagated at every SwapIn
	// rather than read via a real per-OS-thread slot, because a
	// fiber's backing goroutine is not the same goroutine as whichever
	// worker resumes it (see ambient.go). Plain fields are safe here:
	// the channel send in SwapIn happens-before the corresponding
	// receive in the fiber's own goroutine, which is the only other
	// reader/writer while the fiber is not EXEC.
	currentWorkerID int32
	currentScheduler *Scheduler

	// rootWorkerTid/rootScheduler seed the above for a use-caller
	// scheduler's root fiber, whose backing goroutine never goes
	// through an ordinary SwapIn before first running.
	rootWorkerTid int
	rootScheduler *Scheduler

	released int32
}

func loadWorkerID(f *Fiber) int32 {
	return atomic.LoadInt32(&f.currentWorkerID)
}

func newBootstrapFiber() *Fiber {
	atomic.AddInt64(&liveFiberCount, 1)
	return &Fiber{id: 0, isBootstrap: true, state: StateExec}
}

// NewFiber allocates a fiber ready to run entry: a worker-entry fiber,
// or a caller-entry fiber when useCaller is true. A zero
// stackSize falls back to the "fiber.stack_size" config var (spec.md
// §6).
func NewFiber(entry func(), stackSize uint32, useCaller bool) *Fiber {
	assertf(entry != nil, "fiber: NewFiber requires a non-nil entry")
	if stackSize == 0 {
		stackSize = defaultFiberStackSize
		if fiberStackSize != nil {
			stackSize = fiberStackSize.Value()
		}
	}
	f := &Fiber{
		id:        atomic.AddUint64(&fiberIDCounter, 1),
		stackSize: stackSize,
		stack:     defaultStackAllocator.Alloc(stackSize),
		useCaller: useCaller,
		state:     StateInit,
		entry:     entry,
		resume:    make(chan struct{}),
		yielded:   make(chan struct{}),
	}
	atomic.AddInt64(&liveFiberCount, 1)
	runtime.SetFinalizer(f, (*Fiber).finalize)
	f.launch()
	return f
}

// newRootFiber builds the caller-entry fiber that wraps a use-caller
// scheduler's dispatch loop (spec.md §4.G: "Bind the calling thread as
// a worker").
func newRootFiber(entry func(), rootTid int, sched *Scheduler) *Fiber {
	f := NewFiber(entry, 0, true)
	f.isRootFiber = true
	f.rootWorkerTid = rootTid
	f.rootScheduler = sched
	return f
}

func (f *Fiber) ID() uint64 { return f.id }

func (f *Fiber) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Fiber) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// StackAddr exposes the accounting buffer's identity, used by scenario
// S5 ("the same fiber, after reset, reports the same stack address").
func (f *Fiber) StackAddr() uintptr {
	if len(f.stack) == 0 {
		return 0
	}
	return uintptr(unsafePointer(f.stack))
}

func (f *Fiber) launch() {
	go func() {
		<-f.resume
		a := currentAmbient()
		a.currentFiber = f
		if f.isRootFiber {
			a.isWorker = true
			a.workerTid = f.rootWorkerTid
			a.workerSched = f.rootScheduler
		}
		if f.useCaller {
			f.callerMain()
		} else {
			f.workerMain()
		}
	}()
}

func (f *Fiber) runEntry() {
	defer func() {
		if r := recover(); r != nil {
			f.setState(StateExcept)
			diagnostics.Errorf("fiber %d raised: %v\n%s", f.id, r, Backtrace(64, 3, "    "))
		}
	}()
	entry := f.entry
	f.entry = nil
	entry()
	f.mu.Lock()
	if f.state != StateExcept {
		f.state = StateTerm
	}
	f.mu.Unlock()
}

// workerMain is the trampoline for worker-entry fibers: it runs the
// closure then relinquishes control via a final swapOut, mirroring
// spec.md §4.C's main_func.
func (f *Fiber) workerMain() {
	f.runEntry()
	f.finalYield()
}

// callerMain is the trampoline for caller-entry fibers (the use-caller
// root fiber): identical mechanics, distinct name for fidelity with
// spec.md's caller_main_func.
func (f *Fiber) callerMain() {
	f.runEntry()
	f.finalYield()
}

func (f *Fiber) finalYield() {
	f.yielded <- struct{}{}
}

// SwapIn requires state != EXEC, sets state=EXEC, and blocks the caller
// until the fiber yields or terminates. This is the "swap from the
// scheduler's per-thread main fiber to self" half of spec.md's table.
func (f *Fiber) SwapIn() {
	assertf(f.State() != StateExec, "fiber %d: swapIn while already EXEC", f.id)
	f.setState(StateExec)
	atomic.StoreInt32(&f.currentWorkerID, int32(GetThreadId()))
	f.currentScheduler = CurrentScheduler()
	f.resume <- struct{}{}
	<-f.yielded
}

// SwapOut is called from within a fiber's own closure to suspend and
// return control to whichever goroutine most recently called SwapIn.
// It blocks until the fiber is resumed again.
func (f *Fiber) SwapOut() {
	f.yielded <- struct{}{}
	<-f.resume
}

// Call/Back are swapIn/swapOut for caller-entry fibers; spec.md keeps
// the names distinct because the original swaps against the OS
// bootstrap fiber rather than the scheduler's main fiber. The Go port's
// mechanics are identical either way.
func (f *Fiber) Call() { f.SwapIn() }
func (f *Fiber) Back() { f.SwapOut() }

// YieldToReady sets the calling fiber's state to READY (wants to run
// again soon) and suspends it.
func YieldToReady() {
	f := CurrentFiber()
	assertf(!f.isBootstrap, "fiberrt: YieldToReady called outside any fiber")
	f.setState(StateReady)
	f.SwapOut()
}

// YieldToHold sets the calling fiber's state to HOLD (parked until
// something explicitly reschedules it) and suspends it.
func YieldToHold() {
	f := CurrentFiber()
	assertf(!f.isBootstrap, "fiberrt: YieldToHold called outside any fiber")
	f.setState(StateHold)
	f.SwapOut()
}

// GetFiberId returns the id of the fiber currently EXEC on the calling
// goroutine (0 for the per-thread bootstrap fiber).
func GetFiberId() uint64 { return CurrentFiber().id }

// Reset rebinds a TERM/INIT/EXCEPT fiber to a new entry closure,
// returning it to INIT with a fresh backing goroutine. The *Fiber
// value, id, and stack buffer are unchanged, preserving identity across
// reuse (spec.md §4.C, scenario S5).
func (f *Fiber) Reset(entry func()) {
	assertf(len(f.stack) > 0, "fiber %d: reset on a fiber with no stack", f.id)
	st := f.State()
	assertf(st == StateTerm || st == StateInit || st == StateExcept,
		"fiber %d: reset from state %s", f.id, st)

	f.mu.Lock()
	f.entry = entry
	f.state = StateInit
	f.resume = make(chan struct{})
	f.yielded = make(chan struct{})
	f.mu.Unlock()

	f.launch()
}

// Release returns the fiber's stack buffer to its allocator and
// decrements the live-fiber counter exactly once, matching the
// destructor invariant in spec.md §3 (free only from TERM/INIT/EXCEPT,
// or the bootstrap fiber's own EXEC special case). Go's garbage
// collector makes an explicit call optional — NewFiber also registers a
// finalizer as a backstop — but calling it directly is the precise,
// timely way to model the contract.
func (f *Fiber) Release() {
	if !atomic.CompareAndSwapInt32(&f.released, 0, 1) {
		return
	}
	if f.isBootstrap {
		assertf(f.State() == StateExec, "bootstrap fiber %d: released while not EXEC", f.id)
	} else {
		st := f.State()
		assertf(st == StateTerm || st == StateInit || st == StateExcept,
			"fiber %d: released from state %s", f.id, st)
		defaultStackAllocator.Free(f.stack)
	}
	atomic.AddInt64(&liveFiberCount, -1)
	runtime.SetFinalizer(f, nil)
}

func (f *Fiber) finalize() {
	if atomic.CompareAndSwapInt32(&f.released, 0, 1) {
		if !f.isBootstrap {
			defaultStackAllocator.Free(f.stack)
		}
		atomic.AddInt64(&liveFiberCount, -1)
	}
}
