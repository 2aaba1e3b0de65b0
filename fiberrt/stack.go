package fiberrt

// StackAllocator acquires and releases the byte buffers fibers use as
// stacks (spec component A). The default implementation is a
// pass-through to Go's allocator; the interface exists so callers can
// substitute guarded, pooled, or huge-page-backed stacks without
// touching Fiber itself.
//
// Go's own goroutine stacks are managed and movable by the runtime, so
// the buffer handed out here is not literally the memory a fiber's
// backing goroutine executes on — it exists for size accounting,
// identity (see Fiber.StackAddr), and so a future allocator swap still
// has somewhere to plug in. See DESIGN.md for the full rationale.
type StackAllocator interface {
	Alloc(size uint32) []byte
	Free(buf []byte)
}

type mallocStackAllocator struct{}

func (mallocStackAllocator) Alloc(size uint32) []byte { return make([]byte, size) }

func (mallocStackAllocator) Free(buf []byte) {}

var defaultStackAllocator StackAllocator = mallocStackAllocator{}

// SetStackAllocator overrides the process-wide stack allocator used by
// subsequently constructed fibers.
func SetStackAllocator(a StackAllocator) {
	if a == nil {
		a = mallocStackAllocator{}
	}
	defaultStackAllocator = a
}
