//go:build !linux

package fiberrt

// realOSThreadID falls back to the goroutine-id technique on platforms
// without a direct gettid() syscall binding in golang.org/x/sys/unix.
// The only contracts callers rely on — stable for the life of a
// LockOSThread'd goroutine, unique across concurrently alive threads —
// still hold; it is not a kernel-assigned value.
func realOSThreadID() int {
	return int(goroutineID())
}
