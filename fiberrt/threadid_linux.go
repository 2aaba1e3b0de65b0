//go:build linux

package fiberrt

import "golang.org/x/sys/unix"

// realOSThreadID returns the calling OS thread's genuine kernel tid.
// It is stable only while the calling goroutine is pinned with
// runtime.LockOSThread. It is read at a worker's handshake (thread.go),
// at a use-caller scheduler's root-thread registration (scheduler.go),
// and by GetThreadId for a goroutine that is neither a worker nor
// running a fiber (ambient.go).
func realOSThreadID() int {
	return unix.Gettid()
}
