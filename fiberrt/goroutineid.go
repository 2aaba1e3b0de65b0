package fiberrt

import (
	"runtime"
	"strconv"
)

// goroutineID parses the "goroutine NNN [...]" header Go's runtime
// prints at the top of a stack dump. Go deliberately has no public API
// for this; the technique is the one
// joeycumines-go-utilpkg/eventloop.Loop uses to tell its own goroutine
// apart from callers reaching in from elsewhere. It is used here purely
// as a stable map key for the ambient-context emulation in ambient.go,
// never exposed to callers as a thread id.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	const prefix = "goroutine "
	b := buf[:n]
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	b = b[len(prefix):]
	end := 0
	for end < len(b) && b[end] >= '0' && b[end] <= '9' {
		end++
	}
	id, _ := strconv.ParseUint(string(b[:end]), 10, 64)
	return id
}
