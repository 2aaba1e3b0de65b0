package fiberrt

import "unsafe"

// unsafePointer returns the address backing buf's first byte, used
// only so Fiber.StackAddr has something to report for scenario S5 — it
// is never dereferenced.
func unsafePointer(buf []byte) unsafe.Pointer {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}
