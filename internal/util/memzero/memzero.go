// Package memzero wipes sensitive buffers.
package memzero

import "runtime"

// Zero overwrites b with zeros. It is best-effort: the Go runtime may have
// copied the data elsewhere.
//
//go:noinline
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
