//go:build linux

package vm

import "golang.org/x/sys/unix"

// currentThreadID returns the OS thread id backing the calling
// goroutine, used to key the re-entrant static-constructor discipline
// ECMA-335 §I.8.9.5: a .cctor re-entered on the same
// OS thread must not deadlock against itself. Go goroutines are not
// pinned to OS threads, so this is an approximation good enough for
// the engine's cooperative, mostly-single-threaded execution model —
// true thread affinity would require runtime.LockOSThread at the call
// boundary, which the interpreter does not otherwise need.
func currentThreadID() int64 {
	return int64(unix.Gettid())
}
