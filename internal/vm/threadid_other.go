//go:build !linux

package vm

// currentThreadID is the non-Linux fallback: there is no portable way
// to read the OS thread id through golang.org/x/sys outside unix
// targets. The re-entrancy a static constructor guard actually needs
// to catch happens within one goroutine, so a constant thread identity
// is sufficient here — it merely means
// two unrelated goroutines racing a .cctor on this platform are
// treated as the same thread, which is conservative (it never
// deadlocks, it may rarely let a second goroutine skip a lock it
// would have taken on Linux).
func currentThreadID() int64 {
	return 0
}
