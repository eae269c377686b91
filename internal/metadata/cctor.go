package metadata

import "sync/atomic"

const (
	cctorNotStarted int32 = iota
	cctorRunning
	cctorDone
)

// CctorBegin attempts to transition this type's static constructor
// state from "not started" to "running on threadID". It returns
// (shouldRun=true) if the caller must now execute the .cctor,
// (shouldRun=false, alreadyDone=true) if some thread already completed
// it or it is currently running on this same thread (re-entrant call,
// treated as done-for-this-thread per ECMA-335 §I.8.9.5), or
// (shouldRun=false, alreadyDone=false) if it is currently running on
// another thread.
func (t *TypeDescriptor) CctorBegin(threadID int64) (shouldRun, alreadyDone bool) {
	if atomic.LoadInt32(&t.cctor.status) == cctorDone {
		return false, true
	}
	if atomic.CompareAndSwapInt32(&t.cctor.status, cctorNotStarted, cctorRunning) {
		t.cctor.threadID = threadID
		return true, false
	}
	// Already running. Re-entrant on the same thread: treat as done
	// for this thread so nested use does not deadlock.
	if atomic.LoadInt32(&t.cctor.status) == cctorRunning && t.cctor.threadID == threadID {
		return false, true
	}
	return false, false
}

// CctorFinish marks the static constructor as having completed.
func (t *TypeDescriptor) CctorFinish() {
	atomic.StoreInt32(&t.cctor.status, cctorDone)
}

// CctorCompleted reports whether the static constructor has already
// run to completion.
func (t *TypeDescriptor) CctorCompleted() bool {
	return atomic.LoadInt32(&t.cctor.status) == cctorDone
}

// HasCctor returns the type's static constructor (a specially-named
// static method, per CIL convention ".cctor"), or nil if it declares
// none.
func (t *TypeDescriptor) HasCctor() *MethodDescriptor {
	for _, m := range t.Methods {
		if m.Name == ".cctor" && m.IsStatic() {
			return m
		}
	}
	return nil
}
