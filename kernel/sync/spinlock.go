// Package sync provides the spinlock used to guard the kernel's process-wide
// structures.
package sync

import (
	"sync/atomic"

	"rvkern/kernel/cpu"
)

// attemptsBeforeYielding is the number of failed acquisition attempts after
// which a spinning task calls yieldFn (if set).
const attemptsBeforeYielding = 64

var (
	// yieldFn is invoked while spinning. The kernel runs on a single hart so
	// it stays nil there; tests install runtime.Gosched.
	yieldFn func()

	disableInterruptsFn = cpu.DisableInterrupts
	restoreInterruptsFn = cpu.RestoreInterrupts
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// till the lock becomes available.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Any attempt to re-acquire a lock already held by the current task will cause
// a deadlock.
func (l *Spinlock) Acquire() {
	for attempt := uint32(1); !atomic.CompareAndSwapUint32(&l.state, 0, 1); attempt++ {
		if attempt%attemptsBeforeYielding == 0 && yieldFn != nil {
			yieldFn()
		}
	}
}

// TryToAcquire attempts to acquire the lock and returns true if the lock could
// be acquired or false otherwise.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

// Release relinquishes a held lock allowing other tasks to acquire it. Calling
// Release while the lock is free has no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

// AcquireIRQ masks interrupts on the local hart and then acquires the lock.
// Structures that are also touched from the timer interrupt must be locked
// this way, otherwise the interrupt could spin forever on a lock held by the
// code it interrupted. The returned value must be passed to ReleaseIRQ.
func (l *Spinlock) AcquireIRQ() uintptr {
	flags := disableInterruptsFn()
	l.Acquire()
	return flags
}

// ReleaseIRQ releases the lock and restores the interrupt state captured by
// AcquireIRQ.
func (l *Spinlock) ReleaseIRQ(flags uintptr) {
	l.Release()
	restoreInterruptsFn(flags)
}
