// Package goruntime prepares the Go runtime for code that runs on kernel
// thread stacks.
package goruntime

import (
	"runtime/debug"

	"rvkern/kernel/kfmt"
)

var (
	setGCPercentFn   = debug.SetGCPercent
	liftStackGuardFn = liftStackGuard
)

// Init adjusts the runtime for the kernel's threading model:
//
//   - Kernel stacks are plain byte slices switched to behind the runtime's
//     back. The collector cannot scan them, so it is turned off and every
//     allocation lives for the lifetime of the kernel.
//   - All threads share the boot g. Its stack bounds describe only the boot
//     stack, so the guard checked by function prologues is lowered to zero
//     to keep code on other stacks from calling into morestack.
func Init() {
	setGCPercentFn(-1)
	liftStackGuardFn()
	kfmt.Printf("[goruntime] garbage collector disabled, stack guard lifted\n")
}
