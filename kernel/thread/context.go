package thread

import (
	"reflect"
	"unsafe"

	"rvkern/kernel/cpu"
	"rvkern/kernel/trap"
)

// Indices of the registers that a new thread needs preset in its trap frame.
const (
	regRA   = 1
	regSP   = 2
	regA0   = 10
	regG    = 27
	savedSN = 12
)

// Context is the handle of a suspended thread. sp points at the
// ContextContent that switchContext pushed (or that newKernelContext
// fabricated) on the thread's stack.
type Context struct {
	sp uintptr
}

// ContextContent is the register state stored at Context.sp. The first three
// fields are pushed and popped by switchContext. TF is only present for
// threads that have never run: it is consumed by the trap return code the
// first time the thread is switched to.
type ContextContent struct {
	RA   uintptr
	SATP uintptr
	S    [savedSN]uintptr
	TF   trap.Frame
}

var (
	switchContextFn = switchContext
	trapReturnPCFn  = trap.TrapReturnPC
	getgFn          = getg
)

// newKernelContext builds the initial context of a kernel thread just below
// stackTop. The first switch to it pops RA and jumps to the trap return code
// which restores TF: execution starts at entry in supervisor mode with sp set
// to stackTop and interrupts enabled.
func newKernelContext(entry, stackTop, satp uintptr) Context {
	sp := stackTop - unsafe.Sizeof(ContextContent{})

	content := (*ContextContent)(unsafe.Pointer(sp))
	*content = ContextContent{
		RA:   trapReturnPCFn(),
		SATP: satp,
	}
	content.TF.SStatus = (cpu.SStatusSPP | cpu.SStatusSPIE) &^ cpu.SStatusSIE
	content.TF.SEPC = entry
	content.TF.X[regSP] = stackTop
	content.TF.X[regRA] = threadReturnPC()
	content.TF.X[regG] = getgFn()

	return Context{sp: sp}
}

// content returns the ContextContent of a thread that has not been run yet.
func (c *Context) content() *ContextContent {
	return (*ContextContent)(unsafe.Pointer(c.sp))
}

// threadReturn is where the entry function of a kernel thread returns to.
func threadReturn() {
	Exit(0)
}

func threadReturnPC() uintptr {
	return reflect.ValueOf(threadReturn).Pointer()
}

// FuncPC returns the entry address of the top-level function fn, suitable as
// the entry point of a thread. The function receives the thread arguments in
// its integer parameters and must not be a closure.
func FuncPC(fn interface{}) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panicFn(errNotAFunction)
		return 0
	}
	return v.Pointer()
}
