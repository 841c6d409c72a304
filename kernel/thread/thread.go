// Package thread implements kernel threads: context fabrication and
// switching, a round-robin scheduler, the thread pool and the processor that
// drives them from the idle loop and the timer interrupt.
package thread

import (
	"rvkern/kernel"
	"rvkern/kernel/cpu"
	"rvkern/kernel/kfmt"
)

var (
	// panicFn is overridden by tests.
	panicFn = kfmt.Panic

	disableInterruptsFn = cpu.DisableInterrupts
	restoreInterruptsFn = cpu.RestoreInterrupts
	enableAndWaitFn     = cpu.EnableAndWait
	activeSATPFn        = cpu.ActiveSATP

	errTooManyArgs     = &kernel.Error{Module: "thread", Message: "a thread takes at most 8 arguments"}
	errNotAFunction    = &kernel.Error{Module: "thread", Message: "thread entry is not a function"}
	errNotFabricated   = &kernel.Error{Module: "thread", Message: "arguments can only be set before a thread runs"}
	errNoCurrentThread = &kernel.Error{Module: "thread", Message: "no thread is running"}
	errExitReturned    = &kernel.Error{Module: "thread", Message: "exited thread was resumed"}
)

// Thread is a kernel thread: its saved context and the stack it runs on.
type Thread struct {
	context Context
	kstack  KStack
}

// BootThread returns a thread without a stack. Switching away from it saves
// the context of the code that booted the kernel.
func BootThread() *Thread {
	return &Thread{}
}

// Switch saves the context of the running thread t and resumes to. It returns
// when another thread switches back to t. Interrupts are masked while the
// contexts are swapped and restored to their previous state afterwards.
func (t *Thread) Switch(to *Thread) {
	flags := disableInterruptsFn()
	switchContextFn(&t.context, &to.context)
	restoreInterruptsFn(flags)
}

// SetArgs loads up to 8 values in the argument registers of a thread that
// has not run yet.
func (t *Thread) SetArgs(args ...uintptr) {
	if t.kstack.Top() == 0 {
		panicFn(errNotFabricated)
		return
	}
	if len(args) > maxArgs {
		args = args[:maxArgs]
	}

	content := t.context.content()
	copy(content.TF.X[regA0:regA0+maxArgs], args)
}

// Destroy releases the stack of t. t must not be running.
func (t *Thread) Destroy() {
	t.kstack.Release()
	t.context = Context{}
}

// ThreadArgs collects the arguments of a thread before it is created.
type ThreadArgs struct {
	n    int
	args [maxArgs]uintptr
}

// NewThread starts building a thread.
func NewThread() ThreadArgs {
	return ThreadArgs{}
}

// Arg appends an argument for the thread entry function.
func (a ThreadArgs) Arg(v uintptr) ThreadArgs {
	if a.n == maxArgs {
		panicFn(errTooManyArgs)
		return a
	}
	a.args[a.n] = v
	a.n++
	return a
}

// Create allocates a stack and fabricates a context that starts executing
// entry with the collected arguments, in the active address space.
func (a ThreadArgs) Create(entry uintptr) *Thread {
	t := &Thread{kstack: NewKStack()}
	t.context = newKernelContext(entry, t.kstack.Top()-stackReserve, activeSATPFn())
	copy(t.context.content().TF.X[regA0:], a.args[:])
	return t
}
