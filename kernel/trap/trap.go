// Package trap installs the supervisor trap vector and dispatches the traps
// taken by the kernel: breakpoints, timer interrupts and page faults.
package trap

import (
	"unsafe"

	"rvkern/kernel"
	"rvkern/kernel/cpu"
	"rvkern/kernel/kfmt"
)

var (
	// panicFn is overridden by tests.
	panicFn = kfmt.Panic

	writeSScratchFn    = cpu.WriteSScratch
	writeSTVecFn       = cpu.WriteSTVec
	enableInterruptsFn = cpu.EnableInterrupts

	// instructionLenFn returns the length of the instruction at pc.
	instructionLenFn = func(pc uintptr) uintptr {
		// The two low bits of a 32-bit instruction are both set; any
		// other value marks a 16-bit compressed instruction.
		if *(*uint16)(unsafe.Pointer(pc))&0x3 == 0x3 {
			return 4
		}
		return 2
	}

	// tickHandler is invoked on every timer interrupt.
	tickHandler func()

	// dumpWriter tags register dumps with the subsystem prefix.
	dumpWriter = kfmt.PrefixWriter{Prefix: []byte("[trap] ")}

	// ErrPageFault is raised when the kernel touches an unmapped page or
	// violates a page's permissions.
	ErrPageFault = &kernel.Error{Module: "trap", Message: "page fault"}

	// ErrUnhandledTrap is raised for every trap without a handler.
	ErrUnhandledTrap = &kernel.Error{Module: "trap", Message: "unhandled trap"}
)

// Init installs the trap vector and enables interrupts. sscratch is zeroed
// to tell the entry code that traps come from supervisor mode.
func Init() {
	writeSScratchFn(0)
	writeSTVecFn(trapEntryPC())
	enableInterruptsFn()
	kfmt.Printf("[trap] vector installed at 0x%x\n", trapEntryPC())
}

// SetTickHandler registers the function invoked on every timer interrupt.
// The handler runs with interrupts disabled on the stack of the interrupted
// thread and may switch to another thread.
func SetTickHandler(fn func()) {
	tickHandler = fn
}

// onTrap is called by the trap entry code with the saved frame. When it
// returns the frame is restored and execution resumes at tf.SEPC.
func onTrap(tf *Frame) {
	cause := Cause(tf.SCause)

	switch {
	case cause == Breakpoint:
		kfmt.Printf("[trap] breakpoint at 0x%x\n", tf.SEPC)
		tf.SEPC += instructionLenFn(tf.SEPC)
	case cause == SupervisorTimer:
		tick()
	case cause.IsPageFault():
		kfmt.Printf("[trap] %s accessing 0x%x at 0x%x\n", cause.String(), tf.STVal, tf.SEPC)
		dumpFrame(tf)
		panicFn(ErrPageFault)
	default:
		dumpFrame(tf)
		panicFn(ErrUnhandledTrap)
	}
}

func dumpFrame(tf *Frame) {
	if w := kfmt.GetOutputSink(); w != nil {
		dumpWriter.Sink = w
		tf.DumpTo(&dumpWriter)
	}
}
