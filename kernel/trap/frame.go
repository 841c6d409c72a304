package trap

import (
	"io"

	"rvkern/kernel/kfmt"
)

// Frame is the register state saved on the stack when the hart takes a trap.
// Its layout is shared with the trap entry code and with the thread package,
// which builds frames by hand to start new threads.
type Frame struct {
	// X holds the general purpose registers x0..x31. X[2] is the stack
	// pointer at the time of the trap.
	X [32]uintptr

	SStatus uintptr
	SEPC    uintptr
	STVal   uintptr
	SCause  uintptr
}

// FrameSize is the size of Frame in bytes.
const FrameSize = 36 * 8

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// DumpTo writes the contents of the frame to w.
func (f *Frame) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "scause = %s (0x%x)\n", Cause(f.SCause).String(), f.SCause)
	kfmt.Fprintf(w, "sepc = 0x%16x stval = 0x%16x sstatus = 0x%16x\n", f.SEPC, f.STVal, f.SStatus)
	for i := 0; i < len(f.X); i += 4 {
		kfmt.Fprintf(w, "%4s = 0x%16x %4s = 0x%16x %4s = 0x%16x %4s = 0x%16x\n",
			regNames[i], f.X[i], regNames[i+1], f.X[i+1],
			regNames[i+2], f.X[i+2], regNames[i+3], f.X[i+3],
		)
	}
}
