// Package cpu exposes the supervisor-mode primitives of a 64-bit RISC-V hart:
// interrupt masking, address translation control and the trap CSRs.
//
// On riscv64 every primitive is a few hand-encoded instructions (the Go
// assembler has no mnemonics for the privileged ISA). Other architectures get
// an in-memory model of the same registers so the rest of the kernel can be
// built and tested on a development host.
package cpu

// sstatus bits.
const (
	SStatusSIE  = uintptr(1 << 1)
	SStatusSPIE = uintptr(1 << 5)
	SStatusSPP  = uintptr(1 << 8)
)

// SIESTIE enables supervisor timer interrupts in the sie register.
const SIESTIE = uintptr(1 << 5)

// SATPModeSv39 selects Sv39 translation when ORed with a root table PPN.
const SATPModeSv39 = uintptr(8) << 60

// RestoreInterrupts re-enables interrupts if they were enabled when the
// sstatus value passed in was captured by DisableInterrupts.
func RestoreInterrupts(flags uintptr) {
	if flags&SStatusSIE != 0 {
		EnableInterrupts()
	}
}
