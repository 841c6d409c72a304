//go:build !riscv64

package cpu

import (
	"time"

	"rvkern/kernel"
)

// The model below stands in for the supervisor CSRs of a single hart.
var (
	sstatus  uintptr
	satp     uintptr
	sie      uintptr
	stvec    uintptr
	sscratch uintptr

	tlbFlushes int

	bootTime = time.Now()

	errHalted = &kernel.Error{Module: "cpu", Message: "hart halted"}
)

// timeFreq is the frequency of the modelled time CSR (10MHz, as on QEMU virt).
const timeFreq = 10000000

func EnableInterrupts() { sstatus |= SStatusSIE }

func DisableInterrupts() uintptr {
	prev := sstatus
	sstatus &^= SStatusSIE
	return prev
}

func ReadSStatus() uintptr { return sstatus }

// EnableAndWait enables interrupts. The model has no interrupt sources so the
// wait completes immediately.
func EnableAndWait() { sstatus |= SStatusSIE }

// Halt panics; a host process cannot park a hart.
func Halt() {
	sstatus &^= SStatusSIE
	panic(errHalted)
}

func FlushTLBEntry(_ uintptr) { tlbFlushes++ }

func FlushTLB() { tlbFlushes++ }

func ActiveSATP() uintptr { return satp }

func SwitchSATP(v uintptr) {
	satp = v
	tlbFlushes++
}

func WriteSTVec(addr uintptr) { stvec = addr }

func WriteSScratch(v uintptr) { sscratch = v }

func EnableTimerInterrupt() { sie |= SIESTIE }

func ReadTime() uint64 {
	return uint64(time.Since(bootTime) / (time.Second / timeFreq))
}
