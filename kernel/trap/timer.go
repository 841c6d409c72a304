package trap

import (
	"rvkern/kernel/cpu"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/sbi"
)

const (
	// Timebase is the number of time CSR ticks between two timer
	// interrupts (10ms with the 10MHz timebase of QEMU virt).
	Timebase = 100000

	// tickWrap is the value at which the tick counter starts over.
	tickWrap = 1000
)

var (
	enableTimerInterruptFn = cpu.EnableTimerInterrupt
	readTimeFn             = cpu.ReadTime
	setTimerFn             = sbi.SetTimer

	ticks uint64
)

// InitTimer enables timer interrupts and programs the first one.
func InitTimer() {
	ticks = 0
	enableTimerInterruptFn()
	SetNextDeadline()
}

// SetNextDeadline schedules the next timer interrupt Timebase ticks from now.
func SetNextDeadline() {
	setTimerFn(readTimeFn() + Timebase)
}

// Ticks returns the number of timer interrupts since the counter last
// wrapped.
func Ticks() uint64 {
	return ticks
}

// tick handles a timer interrupt.
func tick() {
	if ticks++; ticks == tickWrap {
		ticks = 0
		kfmt.Printf("[trap] %d ticks\n", uint64(tickWrap))
	}

	SetNextDeadline()

	if tickHandler != nil {
		tickHandler()
	}
}
