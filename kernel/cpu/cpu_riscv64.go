package cpu

// EnableInterrupts sets sstatus.SIE.
func EnableInterrupts()

// DisableInterrupts clears sstatus.SIE and returns the previous value of
// sstatus so it can be handed to RestoreInterrupts.
func DisableInterrupts() uintptr

// ReadSStatus returns the current value of sstatus.
func ReadSStatus() uintptr

// EnableAndWait enables interrupts and stalls the hart until the next one
// arrives.
func EnableAndWait()

// Halt disables interrupts and parks the hart forever.
func Halt()

// FlushTLBEntry flushes the translation of a single virtual address.
func FlushTLBEntry(virtAddr uintptr)

// FlushTLB flushes every cached translation.
func FlushTLB()

// ActiveSATP returns the contents of the satp register.
func ActiveSATP() uintptr

// SwitchSATP installs a new satp value and flushes all cached translations.
func SwitchSATP(satp uintptr)

// WriteSTVec sets the address the hart jumps to when it takes a trap.
func WriteSTVec(addr uintptr)

// WriteSScratch sets the sscratch register.
func WriteSScratch(v uintptr)

// EnableTimerInterrupt sets sie.STIE.
func EnableTimerInterrupt()

// ReadTime returns the value of the time CSR.
func ReadTime() uint64
