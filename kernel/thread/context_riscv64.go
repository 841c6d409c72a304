package thread

// switchContext saves ra, satp and s0..s11 on the current stack and records
// the stack pointer in from. It then loads the stack pointer of to, restores
// the same registers from it and returns through the restored ra. Interrupts
// must be disabled for the duration of the call.
func switchContext(from, to *Context)

// getg returns the g register so new threads run with the same g as the
// code that created them.
func getg() uintptr
