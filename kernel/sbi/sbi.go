// Package sbi wraps the legacy Supervisor Binary Interface calls serviced by
// the machine-mode firmware that boots the kernel.
package sbi

// Legacy extension ids. The call id goes in a7 and the arguments in a0..a2.
const (
	extSetTimer        = 0
	extConsolePutChar  = 1
	extConsoleGetChar  = 2
	extClearIPI        = 3
	extSendIPI         = 4
	extRemoteFenceI    = 5
	extRemoteSFenceVMA = 6
	extShutdown        = 8
)

var callFn = call

// PutChar writes a single byte to the firmware console.
func PutChar(ch byte) {
	callFn(extConsolePutChar, uintptr(ch), 0, 0)
}

// GetChar reads a byte from the firmware console. It returns -1 if no input
// is pending.
func GetChar() int {
	return int(int64(callFn(extConsoleGetChar, 0, 0, 0)))
}

// SetTimer programs the next timer interrupt to fire once the time CSR
// reaches deadline. It also clears any pending timer interrupt.
func SetTimer(deadline uint64) {
	callFn(extSetTimer, uintptr(deadline), 0, 0)
}

// Shutdown asks the firmware to power off the machine.
func Shutdown() {
	callFn(extShutdown, 0, 0, 0)
}

// Console is an io.Writer that emits its input through PutChar. It is the
// output sink of the kernel formatter once the kernel is running.
type Console struct{}

// Write implements io.Writer.
func (Console) Write(p []byte) (int, error) {
	for _, b := range p {
		PutChar(b)
	}
	return len(p), nil
}
