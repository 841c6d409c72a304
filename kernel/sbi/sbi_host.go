//go:build !riscv64

package sbi

import "io"

// Firmware model used when the kernel is built for a development host.
var (
	hostConsole    io.Writer = io.Discard
	hostInput      []byte
	hostDeadline   uint64
	hostPoweredOff bool
)

func call(ext, arg0, _, _ uintptr) uintptr {
	switch ext {
	case extConsolePutChar:
		hostConsole.Write([]byte{byte(arg0)})
	case extConsoleGetChar:
		if len(hostInput) == 0 {
			return ^uintptr(0)
		}
		ch := hostInput[0]
		hostInput = hostInput[1:]
		return uintptr(ch)
	case extSetTimer:
		hostDeadline = uint64(arg0)
	case extShutdown:
		hostPoweredOff = true
	}
	return 0
}
