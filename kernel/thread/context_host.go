//go:build !riscv64

package thread

import "rvkern/kernel"

var errNoContextSwitch = &kernel.Error{Module: "thread", Message: "context switching is only available on riscv64"}

func switchContext(_, _ *Context) { panic(errNoContextSwitch) }

func getg() uintptr { return 0 }
