//go:build !riscv64

package trap

import (
	"reflect"

	"rvkern/kernel"
)

// The host build has no trap vector. trapEntry and trapReturn only provide
// distinct addresses so that the code installing them can be tested.

var errNoTrapVector = &kernel.Error{Module: "trap", Message: "trap vector is only available on riscv64"}

func trapEntry() { panic(errNoTrapVector) }

func trapReturn() { panic(errNoTrapVector) }

func trapEntryPC() uintptr { return reflect.ValueOf(trapEntry).Pointer() }

// TrapReturnPC returns the address of trapReturn.
func TrapReturnPC() uintptr { return reflect.ValueOf(trapReturn).Pointer() }
