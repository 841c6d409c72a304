package sbi

// call traps into the firmware with ecall.
func call(ext, arg0, arg1, arg2 uintptr) uintptr
