package trap

// trapEntry is the target of stvec. It saves a Frame on the stack, calls
// onTrap and falls through to trapReturn.
func trapEntry()

// trapReturn restores the Frame at the top of the stack and executes sret.
func trapReturn()

func trapEntryPC() uintptr

// TrapReturnPC returns the address of the code that restores a Frame from
// the top of the stack and returns from the trap. Jumping to it with sp
// pointing at a hand-built Frame starts execution at Frame.SEPC.
func TrapReturnPC() uintptr
