package trap

// Cause is the value of the scause register.
type Cause uintptr

// causeInterrupt is set in scause when the trap is an interrupt.
const causeInterrupt = Cause(1) << 63

// Exception codes.
const (
	InstructionMisaligned Cause = 0
	InstructionFault      Cause = 1
	IllegalInstruction    Cause = 2
	Breakpoint            Cause = 3
	LoadMisaligned        Cause = 4
	LoadFault             Cause = 5
	StoreMisaligned       Cause = 6
	StoreFault            Cause = 7
	UserEnvCall           Cause = 8
	SupervisorEnvCall     Cause = 9
	InstructionPageFault  Cause = 12
	LoadPageFault         Cause = 13
	StorePageFault        Cause = 15
)

// Interrupt causes.
const (
	SupervisorSoft     = causeInterrupt | 1
	SupervisorTimer    = causeInterrupt | 5
	SupervisorExternal = causeInterrupt | 9
)

// IsInterrupt returns true if the trap was caused by an interrupt.
func (c Cause) IsInterrupt() bool {
	return c&causeInterrupt != 0
}

// Code returns the exception or interrupt code.
func (c Cause) Code() uintptr {
	return uintptr(c &^ causeInterrupt)
}

// IsPageFault returns true for instruction, load and store page faults.
func (c Cause) IsPageFault() bool {
	return c == InstructionPageFault || c == LoadPageFault || c == StorePageFault
}

// String returns a human readable name for the cause.
func (c Cause) String() string {
	switch c {
	case InstructionMisaligned:
		return "instruction address misaligned"
	case InstructionFault:
		return "instruction access fault"
	case IllegalInstruction:
		return "illegal instruction"
	case Breakpoint:
		return "breakpoint"
	case LoadMisaligned:
		return "load address misaligned"
	case LoadFault:
		return "load access fault"
	case StoreMisaligned:
		return "store address misaligned"
	case StoreFault:
		return "store access fault"
	case UserEnvCall:
		return "environment call from U-mode"
	case SupervisorEnvCall:
		return "environment call from S-mode"
	case InstructionPageFault:
		return "instruction page fault"
	case LoadPageFault:
		return "load page fault"
	case StorePageFault:
		return "store page fault"
	case SupervisorSoft:
		return "supervisor software interrupt"
	case SupervisorTimer:
		return "supervisor timer interrupt"
	case SupervisorExternal:
		return "supervisor external interrupt"
	}

	if c.IsInterrupt() {
		return "unknown interrupt"
	}
	return "unknown exception"
}
