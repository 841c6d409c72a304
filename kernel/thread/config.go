package thread

const (
	// MaxTasks is the number of slots in the kernel thread pool.
	MaxTasks = 1024

	// KStackSize is the size of each kernel thread stack. It is a multiple
	// of the page size so that stacks are page aligned.
	KStackSize = 64 * 1024

	// TicksPerTimeSlice is the number of timer interrupts a thread may run
	// for before it is preempted.
	TicksPerTimeSlice = 4

	// maxArgs is the number of argument registers (a0..a7) that can be
	// preloaded for a new thread.
	maxArgs = 8

	// stackReserve is left unused at the top of every kernel stack. The
	// entry function may spill its register arguments above its initial
	// stack pointer.
	stackReserve = 16 * 8
)
