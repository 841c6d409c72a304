package thread

import (
	"unsafe"

	"rvkern/kernel"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/trap"
)

var setTickHandlerFn = trap.SetTickHandler

// Init sets up CPU with a round-robin thread pool and its idle thread and
// hooks the processor to the timer interrupt.
func Init() {
	pool := NewThreadPool(MaxTasks, NewRoundRobin(TicksPerTimeSlice))
	idle := NewThread().
		Arg(uintptr(unsafe.Pointer(&CPU))).
		Create(FuncPC(idleMain))

	CPU.Init(pool, idle)
	setTickHandlerFn(CPU.Tick)

	kfmt.Printf("[sched] %d task slots, %d ticks per time slice\n", MaxTasks, TicksPerTimeSlice)
}

// Spawn creates a kernel thread running entry with the given arguments and
// hands it to CPU.
func Spawn(entry uintptr, args ...uintptr) (TaskID, *kernel.Error) {
	if len(args) > maxArgs {
		return 0, errTooManyArgs
	}

	b := NewThread()
	for _, arg := range args {
		b = b.Arg(arg)
	}
	t := b.Create(entry)
	tid, err := CPU.Push(t)
	if err != nil {
		t.Destroy()
	}
	return tid, err
}

// Exit terminates the calling kernel thread.
func Exit(code uintptr) {
	CPU.Exit(code)
}

func idleMain(p *Processor) {
	p.Idle()
}
