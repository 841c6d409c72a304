package thread

import (
	"rvkern/kernel"
	"rvkern/kernel/kfmt"
)

// Processor drives the threads of a hart. The idle thread loops picking
// threads from the pool and switching to them. Running threads switch back
// to it when their time slice is up or when they exit.
type Processor struct {
	pool *ThreadPool
	idle *Thread

	current    *Thread
	currentID  TaskID
	hasCurrent bool
}

// CPU is the processor of the single hart the kernel runs on. It must be
// initialized with Init before use.
var CPU Processor

var errProcessorNotReady = &kernel.Error{Module: "thread", Message: "processor is not initialized"}

// Init attaches the thread pool and the idle thread to the processor.
func (p *Processor) Init(pool *ThreadPool, idle *Thread) {
	p.pool, p.idle = pool, idle
	p.current, p.hasCurrent = nil, false
}

// Push adds a thread to the pool.
func (p *Processor) Push(t *Thread) (TaskID, *kernel.Error) {
	if p.pool == nil {
		return 0, errProcessorNotReady
	}
	return p.pool.Push(t)
}

// Current returns the id of the running thread.
func (p *Processor) Current() (TaskID, bool) {
	return p.currentID, p.hasCurrent
}

// Idle is the body of the idle thread. It never returns.
func (p *Processor) Idle() {
	for {
		p.schedule()
	}
}

// schedule runs the next ready thread until it switches back to the idle
// thread, or waits for an interrupt if no thread is ready.
func (p *Processor) schedule() {
	disableInterruptsFn()

	tid, t, ok := p.pool.Pick()
	if !ok {
		enableAndWaitFn()
		return
	}

	p.current, p.currentID, p.hasCurrent = t, tid, true
	p.idle.Switch(t)
	p.current, p.hasCurrent = nil, false

	p.pool.Yield(tid, t)
}

// Tick is called on every timer interrupt. If the running thread used up its
// time slice it is suspended here and the idle thread resumes; the thread
// continues from this point the next time it is picked.
func (p *Processor) Tick() {
	if !p.hasCurrent {
		return
	}

	if p.pool.Tick() {
		flags := disableInterruptsFn()
		p.current.Switch(p.idle)
		restoreInterruptsFn(flags)
	}
}

// Exit terminates the running thread with the given code. It does not return.
func (p *Processor) Exit(code uintptr) {
	disableInterruptsFn()
	if !p.hasCurrent {
		panicFn(errNoCurrentThread)
		return
	}

	kfmt.Printf("[sched] task %d exited with code %d\n", int(p.currentID), uint64(code))
	p.pool.Exit(p.currentID, code)
	p.current.Switch(p.idle)

	panicFn(errExitReturned)
}

// Run leaves the boot stack and starts the idle thread.
func (p *Processor) Run() {
	if p.idle == nil {
		panicFn(errProcessorNotReady)
		return
	}
	BootThread().Switch(p.idle)
}
