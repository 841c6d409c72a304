package thread

import (
	"rvkern/kernel"
	"rvkern/kernel/sync"
)

// Status is the state of a thread pool slot.
type Status uint8

const (
	// StatusUninitialized marks a slot that never held a thread.
	StatusUninitialized Status = iota

	// StatusReady marks a thread waiting to be picked.
	StatusReady

	// StatusRunning marks the thread currently executing.
	StatusRunning

	// StatusSleeping marks a thread that is neither queued nor running.
	StatusSleeping

	// StatusExited marks a finished thread. Its slot can be reused.
	StatusExited
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusSleeping:
		return "sleeping"
	case StatusExited:
		return "exited"
	default:
		return "uninitialized"
	}
}

// ErrPoolFull is returned when every slot of the pool holds a live thread.
var ErrPoolFull = &kernel.Error{Module: "thread", Message: "thread pool is full"}

type slot struct {
	status Status
	code   uintptr
	thread *Thread
}

// ThreadPool owns the threads known to the kernel and tracks their status. A
// thread is handed out by Pick while it runs and returned with Yield.
type ThreadPool struct {
	lock      sync.Spinlock
	slots     []slot
	scheduler Scheduler
}

// NewThreadPool returns a pool with the given number of slots.
func NewThreadPool(capacity int, scheduler Scheduler) *ThreadPool {
	return &ThreadPool{
		slots:     make([]slot, capacity),
		scheduler: scheduler,
	}
}

// Push stores t in the first free slot and makes it schedulable. The thread
// previously held by a reused slot is destroyed.
func (p *ThreadPool) Push(t *Thread) (TaskID, *kernel.Error) {
	flags := p.lock.AcquireIRQ()

	for i := range p.slots {
		s := &p.slots[i]
		if s.status != StatusUninitialized && s.status != StatusExited {
			continue
		}

		if s.thread != nil {
			s.thread.Destroy()
		}
		*s = slot{status: StatusReady, thread: t}

		tid := TaskID(i)
		p.scheduler.Push(tid)
		p.lock.ReleaseIRQ(flags)
		return tid, nil
	}

	p.lock.ReleaseIRQ(flags)
	return 0, ErrPoolFull
}

// Pick returns the next thread to run and marks it as running.
func (p *ThreadPool) Pick() (TaskID, *Thread, bool) {
	flags := p.lock.AcquireIRQ()

	tid, ok := p.scheduler.Pick()
	if !ok {
		p.lock.ReleaseIRQ(flags)
		return 0, nil, false
	}

	s := &p.slots[tid]
	t := s.thread
	s.status, s.thread = StatusRunning, nil

	p.lock.ReleaseIRQ(flags)
	return tid, t, true
}

// Yield returns a thread obtained by Pick to the pool. If it is still running
// it becomes ready again.
func (p *ThreadPool) Yield(tid TaskID, t *Thread) {
	flags := p.lock.AcquireIRQ()

	s := &p.slots[tid]
	switch {
	case s.status == StatusRunning:
		s.status, s.thread = StatusReady, t
		p.scheduler.Yield(tid)
	case s.status == StatusExited && s.thread == nil:
		// Kept until the slot is reused; t may still be using its stack.
		s.thread = t
	}

	p.lock.ReleaseIRQ(flags)
}

// Tick forwards a timer tick to the scheduler and reports whether the running
// thread used up its time slice.
func (p *ThreadPool) Tick() bool {
	flags := p.lock.AcquireIRQ()
	timeUp := p.scheduler.Tick()
	p.lock.ReleaseIRQ(flags)
	return timeUp
}

// Exit marks tid as exited with the given code.
func (p *ThreadPool) Exit(tid TaskID, code uintptr) {
	flags := p.lock.AcquireIRQ()
	p.slots[tid].status, p.slots[tid].code = StatusExited, code
	p.scheduler.Exit(tid)
	p.lock.ReleaseIRQ(flags)
}

// Status returns the status of tid and, for exited threads, the exit code.
func (p *ThreadPool) Status(tid TaskID) (Status, uintptr) {
	if tid < 0 || int(tid) >= len(p.slots) {
		return StatusUninitialized, 0
	}

	flags := p.lock.AcquireIRQ()
	s := p.slots[tid]
	p.lock.ReleaseIRQ(flags)

	return s.status, s.code
}

// RunningCount returns the number of slots marked as running.
func (p *ThreadPool) RunningCount() int {
	flags := p.lock.AcquireIRQ()
	count := 0
	for i := range p.slots {
		if p.slots[i].status == StatusRunning {
			count++
		}
	}
	p.lock.ReleaseIRQ(flags)

	return count
}
