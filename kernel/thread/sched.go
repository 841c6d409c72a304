package thread

import "container/list"

// TaskID identifies a slot of the thread pool.
type TaskID int

// Scheduler decides which ready task runs next.
type Scheduler interface {
	// Push adds a task to the set of schedulable tasks.
	Push(TaskID)

	// Pick returns the task that should run next.
	Pick() (TaskID, bool)

	// Yield is called when a running task gives up the hart.
	Yield(TaskID)

	// Tick is called on every timer interrupt and returns true when the
	// time slice of the running task is used up.
	Tick() bool

	// Exit removes a finished task.
	Exit(TaskID)
}

type rrNode struct {
	tid   TaskID
	ticks int
}

// RoundRobin is a first-come first-served Scheduler where every task runs for
// at most a fixed number of ticks before the next one gets its turn.
//
// The running task stays at the front of the queue. Yield moves it to the
// back with a fresh time slice.
type RoundRobin struct {
	queue *list.List
	slice int
}

// NewRoundRobin returns a round-robin scheduler with time slices of the given
// number of ticks.
func NewRoundRobin(slice int) *RoundRobin {
	if slice < 1 {
		slice = 1
	}
	return &RoundRobin{queue: list.New(), slice: slice}
}

// Push appends tid to the back of the queue.
func (rr *RoundRobin) Push(tid TaskID) {
	rr.queue.PushBack(&rrNode{tid: tid, ticks: rr.slice})
}

// Pick returns the task at the front of the queue without dequeuing it.
func (rr *RoundRobin) Pick() (TaskID, bool) {
	front := rr.queue.Front()
	if front == nil {
		return 0, false
	}
	return front.Value.(*rrNode).tid, true
}

// Yield moves tid to the back of the queue. Unknown tasks are ignored.
func (rr *RoundRobin) Yield(tid TaskID) {
	if e := rr.find(tid); e != nil {
		node := e.Value.(*rrNode)
		if node.ticks == 0 {
			node.ticks = rr.slice
		}
		rr.queue.MoveToBack(e)
	}
}

// Tick consumes one tick of the task at the front of the queue.
func (rr *RoundRobin) Tick() bool {
	front := rr.queue.Front()
	if front == nil {
		return false
	}

	node := front.Value.(*rrNode)
	if node.ticks > 0 {
		node.ticks--
	}
	return node.ticks == 0
}

// Exit removes tid from the queue. Unknown tasks are ignored.
func (rr *RoundRobin) Exit(tid TaskID) {
	if e := rr.find(tid); e != nil {
		rr.queue.Remove(e)
	}
}

// Len returns the number of queued tasks.
func (rr *RoundRobin) Len() int {
	return rr.queue.Len()
}

func (rr *RoundRobin) find(tid TaskID) *list.Element {
	for e := rr.queue.Front(); e != nil; e = e.Next() {
		if e.Value.(*rrNode).tid == tid {
			return e
		}
	}
	return nil
}
