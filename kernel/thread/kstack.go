package thread

import (
	"unsafe"

	"rvkern/kernel/sync"
)

// stackCache holds the memory of released stacks. The collector does not run
// in the kernel so released stacks are recycled here instead of being dropped.
var stackCache struct {
	lock sync.Spinlock
	free [][]byte
}

// KStack is the kernel stack of a thread.
type KStack struct {
	mem []byte
}

// NewKStack returns a KStackSize stack, reusing a released one if available.
func NewKStack() KStack {
	var mem []byte

	flags := stackCache.lock.AcquireIRQ()
	if n := len(stackCache.free); n > 0 {
		mem = stackCache.free[n-1]
		stackCache.free[n-1] = nil
		stackCache.free = stackCache.free[:n-1]
	}
	stackCache.lock.ReleaseIRQ(flags)

	if mem == nil {
		mem = make([]byte, KStackSize)
	}
	return KStack{mem: mem}
}

// Bottom returns the lowest address of the stack or 0 if no memory is
// attached to it.
func (s *KStack) Bottom() uintptr {
	if s.mem == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(&s.mem[0]))
}

// Top returns the address just past the end of the stack or 0 if no memory
// is attached to it.
func (s *KStack) Top() uintptr {
	if s.mem == nil {
		return 0
	}
	return s.Bottom() + uintptr(len(s.mem))
}

// Release hands the stack memory back to the stack cache. Calling Release
// more than once has no effect.
func (s *KStack) Release() {
	if s.mem == nil {
		return
	}

	flags := stackCache.lock.AcquireIRQ()
	if stackCache.free == nil {
		stackCache.free = make([][]byte, 0, MaxTasks)
	}
	stackCache.free = append(stackCache.free, s.mem)
	stackCache.lock.ReleaseIRQ(flags)

	s.mem = nil
}
