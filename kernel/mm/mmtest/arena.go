// Package mmtest provides simulated physical memory for tests of the memory
// management packages.
//
// An Arena is a page-aligned anonymous mapping in the test process. Its pages
// act as physical frames whose physical address equals their host address, so
// page tables built inside it can be walked with a linear offset of zero.
package mmtest

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"rvkern/kernel"
	"rvkern/kernel/mm"
	"rvkern/kernel/mm/pmm"
)

// Arena is a block of simulated physical memory with its own frame allocator.
type Arena struct {
	mem       []byte
	allocator *pmm.SegmentTree
	frames    uint

	// LinearOffset is the offset page tables must use to reach the
	// arena's frames.
	LinearOffset uintptr
}

// NewArena maps an arena of the given number of frames. The caller must call
// Close to release it.
func NewArena(frames int) (*Arena, error) {
	mem, err := unix.Mmap(-1, 0, frames*int(mm.PageSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	a := &Arena{mem: mem, frames: uint(frames)}
	base := a.Base()
	a.allocator = pmm.NewSegmentTree(make([]uint64, pmm.BitsetWords(a.frames)), base, a.frames)
	if kerr := a.allocator.Init(base, base+mm.Frame(frames)); kerr != nil {
		unix.Munmap(mem)
		return nil, kerr
	}

	return a, nil
}

// Base returns the first frame of the arena.
func (a *Arena) Base() mm.Frame {
	return mm.FrameFromAddress(mm.PhysAddr(uintptr(unsafe.Pointer(&a.mem[0]))))
}

// Contains returns true if the frame belongs to the arena.
func (a *Arena) Contains(f mm.Frame) bool {
	return f >= a.Base() && f < a.Base()+mm.Frame(a.frames)
}

// Allocated returns the number of arena frames currently handed out.
func (a *Arena) Allocated() uint {
	return a.allocator.Allocated()
}

// AllocFrame reserves a frame from the arena.
func (a *Arena) AllocFrame() (mm.Frame, *kernel.Error) {
	frame, ok := a.allocator.Alloc()
	if !ok {
		return mm.InvalidFrame, pmm.ErrOutOfMemory
	}
	return frame, nil
}

// FreeFrame returns a frame to the arena.
func (a *Arena) FreeFrame(f mm.Frame) {
	a.allocator.Dealloc(f)
}

// Install registers the arena as the frame allocator of the mm package. The
// returned function unregisters it.
func (a *Arena) Install() func() {
	mm.SetFrameAllocator(a.AllocFrame)
	mm.SetFrameDeallocator(a.FreeFrame)
	return func() {
		mm.SetFrameAllocator(nil)
		mm.SetFrameDeallocator(nil)
	}
}

// Bytes returns the contents of a frame.
func (a *Arena) Bytes(f mm.Frame) []byte {
	offset := uintptr(f-a.Base()) * mm.PageSize
	return a.mem[offset : offset+mm.PageSize]
}

// Close unmaps the arena.
func (a *Arena) Close() error {
	return unix.Munmap(a.mem)
}
