// Package pmm manages physical memory frames.
package pmm

import (
	"rvkern/kernel"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/mm"
	"rvkern/kernel/sync"
)

// frameAllocatorWords sizes the bitset of the kernel's frame allocator so it
// covers every frame of DRAM. MaxPhysFrames is a power of 2.
const frameAllocatorWords = 2 * mm.MaxPhysFrames / 64

var (
	// frameAllocator is the allocator used by the kernel. Its bitset lives
	// in the kernel image so no memory needs to be allocated to set it up.
	frameAllocator     SegmentTree
	frameAllocatorBits [frameAllocatorWords]uint64
	frameAllocatorLock sync.Spinlock

	// ErrOutOfMemory is returned when no free frame is left.
	ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of physical memory"}
)

// Init sets up the kernel frame allocator so that it hands out the frames in
// [lo, hi) and registers it with the mm package.
func Init(lo, hi mm.Frame) *kernel.Error {
	frameAllocator.setup(frameAllocatorBits[:], mm.PhysMemBegin.Frame(), uint(mm.MaxPhysFrames))
	if err := frameAllocator.Init(lo, hi); err != nil {
		return err
	}

	kfmt.Printf("[pmm] usable frames: [0x%x, 0x%x) (%d KiB)\n",
		uintptr(lo), uintptr(hi), uint64(hi-lo)*uint64(mm.PageSize)/1024,
	)

	mm.SetFrameAllocator(AllocFrame)
	mm.SetFrameDeallocator(FreeFrame)
	return nil
}

// AllocFrame reserves a frame from the kernel frame allocator.
func AllocFrame() (mm.Frame, *kernel.Error) {
	flags := frameAllocatorLock.AcquireIRQ()
	frame, ok := frameAllocator.Alloc()
	frameAllocatorLock.ReleaseIRQ(flags)

	if !ok {
		return mm.InvalidFrame, ErrOutOfMemory
	}
	return frame, nil
}

// FreeFrame returns a frame to the kernel frame allocator.
func FreeFrame(frame mm.Frame) {
	flags := frameAllocatorLock.AcquireIRQ()
	frameAllocator.Dealloc(frame)
	frameAllocatorLock.ReleaseIRQ(flags)
}
