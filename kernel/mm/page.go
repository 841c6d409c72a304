package mm

import (
	"math"

	"rvkern/kernel"
)

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical address of the first byte of this frame.
func (f Frame) Address() PhysAddr {
	return PhysAddr(f << PageShift)
}

// FrameFromAddress returns the Frame containing the given physical address.
// Addresses that are not page-aligned are rounded down.
func FrameFromAddress(physAddr PhysAddr) Frame {
	return physAddr.Frame()
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual address of the first byte of this page.
func (p Page) Address() VirtAddr {
	return VirtAddr(p << PageShift)
}

// PageFromAddress returns the Page containing the given virtual address.
// Addresses that are not page-aligned are rounded down.
func PageFromAddress(virtAddr VirtAddr) Page {
	return virtAddr.Page()
}

// PageRange is the half-open range of pages [Start, End).
type PageRange struct {
	Start, End Page
}

// NewPageRange returns the pages touched by the byte range [begin, end): the
// first page is rounded down and the last one up.
func NewPageRange(begin, end VirtAddr) PageRange {
	r := PageRange{Start: begin.Page(), End: begin.Page()}
	if end > begin {
		r.End = (end - 1).Page() + 1
	}
	return r
}

// Len returns the number of pages in the range.
func (r PageRange) Len() uintptr {
	return uintptr(r.End - r.Start)
}

// Overlaps returns true if the two ranges share at least one page.
func (r PageRange) Overlaps(other PageRange) bool {
	if r.Len() == 0 || other.Len() == 0 {
		return false
	}
	return r.Start < other.End && other.Start < r.End
}

var (
	frameAllocator   FrameAllocatorFn
	frameDeallocator FrameDeallocatorFn
)

// FrameAllocatorFn is a function that can allocate physical frames.
type FrameAllocatorFn func() (Frame, *kernel.Error)

// FrameDeallocatorFn is a function that returns a frame to its allocator.
type FrameDeallocatorFn func(Frame)

// SetFrameAllocator registers a frame allocator function that will be used by
// the vmm code when new physical frames need to be allocated.
func SetFrameAllocator(allocFn FrameAllocatorFn) { frameAllocator = allocFn }

// SetFrameDeallocator registers the function that takes frames back.
func SetFrameDeallocator(freeFn FrameDeallocatorFn) { frameDeallocator = freeFn }

// AllocFrame allocates a new physical frame using the currently active
// physical frame allocator.
func AllocFrame() (Frame, *kernel.Error) { return frameAllocator() }

// FreeFrame returns a frame to the currently active physical frame allocator.
func FreeFrame(f Frame) { frameDeallocator(f) }
