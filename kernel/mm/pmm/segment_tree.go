package pmm

import (
	"rvkern/kernel"
	"rvkern/kernel/mm"
)

var errInvalidRange = &kernel.Error{Module: "pmm", Message: "usable frame range does not fit the allocator"}

// SegmentTree is a physical frame allocator backed by a complete binary tree
// of occupancy bits. Each leaf tracks a single frame; an internal node is set
// when both of its children are set, so a clear root means at least one frame
// is free and a free leaf can always be reached by descending towards clear
// children.
//
// The tree is stored in a flat bitset: node 1 is the root, node i has
// children 2i and 2i+1 and the leaves occupy [capacity, 2*capacity). Leaf
// capacity+k tracks frame base+k.
type SegmentTree struct {
	bits []uint64

	// base is the frame tracked by the first leaf.
	base mm.Frame

	// capacity is the number of leaves; always a power of 2.
	capacity uint

	// [lo, hi) is the usable frame range passed to Init.
	lo, hi mm.Frame

	allocated uint
}

// BitsetWords returns the number of 64-bit words needed to back a tree that
// covers frameCount frames.
func BitsetWords(frameCount uint) uint {
	return (2*roundUpPow2(frameCount) + 63) / 64
}

// NewSegmentTree returns an allocator that can manage up to frameCount frames
// starting at base. Its bitset is taken from bits, which must hold at least
// BitsetWords(frameCount) words. The allocator has no usable frames until
// Init is called.
func NewSegmentTree(bits []uint64, base mm.Frame, frameCount uint) *SegmentTree {
	t := &SegmentTree{}
	t.setup(bits, base, frameCount)
	return t
}

func (t *SegmentTree) setup(bits []uint64, base mm.Frame, frameCount uint) {
	t.bits = bits[:BitsetWords(frameCount)]
	t.base = base
	t.capacity = roundUpPow2(frameCount)
	t.lo, t.hi = base, base
	t.allocated = 0
	for i := range t.bits {
		t.bits[i] = ^uint64(0)
	}
}

// Init makes the frames in [lo, hi) available for allocation and marks every
// other leaf as permanently occupied. Any previous allocation state is lost.
func (t *SegmentTree) Init(lo, hi mm.Frame) *kernel.Error {
	if lo > hi || lo < t.base || uint(hi-t.base) > t.capacity {
		return errInvalidRange
	}

	for i := range t.bits {
		t.bits[i] = 0
	}

	for leaf := uint(0); leaf < t.capacity; leaf++ {
		if frame := t.base + mm.Frame(leaf); frame < lo || frame >= hi {
			t.set(t.capacity + leaf)
		}
	}

	for node := t.capacity - 1; node > 0; node-- {
		if t.isSet(2*node) && t.isSet(2*node+1) {
			t.set(node)
		}
	}

	t.lo, t.hi = lo, hi
	t.allocated = 0
	return nil
}

// Alloc reserves the lowest free frame. It returns false if every frame is
// occupied.
func (t *SegmentTree) Alloc() (mm.Frame, bool) {
	if t.capacity == 0 || t.isSet(1) {
		return mm.InvalidFrame, false
	}

	node := uint(1)
	for node < t.capacity {
		node *= 2
		if t.isSet(node) {
			node++
		}
	}

	t.set(node)
	for p := node; p > 1 && t.isSet(p^1); p /= 2 {
		t.set(p / 2)
	}

	t.allocated++
	return t.base + mm.Frame(node-t.capacity), true
}

// Dealloc returns a frame to the allocator. Frames outside the usable range
// and frames that are not currently allocated are ignored.
func (t *SegmentTree) Dealloc(frame mm.Frame) {
	if frame < t.lo || frame >= t.hi {
		return
	}

	node := t.capacity + uint(frame-t.base)
	if !t.isSet(node) {
		return
	}

	for ; node > 0; node /= 2 {
		t.clear(node)
	}

	t.allocated--
}

// Allocated returns the number of frames currently handed out.
func (t *SegmentTree) Allocated() uint { return t.allocated }

// Free returns the number of frames that can still be allocated.
func (t *SegmentTree) Free() uint { return uint(t.hi-t.lo) - t.allocated }

// Capacity returns the number of leaves in the tree.
func (t *SegmentTree) Capacity() uint { return t.capacity }

func (t *SegmentTree) isSet(node uint) bool {
	return t.bits[node/64]&(1<<(node%64)) != 0
}

func (t *SegmentTree) set(node uint) {
	t.bits[node/64] |= 1 << (node % 64)
}

func (t *SegmentTree) clear(node uint) {
	t.bits[node/64] &^= 1 << (node % 64)
}

func roundUpPow2(v uint) uint {
	n := uint(1)
	for n < v {
		n <<= 1
	}
	return n
}
