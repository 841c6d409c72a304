// Package memset assembles address spaces out of memory areas.
package memset

import (
	"github.com/google/btree"

	"rvkern/kernel"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/mm"
	"rvkern/kernel/mm/vmm"
)

// btreeDegree is the branching factor of the area index.
const btreeDegree = 8

var (
	// panicFn is overridden by tests.
	panicFn = kfmt.Panic

	// ErrInvalidRange is raised when an area ends before it begins.
	ErrInvalidRange = &kernel.Error{Module: "memset", Message: "memory area ends before it begins"}

	// ErrAreaOverlap is raised when an area shares a page with an area
	// already in the set.
	ErrAreaOverlap = &kernel.Error{Module: "memset", Message: "memory area overlaps an existing area"}
)

// MemSet is an address space: a page table plus the areas mapped into it. No
// two areas share a page.
type MemSet struct {
	areas   *btree.BTreeG[*MemArea]
	pt      *vmm.PageTable
	nextSeq uint64
}

// New returns an empty MemSet whose page table frames are reached through
// linearOffset.
func New(linearOffset uintptr) (*MemSet, *kernel.Error) {
	pt, err := vmm.NewPageTable(linearOffset)
	if err != nil {
		return nil, err
	}

	return &MemSet{
		areas: btree.NewG[*MemArea](btreeDegree, less),
		pt:    pt,
	}, nil
}

// Push adds the area [begin, end) and maps all of its pages. Passing an
// inverted range or a range that overlaps an existing area is a kernel bug
// and panics before anything is mapped. An error is returned if the pages
// cannot be mapped; the set is left unchanged in that case.
func (ms *MemSet) Push(begin, end mm.VirtAddr, handler Handler, attrib MemAttrib) *kernel.Error {
	if begin > end {
		panicFn(ErrInvalidRange)
		return ErrInvalidRange
	}

	if ms.Overlaps(begin, end) {
		panicFn(ErrAreaOverlap)
		return ErrAreaOverlap
	}

	area := newMemArea(begin, end, handler, attrib)
	if err := area.Map(ms.pt); err != nil {
		return err
	}

	area.seq = ms.nextSeq
	ms.nextSeq++
	ms.areas.ReplaceOrInsert(area)
	return nil
}

// Overlaps returns true if [begin, end) shares a page with any area of the
// set.
func (ms *MemSet) Overlaps(begin, end mm.VirtAddr) bool {
	candidate := mm.NewPageRange(begin, end)
	if candidate.Len() == 0 {
		return false
	}

	// Areas are disjoint, so among the non-empty areas starting before the
	// candidate ends the one starting last also ends last. It is the only
	// area that needs checking.
	var overlaps bool
	pivot := &MemArea{pages: mm.PageRange{Start: candidate.End}}
	ms.areas.DescendLessOrEqual(pivot, func(area *MemArea) bool {
		if area.pages.Start >= candidate.End || area.pages.Len() == 0 {
			return true
		}
		overlaps = area.pages.Overlaps(candidate)
		return false
	})

	return overlaps
}

// Areas invokes fn for every area in ascending address order until fn
// returns false.
func (ms *MemSet) Areas(fn func(*MemArea) bool) {
	ms.areas.Ascend(btree.ItemIteratorG[*MemArea](fn))
}

// Len returns the number of areas in the set.
func (ms *MemSet) Len() int {
	return ms.areas.Len()
}

// PageTable returns the set's page table.
func (ms *MemSet) PageTable() *vmm.PageTable {
	return ms.pt
}

// Activate installs the set's page table on the hart.
func (ms *MemSet) Activate() {
	ms.pt.Activate()
}
