package vmm

import (
	"unsafe"

	"rvkern/kernel"
	"rvkern/kernel/mm"
)

var (
	// tablePtrFn converts the virtual address of a page table into a
	// pointer. Tests override it to intercept table accesses.
	tablePtrFn = func(addr uintptr) unsafe.Pointer {
		return unsafe.Pointer(addr)
	}

	// ErrFrameAllocationFailed is returned when a frame for an intermediate
	// table cannot be allocated.
	ErrFrameAllocationFailed = &kernel.Error{Module: "vmm", Message: "unable to allocate frame for page table"}

	// ErrPageAlreadyMapped is returned by Map if the page has a translation.
	ErrPageAlreadyMapped = &kernel.Error{Module: "vmm", Message: "page is already mapped"}

	// ErrPageNotMapped is returned when a page has no translation.
	ErrPageNotMapped = &kernel.Error{Module: "vmm", Message: "page is not mapped"}

	errHugePage = &kernel.Error{Module: "vmm", Message: "page is covered by a huge page mapping"}

	errInvalidTableEntry = &kernel.Error{Module: "vmm", Message: "page table entry is neither unused nor valid"}
)

// Sv39 edits a three-level Sv39 page table hierarchy. The physical frames
// holding the tables are reached through linearOffset: the table stored in
// frame F is read and written at virtual address F.Address()+linearOffset.
type Sv39 struct {
	root         *Table
	linearOffset uintptr
}

// NewSv39 returns an Sv39 editor for the hierarchy rooted at root.
func NewSv39(root *Table, linearOffset uintptr) Sv39 {
	return Sv39{root: root, linearOffset: linearOffset}
}

// tableAt returns the table stored in the given frame.
func (s *Sv39) tableAt(frame mm.Frame) *Table {
	return (*Table)(tablePtrFn(uintptr(frame.Address()) + s.linearOffset))
}

// walk visits the entry that translates va at each level, root first. Before
// descending to the next level walkFn is invoked with the current level and
// entry; returning false stops the walk. The walk also stops at the leaf
// level and at any entry that does not point to a next-level table.
func (s *Sv39) walk(va mm.VirtAddr, walkFn func(level uint8, pte *PageTableEntry) bool) {
	table := s.root
	for level := uint8(0); level < pageLevels; level++ {
		pte := &table[(uintptr(va)>>pageLevelShifts[level])&(mm.PageTableEntries-1)]
		if !walkFn(level, pte) || level == pageLevels-1 {
			return
		}

		if !pte.HasFlags(FlagValid) || pte.IsLeaf() {
			return
		}
		table = s.tableAt(pte.Frame())
	}
}

// Map installs a translation from page to frame. Missing intermediate tables
// are allocated through mm.AllocFrame and cleared before they are linked into
// the hierarchy. A page that already has a translation is never overwritten.
//
// The returned Flush must be used to invalidate the page's cached translation
// if this hierarchy is active.
func (s *Sv39) Map(page mm.Page, frame mm.Frame, flags PageTableEntryFlag) (Flush, *kernel.Error) {
	var err *kernel.Error

	s.walk(page.Address(), func(level uint8, pte *PageTableEntry) bool {
		if level == pageLevels-1 {
			if !pte.IsUnused() {
				err = ErrPageAlreadyMapped
				return false
			}
			pte.Set(frame, flags)
			return true
		}

		if pte.IsUnused() {
			tableFrame, allocErr := mm.AllocFrame()
			if allocErr != nil {
				err = ErrFrameAllocationFailed
				return false
			}

			// Intermediate entries carry no permission bits so the
			// hardware treats them as pointers to the next level.
			s.tableAt(tableFrame).Clear()
			*pte = 0
			pte.SetFrame(tableFrame)
			pte.SetFlags(FlagValid)
			return true
		}

		if !pte.HasFlags(FlagValid) {
			err = errInvalidTableEntry
			return false
		}

		if pte.IsLeaf() {
			err = errHugePage
			return false
		}

		return true
	})

	if err != nil {
		return Flush{}, err
	}
	return Flush{page: page}, nil
}

// Entry returns the leaf entry translating page. It fails with
// ErrPageNotMapped if the leaf or any table above it is missing.
func (s *Sv39) Entry(page mm.Page) (*PageTableEntry, *kernel.Error) {
	var (
		entry *PageTableEntry
		err   = ErrPageNotMapped
	)

	s.walk(page.Address(), func(level uint8, pte *PageTableEntry) bool {
		switch {
		case pte.IsUnused():
			return false
		case level == pageLevels-1:
			entry, err = pte, nil
		case pte.IsLeaf():
			err = errHugePage
			return false
		}
		return true
	})

	return entry, err
}

// Unmap removes the translation of page and returns the frame it pointed to.
// Intermediate tables are left in place even if they become empty.
func (s *Sv39) Unmap(page mm.Page) (mm.Frame, Flush, *kernel.Error) {
	pte, err := s.Entry(page)
	if err != nil {
		return mm.InvalidFrame, Flush{}, err
	}

	frame := pte.Frame()
	pte.SetUnused()
	return frame, Flush{page: page}, nil
}

// UpdateFlags replaces the flags of the leaf entry translating page while
// keeping its frame.
func (s *Sv39) UpdateFlags(page mm.Page, flags PageTableEntryFlag) (Flush, *kernel.Error) {
	pte, err := s.Entry(page)
	if err != nil {
		return Flush{}, err
	}

	pte.ReplaceFlags(flags)
	return Flush{page: page}, nil
}

// Translate returns the frame that page is mapped to.
func (s *Sv39) Translate(page mm.Page) (mm.Frame, bool) {
	pte, err := s.Entry(page)
	if err != nil {
		return mm.InvalidFrame, false
	}
	return pte.Frame(), true
}

// Identity maps frame at the virtual page with the same number.
func (s *Sv39) Identity(frame mm.Frame, flags PageTableEntryFlag) (Flush, *kernel.Error) {
	return s.Map(mm.Page(frame), frame, flags)
}
