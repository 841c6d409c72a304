package vmm

import (
	"rvkern/kernel"
	"rvkern/kernel/cpu"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/mm"
)

var (
	// activeSATPFn is used by tests to override calls to cpu.ActiveSATP.
	activeSATPFn = cpu.ActiveSATP

	// switchSATPFn is used by tests to override calls to cpu.SwitchSATP.
	switchSATPFn = cpu.SwitchSATP
)

// PageTable owns an Sv39 hierarchy whose root lives in an allocated frame.
// Every change made through a PageTable is flushed immediately.
type PageTable struct {
	sv39      Sv39
	rootFrame mm.Frame
}

// NewPageTable allocates and clears a root table. linearOffset is the offset
// at which physical frames can be accessed (see Sv39).
func NewPageTable(linearOffset uintptr) (*PageTable, *kernel.Error) {
	rootFrame, err := mm.AllocFrame()
	if err != nil {
		return nil, ErrFrameAllocationFailed
	}

	pt := &PageTable{
		sv39:      Sv39{linearOffset: linearOffset},
		rootFrame: rootFrame,
	}
	pt.sv39.root = pt.sv39.tableAt(rootFrame)
	pt.sv39.root.Clear()

	return pt, nil
}

// RootFrame returns the frame holding the root table.
func (pt *PageTable) RootFrame() mm.Frame {
	return pt.rootFrame
}

// Map establishes a translation from the page containing va to frame.
func (pt *PageTable) Map(va mm.VirtAddr, frame mm.Frame, flags PageTableEntryFlag) *kernel.Error {
	flush, err := pt.sv39.Map(va.Page(), frame, flags)
	if err != nil {
		return err
	}
	flush.Flush()
	return nil
}

// Identity maps frame at the virtual address equal to its physical address.
func (pt *PageTable) Identity(frame mm.Frame, flags PageTableEntryFlag) *kernel.Error {
	flush, err := pt.sv39.Identity(frame, flags)
	if err != nil {
		return err
	}
	flush.Flush()
	return nil
}

// Unmap removes the translation of the page containing va and returns the
// frame it pointed to. The frame is not released; that is up to the caller,
// which knows who owns it.
func (pt *PageTable) Unmap(va mm.VirtAddr) (mm.Frame, *kernel.Error) {
	frame, flush, err := pt.sv39.Unmap(va.Page())
	if err != nil {
		return mm.InvalidFrame, err
	}
	flush.Flush()
	return frame, nil
}

// Entry returns the leaf entry translating va.
func (pt *PageTable) Entry(va mm.VirtAddr) (PageEntry, bool) {
	pte, err := pt.sv39.Entry(va.Page())
	if err != nil {
		return PageEntry{}, false
	}
	return PageEntry{pte: pte, page: va.Page()}, true
}

// Translate returns the physical address that va maps to.
func (pt *PageTable) Translate(va mm.VirtAddr) (mm.PhysAddr, bool) {
	frame, ok := pt.sv39.Translate(va.Page())
	if !ok {
		return 0, false
	}
	return frame.Address() + mm.PhysAddr(va.PageOffset()), true
}

// SATP returns the satp value that activates this page table.
func (pt *PageTable) SATP() uintptr {
	return cpu.SATPModeSv39 | uintptr(pt.rootFrame)
}

// Activate installs this page table on the hart unless it is already active.
// Switching flushes every cached translation.
func (pt *PageTable) Activate() {
	satp := pt.SATP()
	if old := activeSATPFn(); old != satp {
		kfmt.Printf("[vmm] switching satp 0x%x -> 0x%x\n", old, satp)
		switchSATPFn(satp)
	}
}

// PageEntry is a handle to the leaf entry of a mapped page.
type PageEntry struct {
	pte  *PageTableEntry
	page mm.Page
}

// Page returns the virtual page translated by the entry.
func (e PageEntry) Page() mm.Page { return e.page }

// Frame returns the frame the page is mapped to.
func (e PageEntry) Frame() mm.Frame { return e.pte.Frame() }

// Flags returns the flag bits of the entry.
func (e PageEntry) Flags() PageTableEntryFlag { return e.pte.Flags() }

// Valid reports whether the entry holds a translation.
func (e PageEntry) Valid() bool { return e.pte.HasFlags(FlagValid) }

// Readable reports whether the page can be read.
func (e PageEntry) Readable() bool { return e.pte.HasFlags(FlagReadable) }

// Writable reports whether the page can be written.
func (e PageEntry) Writable() bool { return e.pte.HasFlags(FlagWritable) }

// Executable reports whether instructions can be fetched from the page.
func (e PageEntry) Executable() bool { return e.pte.HasFlags(FlagExecutable) }

// User reports whether the page is accessible from user mode.
func (e PageEntry) User() bool { return e.pte.HasFlags(FlagUser) }

// Global reports whether the translation exists in every address space.
func (e PageEntry) Global() bool { return e.pte.HasFlags(FlagGlobal) }

// Accessed reports whether the accessed bit of the entry is set.
func (e PageEntry) Accessed() bool { return e.pte.HasFlags(FlagAccessed) }

// Dirty reports whether the dirty bit of the entry is set.
func (e PageEntry) Dirty() bool { return e.pte.HasFlags(FlagDirty) }

// Update replaces the flags of the entry, keeping its frame. The caller is
// responsible for flushing.
func (e PageEntry) Update(flags PageTableEntryFlag) {
	e.pte.ReplaceFlags(flags)
}

// Flush invalidates the cached translation of the entry's page.
func (e PageEntry) Flush() {
	Flush{page: e.page}.Flush()
}
