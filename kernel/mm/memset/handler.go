package memset

import (
	"rvkern/kernel"
	"rvkern/kernel/mm"
	"rvkern/kernel/mm/vmm"
)

// Handler decides which frame backs each page of a memory area.
type Handler interface {
	// Map installs the translation of the page containing va and applies
	// attrib to it.
	Map(pt *vmm.PageTable, va mm.VirtAddr, attrib MemAttrib) *kernel.Error

	// Unmap removes the translation of the page containing va.
	Unmap(pt *vmm.PageTable, va mm.VirtAddr)

	// Name identifies the strategy in diagnostics.
	Name() string
}

// Linear maps every page to the frame at a fixed distance below it: virtual
// address V is backed by physical address V-Offset.
type Linear struct {
	Offset uintptr
}

// Map implements Handler.
func (l Linear) Map(pt *vmm.PageTable, va mm.VirtAddr, attrib MemAttrib) *kernel.Error {
	frame := mm.PhysAddr(uintptr(va) - l.Offset).Frame()
	return mapAndApply(pt, va, frame, attrib)
}

// Unmap implements Handler. The frame is not owned by the handler so it is
// not released.
func (l Linear) Unmap(pt *vmm.PageTable, va mm.VirtAddr) {
	pt.Unmap(va)
}

// Name implements Handler.
func (Linear) Name() string { return "linear" }

// ByFrame backs every page with a freshly allocated frame which is released
// again when the page is unmapped.
type ByFrame struct{}

// Map implements Handler.
func (ByFrame) Map(pt *vmm.PageTable, va mm.VirtAddr, attrib MemAttrib) *kernel.Error {
	frame, err := mm.AllocFrame()
	if err != nil {
		return err
	}

	if err = mapAndApply(pt, va, frame, attrib); err != nil {
		mm.FreeFrame(frame)
		return err
	}
	return nil
}

// Unmap implements Handler.
func (ByFrame) Unmap(pt *vmm.PageTable, va mm.VirtAddr) {
	if frame, err := pt.Unmap(va); err == nil {
		mm.FreeFrame(frame)
	}
}

// Name implements Handler.
func (ByFrame) Name() string { return "frame" }

// mapAndApply installs a readable and writable translation and then lets
// attrib rewrite its permissions.
func mapAndApply(pt *vmm.PageTable, va mm.VirtAddr, frame mm.Frame, attrib MemAttrib) *kernel.Error {
	if err := pt.Map(va, frame, vmm.FlagValid|vmm.FlagReadable|vmm.FlagWritable); err != nil {
		return err
	}

	entry, _ := pt.Entry(va)
	attrib.Apply(entry)
	entry.Flush()
	return nil
}
