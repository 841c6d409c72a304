package memset

import (
	"rvkern/kernel"
	"rvkern/kernel/mm"
	"rvkern/kernel/mm/vmm"
)

// MemArea is a contiguous virtual range [begin, end) whose pages share a
// handler and a set of permissions.
type MemArea struct {
	begin, end mm.VirtAddr
	pages      mm.PageRange
	handler    Handler
	attrib     MemAttrib

	// seq orders areas that start on the same page.
	seq uint64
}

func newMemArea(begin, end mm.VirtAddr, handler Handler, attrib MemAttrib) *MemArea {
	return &MemArea{
		begin:   begin,
		end:     end,
		pages:   mm.NewPageRange(begin, end),
		handler: handler,
		attrib:  attrib,
	}
}

// Begin returns the first address of the area.
func (a *MemArea) Begin() mm.VirtAddr { return a.begin }

// End returns the address past the end of the area.
func (a *MemArea) End() mm.VirtAddr { return a.end }

// Pages returns the pages covered by the area.
func (a *MemArea) Pages() mm.PageRange { return a.pages }

// Handler returns the area's mapping strategy.
func (a *MemArea) Handler() Handler { return a.handler }

// Attrib returns the area's permissions.
func (a *MemArea) Attrib() MemAttrib { return a.attrib }

// Overlaps returns true if [begin, end) shares a page with the area.
func (a *MemArea) Overlaps(begin, end mm.VirtAddr) bool {
	return a.pages.Overlaps(mm.NewPageRange(begin, end))
}

// Map installs every page of the area into pt. If a page cannot be mapped
// the pages mapped so far are removed again before the error is returned.
func (a *MemArea) Map(pt *vmm.PageTable) *kernel.Error {
	for page := a.pages.Start; page < a.pages.End; page++ {
		if err := a.handler.Map(pt, page.Address(), a.attrib); err != nil {
			for mapped := a.pages.Start; mapped < page; mapped++ {
				a.handler.Unmap(pt, mapped.Address())
			}
			return err
		}
	}
	return nil
}

// Unmap removes every page of the area from pt.
func (a *MemArea) Unmap(pt *vmm.PageTable) {
	for page := a.pages.Start; page < a.pages.End; page++ {
		a.handler.Unmap(pt, page.Address())
	}
}

// less orders areas by their first page.
func less(a, b *MemArea) bool {
	if a.pages.Start != b.pages.Start {
		return a.pages.Start < b.pages.Start
	}
	return a.seq < b.seq
}
