package vmm

import (
	"rvkern/kernel/cpu"
	"rvkern/kernel/mm"
)

// flushTLBEntryFn is used by tests to override calls to cpu.FlushTLBEntry.
var flushTLBEntryFn = cpu.FlushTLBEntry

// Flush is returned by every operation that changes a translation. Callers
// invoke Flush when the edited hierarchy is the active one, or Ignore when it
// is not (for example while it is still being built); a full flush issued
// when switching hierarchies covers those pages.
type Flush struct {
	page mm.Page
}

// Flush invalidates the cached translation of the affected page.
func (f Flush) Flush() {
	flushTLBEntryFn(uintptr(f.page.Address()))
}

// Ignore discards the pending flush.
func (f Flush) Ignore() {}
