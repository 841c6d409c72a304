package vmm

import (
	"unsafe"

	"rvkern/kernel"
	"rvkern/kernel/mm"
)

// Table is one page-sized level of the Sv39 hierarchy.
type Table [mm.PageTableEntries]PageTableEntry

// Clear marks every entry of the table as unused.
func (t *Table) Clear() {
	kernel.Memset(uintptr(unsafe.Pointer(t)), 0, mm.PageSize)
}
