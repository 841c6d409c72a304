package mm

import (
	"rvkern/kernel"
	"rvkern/kernel/kfmt"
)

var (
	// panicFn is overridden by tests.
	panicFn = kfmt.Panic

	errPhysAddrTooWide  = &kernel.Error{Module: "mm", Message: "physical address exceeds 56 bits"}
	errNonCanonicalAddr = &kernel.Error{Module: "mm", Message: "virtual address is not canonical"}
)

// PhysAddr is a physical address. Only the low PhysAddrBits bits may be set.
type PhysAddr uintptr

// NewPhysAddr returns v as a PhysAddr. It panics if v is wider than 56 bits.
func NewPhysAddr(v uintptr) PhysAddr {
	pa := PhysAddr(v)
	if !pa.Valid() {
		panicFn(errPhysAddrTooWide)
	}
	return pa
}

// Valid returns true if no bit at or above PhysAddrBits is set.
func (pa PhysAddr) Valid() bool {
	return uintptr(pa)>>PhysAddrBits == 0
}

// Frame returns the frame containing this address.
func (pa PhysAddr) Frame() Frame {
	return Frame(pa >> PageShift)
}

// PageOffset returns the offset of this address within its frame.
func (pa PhysAddr) PageOffset() uintptr {
	return uintptr(pa) & (PageSize - 1)
}

// VirtAddr is an Sv39 virtual address.
type VirtAddr uintptr

// NewVirtAddr returns v as a VirtAddr. It panics if v is not canonical.
func NewVirtAddr(v uintptr) VirtAddr {
	va := VirtAddr(v)
	if !va.Canonical() {
		panicFn(errNonCanonicalAddr)
	}
	return va
}

// Canonical returns true if bits 39..63 of the address all equal bit 38.
func (va VirtAddr) Canonical() bool {
	top := uintptr(va) >> (VirtAddrBits - 1)
	return top == 0 || top == ^uintptr(0)>>(VirtAddrBits-1)
}

// Page returns the page containing this address.
func (va VirtAddr) Page() Page {
	return Page(va >> PageShift)
}

// PageOffset returns the offset of this address within its page.
func (va VirtAddr) PageOffset() uintptr {
	return uintptr(va) & (PageSize - 1)
}

// P3Index returns the index into the root table (bits 30..38).
func (va VirtAddr) P3Index() uint {
	return uint(va>>30) & (PageTableEntries - 1)
}

// P2Index returns the index into the second level table (bits 21..29).
func (va VirtAddr) P2Index() uint {
	return uint(va>>21) & (PageTableEntries - 1)
}

// P1Index returns the index into the leaf table (bits 12..20).
func (va VirtAddr) P1Index() uint {
	return uint(va>>12) & (PageTableEntries - 1)
}
