package vmm

import "rvkern/kernel/mm"

// PageTableEntryFlag describes a flag that can be applied to a page table entry.
type PageTableEntryFlag uintptr

// PageTableEntry is a single Sv39 page table entry: a 44-bit physical page
// number at bit 10 and the flag bits below it.
type PageTableEntry uintptr

// IsUnused returns true if the entry is all zeroes.
func (pte PageTableEntry) IsUnused() bool {
	return pte == 0
}

// SetUnused clears the entry.
func (pte *PageTableEntry) SetUnused() {
	*pte = 0
}

// IsLeaf returns true if the entry maps a page rather than pointing to a
// next-level table.
func (pte PageTableEntry) IsLeaf() bool {
	return pte.HasAnyFlag(flagLeafMask)
}

// Flags returns the flag bits of the entry.
func (pte PageTableEntry) Flags() PageTableEntryFlag {
	return PageTableEntryFlag(uintptr(pte) &^ ptePPNMask)
}

// HasFlags returns true if this entry has all the input flags set.
func (pte PageTableEntry) HasFlags(flags PageTableEntryFlag) bool {
	return (uintptr(pte) & uintptr(flags)) == uintptr(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags set.
func (pte PageTableEntry) HasAnyFlag(flags PageTableEntryFlag) bool {
	return (uintptr(pte) & uintptr(flags)) != 0
}

// SetFlags sets the input list of flags to the page table entry.
func (pte *PageTableEntry) SetFlags(flags PageTableEntryFlag) {
	*pte = (PageTableEntry)(uintptr(*pte) | uintptr(flags))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *PageTableEntry) ClearFlags(flags PageTableEntryFlag) {
	*pte = (PageTableEntry)(uintptr(*pte) &^ uintptr(flags))
}

// ReplaceFlags keeps the frame of the entry and replaces all of its flags.
func (pte *PageTableEntry) ReplaceFlags(flags PageTableEntryFlag) {
	*pte = (PageTableEntry)((uintptr(*pte) & ptePPNMask) | (uintptr(flags) &^ ptePPNMask))
}

// Frame returns the physical frame that this entry points to.
func (pte PageTableEntry) Frame() mm.Frame {
	return mm.Frame((uintptr(pte) & ptePPNMask) >> ptePPNShift)
}

// SetFrame updates the entry to point to the given physical frame.
func (pte *PageTableEntry) SetFrame(frame mm.Frame) {
	*pte = (PageTableEntry)((uintptr(*pte) &^ ptePPNMask) | (uintptr(frame)<<ptePPNShift)&ptePPNMask)
}

// Set points the entry at frame with the given flags. The accessed and dirty
// bits are always set: the hardware may fault instead of setting them itself.
func (pte *PageTableEntry) Set(frame mm.Frame, flags PageTableEntryFlag) {
	*pte = 0
	pte.SetFrame(frame)
	pte.SetFlags(flags | FlagAccessed | FlagDirty)
}
