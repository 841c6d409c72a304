package vmm

const (
	// pageLevels is the number of table levels walked by Sv39.
	pageLevels = 3

	// ptePPNShift is the position of the physical page number in a page
	// table entry.
	ptePPNShift = 10

	// ptePPNMask selects the 44-bit physical page number of an entry.
	ptePPNMask = uintptr((1<<44)-1) << ptePPNShift
)

// pageLevelShifts is the shift that extracts the table index of each level
// from a virtual address, root first.
var pageLevelShifts = [pageLevels]uint8{
	30,
	21,
	12,
}

const (
	// FlagValid is set when the entry holds a translation or points to a
	// next-level table.
	FlagValid PageTableEntryFlag = 1 << iota

	// FlagReadable is set if the page can be read.
	FlagReadable

	// FlagWritable is set if the page can be written to.
	FlagWritable

	// FlagExecutable is set if instructions can be fetched from the page.
	FlagExecutable

	// FlagUser is set if user mode can access the page.
	FlagUser

	// FlagGlobal marks a translation that exists in every address space.
	FlagGlobal

	// FlagAccessed is set when the page has been accessed.
	FlagAccessed

	// FlagDirty is set when the page has been written.
	FlagDirty

	// FlagReserved1 and FlagReserved2 are the two bits left for software.
	FlagReserved1
	FlagReserved2
)

// flagLeafMask selects the permission bits whose presence turns an entry into
// a leaf.
const flagLeafMask = FlagReadable | FlagWritable | FlagExecutable
