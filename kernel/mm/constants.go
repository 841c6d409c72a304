package mm

const (
	// PageShift is equal to log2(PageSize). This constant is used when
	// we need to convert a physical address to a page number (shift right by PageShift)
	// and vice-versa.
	PageShift = 12

	// PageSize defines the system's page size in bytes.
	PageSize = uintptr(1 << PageShift)

	// PageTableEntries is the number of entries in a page table at any level.
	PageTableEntries = 512

	// PhysAddrBits is the width of a valid physical address.
	PhysAddrBits = 56

	// VirtAddrBits is the width of the Sv39 virtual address space. Bits
	// 39..63 of a canonical address are copies of bit 38.
	VirtAddrBits = 39
)
