package mm

// Physical and virtual layout of the QEMU virt board the kernel is linked for.
// The boot code maps the kernel image at KernelBeginVAddr; the same fixed
// offset is later used to reach every page of physical memory.
const (
	// PhysMemBegin is the first byte of DRAM.
	PhysMemBegin = PhysAddr(0x80000000)

	// MaxPhysMem is the amount of DRAM managed by the kernel.
	MaxPhysMem = uintptr(128 << 20)

	// PhysMemEnd is the first byte past the end of DRAM.
	PhysMemEnd = PhysMemBegin + PhysAddr(MaxPhysMem)

	// MaxPhysFrames is the number of frames between PhysMemBegin and PhysMemEnd.
	MaxPhysFrames = MaxPhysMem >> PageShift

	// KernelBeginPAddr is where the firmware loads the kernel image.
	KernelBeginPAddr = PhysAddr(0x80200000)

	// KernelBeginVAddr is where the kernel image is linked.
	KernelBeginVAddr = VirtAddr(0xffffffffc0200000)

	// PhysMemOffset is the distance between a kernel virtual address and
	// the physical address backing it.
	PhysMemOffset = uintptr(KernelBeginVAddr) - uintptr(KernelBeginPAddr)
)
