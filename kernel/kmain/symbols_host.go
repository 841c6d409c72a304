//go:build !riscv64

package kmain

import "rvkern/kernel/mm"

// readSectionSymbols describes a 2MiB kernel image linked at
// mm.KernelBeginVAddr. Host builds have no linker script.
func readSectionSymbols(s *sectionSymbols) {
	base := uintptr(mm.KernelBeginVAddr)
	*s = sectionSymbols{
		stext: base, etext: base + 0x40000,
		srodata: base + 0x40000, erodata: base + 0x60000,
		sdata: base + 0x60000, edata: base + 0x70000,
		sbss: base + 0x70000, ebss: base + 0x200000,
		end: base + 0x200000,
	}
}
