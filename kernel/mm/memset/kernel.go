package memset

import (
	"rvkern/kernel"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/mm"
)

// KernelLayout holds the section boundaries of the running kernel image as
// exported by the linker script.
type KernelLayout struct {
	TextStart, TextEnd     mm.VirtAddr
	RODataStart, RODataEnd mm.VirtAddr
	DataStart, DataEnd     mm.VirtAddr
	BSSStart, BSSEnd       mm.VirtAddr

	// KernelEnd is the first address past the kernel image.
	KernelEnd mm.VirtAddr

	// PhysMemEnd is the end of DRAM.
	PhysMemEnd mm.PhysAddr

	// Offset is the distance between kernel virtual addresses and the
	// physical addresses backing them.
	Offset uintptr
}

// AreaSpec describes one area of a planned address space.
type AreaSpec struct {
	Name       string
	Begin, End mm.VirtAddr
	Attrib     MemAttrib
}

var (
	attribRX = MemAttrib{Readable: true, Executable: true}
	attribR  = MemAttrib{Readable: true}
	attribRW = MemAttrib{Readable: true, Writable: true}
)

// KernelAreas returns the areas of the kernel address space: one per image
// section and a window over the physical memory that follows the image,
// starting on the page after KernelEnd. All of them are linearly mapped.
func KernelAreas(l KernelLayout) []AreaSpec {
	windowStart := (uintptr(l.KernelEnd)/uintptr(mm.PageSize) + 1) * uintptr(mm.PageSize)

	return []AreaSpec{
		{Name: "text", Begin: l.TextStart, End: l.TextEnd, Attrib: attribRX},
		{Name: "rodata", Begin: l.RODataStart, End: l.RODataEnd, Attrib: attribR},
		{Name: "data", Begin: l.DataStart, End: l.DataEnd, Attrib: attribRW},
		{Name: "bss", Begin: l.BSSStart, End: l.BSSEnd, Attrib: attribRW},
		{Name: "physmem", Begin: mm.VirtAddr(windowStart), End: mm.VirtAddr(uintptr(l.PhysMemEnd) + l.Offset), Attrib: attribRW},
	}
}

// CheckAreas verifies that a plan can be pushed into an empty MemSet: every
// range is ordered and no two ranges share a page.
func CheckAreas(specs []AreaSpec) *kernel.Error {
	for i, spec := range specs {
		if spec.Begin > spec.End {
			return ErrInvalidRange
		}

		pages := mm.NewPageRange(spec.Begin, spec.End)
		for _, other := range specs[:i] {
			if pages.Overlaps(mm.NewPageRange(other.Begin, other.End)) {
				return ErrAreaOverlap
			}
		}
	}
	return nil
}

// NewKernel builds the kernel address space described by l.
func NewKernel(l KernelLayout) (*MemSet, *kernel.Error) {
	ms, err := New(l.Offset)
	if err != nil {
		return nil, err
	}

	handler := Linear{Offset: l.Offset}
	for _, spec := range KernelAreas(l) {
		kfmt.Printf("[memset] [0x%16x, 0x%16x) %s %s\n",
			uintptr(spec.Begin), uintptr(spec.End), spec.Attrib.String(), spec.Name,
		)

		if err = ms.Push(spec.Begin, spec.End, handler, spec.Attrib); err != nil {
			return nil, err
		}
	}

	return ms, nil
}
