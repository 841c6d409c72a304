package kmain

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rvkern/kernel/mm"
	"rvkern/kernel/mm/memset"
)

func TestKernelLayout(t *testing.T) {
	var syms sectionSymbols
	readSectionSymbols(&syms)

	layout := kernelLayout(syms)
	if err := memset.CheckAreas(memset.KernelAreas(layout)); err != nil {
		t.Fatalf("expected kernel layout to be valid; got %v", err)
	}

	exp := memset.KernelLayout{
		TextStart:   mm.KernelBeginVAddr,
		TextEnd:     mm.KernelBeginVAddr + 0x40000,
		RODataStart: mm.KernelBeginVAddr + 0x40000,
		RODataEnd:   mm.KernelBeginVAddr + 0x60000,
		DataStart:   mm.KernelBeginVAddr + 0x60000,
		DataEnd:     mm.KernelBeginVAddr + 0x70000,
		BSSStart:    mm.KernelBeginVAddr + 0x70000,
		BSSEnd:      mm.KernelBeginVAddr + 0x200000,
		KernelEnd:   mm.KernelBeginVAddr + 0x200000,
		PhysMemEnd:  mm.PhysMemEnd,
		Offset:      mm.PhysMemOffset,
	}
	if diff := cmp.Diff(exp, layout); diff != "" {
		t.Fatalf("unexpected layout (-want +got):\n%s", diff)
	}
}

func TestUsableFrames(t *testing.T) {
	layout := memset.KernelLayout{
		KernelEnd:  mm.KernelBeginVAddr + 0x1234,
		PhysMemEnd: mm.PhysMemEnd,
		Offset:     mm.PhysMemOffset,
	}

	lo, hi := usableFrames(layout)
	if exp := mm.Frame(0x80201 + 1); lo != exp {
		t.Errorf("expected first usable frame to be 0x%x; got 0x%x", uintptr(exp), uintptr(lo))
	}
	if exp := mm.Frame(0x88000); hi != exp {
		t.Errorf("expected usable frames to end at 0x%x; got 0x%x", uintptr(exp), uintptr(hi))
	}
}
