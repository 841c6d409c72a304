package memset

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rvkern/kernel"
	"rvkern/kernel/cpu"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/mm"
	"rvkern/kernel/mm/mmtest"
	"rvkern/kernel/mm/vmm"
)

// newTestMemSet returns an empty MemSet whose tables and ByFrame pages are
// allocated from a simulated physical memory arena.
func newTestMemSet(t *testing.T, frames int) (*MemSet, *mmtest.Arena) {
	t.Helper()

	arena, err := newTestArena(t, frames)
	if err != nil {
		t.Fatal(err)
	}

	ms, kerr := New(arena.LinearOffset)
	if kerr != nil {
		t.Fatal(kerr)
	}
	return ms, arena
}

// expectPanic runs fn with panicFn stubbed so that misuse errors unwind it
// and returns the error passed to panicFn.
func expectPanic(t *testing.T, fn func()) (raised *kernel.Error) {
	t.Helper()

	defer func() { panicFn = kfmt.Panic }()
	panicFn = func(e interface{}) {
		panic(e)
	}

	defer func() {
		if r := recover(); r != nil {
			raised = r.(*kernel.Error)
		}
	}()

	fn()
	return nil
}

// newTestArena maps a simulated physical memory arena and installs it as the
// frame allocator for the duration of the test.
func newTestArena(t *testing.T, frames int) (*mmtest.Arena, error) {
	arena, err := mmtest.NewArena(frames)
	if err != nil {
		return nil, err
	}

	restore := arena.Install()
	t.Cleanup(func() {
		restore()
		arena.Close()
	})
	return arena, nil
}

var (
	rx = MemAttrib{Readable: true, Executable: true}
	rw = MemAttrib{Readable: true, Writable: true}
)

func TestPushLinear(t *testing.T) {
	ms, _ := newTestMemSet(t, 16)

	var (
		offset = uintptr(0x40000000)
		begin  = mm.VirtAddr(0xc0200000)
		end    = mm.VirtAddr(0xc0203000)
	)

	if err := ms.Push(begin, end, Linear{Offset: offset}, rx); err != nil {
		t.Fatal(err)
	}

	for va := begin; va < end; va += mm.VirtAddr(mm.PageSize) {
		entry, ok := ms.PageTable().Entry(va)
		if !ok {
			t.Fatalf("expected 0x%x to be mapped", uintptr(va))
		}

		if exp := mm.PhysAddr(uintptr(va) - offset).Frame(); entry.Frame() != exp {
			t.Errorf("expected 0x%x to map to frame 0x%x; got 0x%x", uintptr(va), uintptr(exp), uintptr(entry.Frame()))
		}

		if !entry.Valid() || !entry.Readable() || entry.Writable() || !entry.Executable() || entry.User() {
			t.Errorf("unexpected permissions for 0x%x: 0x%x", uintptr(va), uintptr(entry.Flags()))
		}
	}

	if _, ok := ms.PageTable().Entry(end); ok {
		t.Fatal("expected the page after the area to be unmapped")
	}

	if ms.Len() != 1 {
		t.Fatalf("expected 1 area; got %d", ms.Len())
	}
}

func TestPushByFrame(t *testing.T) {
	ms, arena := newTestMemSet(t, 16)
	tableFrames := arena.Allocated()

	begin := mm.VirtAddr(0x10000000)
	if err := ms.Push(begin, begin+4*mm.VirtAddr(mm.PageSize), ByFrame{}, rw); err != nil {
		t.Fatal(err)
	}

	seen := map[mm.Frame]bool{}
	for i := 0; i < 4; i++ {
		entry, ok := ms.PageTable().Entry(begin + mm.VirtAddr(i)*mm.VirtAddr(mm.PageSize))
		if !ok {
			t.Fatalf("expected page %d to be mapped", i)
		}

		if !arena.Contains(entry.Frame()) || seen[entry.Frame()] {
			t.Fatalf("expected page %d to be backed by a fresh arena frame; got 0x%x", i, uintptr(entry.Frame()))
		}
		seen[entry.Frame()] = true
	}

	// 2 intermediate tables + 4 pages
	if exp := tableFrames + 6; arena.Allocated() != exp {
		t.Fatalf("expected %d allocated frames; got %d", exp, arena.Allocated())
	}

	var area *MemArea
	ms.Areas(func(a *MemArea) bool {
		area = a
		return false
	})
	area.Unmap(ms.PageTable())

	if exp := tableFrames + 2; arena.Allocated() != exp {
		t.Fatalf("expected unmapping to release the 4 page frames; %d frames still allocated", arena.Allocated())
	}
}

func TestPushByFrameExhaustion(t *testing.T) {
	// root + 2 tables + 2 pages
	ms, arena := newTestMemSet(t, 5)

	begin := mm.VirtAddr(0x10000000)
	err := ms.Push(begin, begin+4*mm.VirtAddr(mm.PageSize), ByFrame{}, rw)
	if err == nil {
		t.Fatal("expected Push to fail when frames run out")
	}

	if ms.Len() != 0 {
		t.Fatal("expected the failed area not to be added")
	}

	if _, ok := ms.PageTable().Entry(begin); ok {
		t.Fatal("expected the pages mapped before the failure to be unmapped")
	}

	if exp := uint(3); arena.Allocated() != exp {
		t.Fatalf("expected only the %d table frames to remain allocated; got %d", exp, arena.Allocated())
	}
}

func TestPushInvertedRange(t *testing.T) {
	ms, _ := newTestMemSet(t, 4)

	err := expectPanic(t, func() {
		ms.Push(0x20000, 0x10000, ByFrame{}, rw)
	})

	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange; got %v", err)
	}
}

func TestPushOverlap(t *testing.T) {
	ms, _ := newTestMemSet(t, 32)

	page := mm.VirtAddr(mm.PageSize)
	for _, r := range [][2]mm.VirtAddr{{0x100 * page, 0x104 * page}, {0x110 * page, 0x118 * page}, {0x120 * page, 0x120 * page}} {
		if err := ms.Push(r[0], r[1], Linear{}, rw); err != nil {
			t.Fatal(err)
		}
	}

	specs := []struct {
		begin, end mm.VirtAddr
		expErr     *kernel.Error
	}{
		{0x104 * page, 0x110 * page, nil},
		{0xff * page, 0x101 * page, ErrAreaOverlap},
		{0x103 * page, 0x105 * page, ErrAreaOverlap},
		{0x10f * page, 0x121 * page, ErrAreaOverlap},
		{0x112 * page, 0x113 * page, ErrAreaOverlap},
		{0x117*page + 0x800, 0x119 * page, ErrAreaOverlap},
		{0x118 * page, 0x120 * page, nil},
		{0x120 * page, 0x121 * page, nil},
		{0x200 * page, 0x200 * page, nil},
	}

	for specIndex, spec := range specs {
		if got := ms.Overlaps(spec.begin, spec.end); got != (spec.expErr != nil) {
			t.Errorf("[spec %d] expected Overlaps to return %t; got %t", specIndex, spec.expErr != nil, got)
		}
	}

	// Overlapping pushes fail before mapping anything.
	err := expectPanic(t, func() {
		ms.Push(0xf0*page, 0x101*page, Linear{}, rw)
	})
	if err != ErrAreaOverlap {
		t.Fatalf("expected ErrAreaOverlap; got %v", err)
	}

	if _, ok := ms.PageTable().Entry(0xf0 * page); ok {
		t.Fatal("expected a rejected area to leave no mappings")
	}

	// Areas are reported in address order regardless of insertion order.
	if err := ms.Push(0x10*page, 0x11*page, Linear{}, rw); err != nil {
		t.Fatal(err)
	}

	var got []mm.VirtAddr
	ms.Areas(func(a *MemArea) bool {
		got = append(got, a.Begin())
		return true
	})

	exp := []mm.VirtAddr{0x10 * page, 0x100 * page, 0x110 * page, 0x120 * page}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("unexpected area order (-want +got):\n%s", diff)
	}
}

func TestMemAttribApply(t *testing.T) {
	ms, _ := newTestMemSet(t, 8)
	pt := ms.PageTable()

	va := mm.VirtAddr(0x80200000)
	if err := pt.Map(va, mm.Frame(0x80200), vmm.FlagValid|vmm.FlagReadable|vmm.FlagWritable|vmm.FlagGlobal); err != nil {
		t.Fatal(err)
	}

	entry, _ := pt.Entry(va)
	MemAttrib{Executable: true, User: true}.Apply(entry)

	entry, _ = pt.Entry(va)
	exp := vmm.FlagValid | vmm.FlagExecutable | vmm.FlagUser | vmm.FlagGlobal | vmm.FlagAccessed | vmm.FlagDirty
	if entry.Flags() != exp || entry.Frame() != mm.Frame(0x80200) {
		t.Fatalf("expected flags 0x%x and frame 0x80200; got 0x%x and 0x%x", uintptr(exp), uintptr(entry.Flags()), uintptr(entry.Frame()))
	}
}

func TestMemAttribString(t *testing.T) {
	specs := []struct {
		attrib MemAttrib
		exp    string
	}{
		{MemAttrib{}, "----"},
		{rx, "r-x-"},
		{rw, "rw--"},
		{MemAttrib{Readable: true, Writable: true, Executable: true, User: true}, "rwxu"},
	}

	for specIndex, spec := range specs {
		if got := spec.attrib.String(); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestActivate(t *testing.T) {
	ms, _ := newTestMemSet(t, 2)

	ms.Activate()
	if got := cpu.ActiveSATP(); got != ms.PageTable().SATP() {
		t.Fatalf("expected satp 0x%x to be active; got 0x%x", ms.PageTable().SATP(), got)
	}
}
