package mmtest

import (
	"testing"
	"unsafe"

	"rvkern/kernel/mm"
	"rvkern/kernel/mm/pmm"
)

func TestArena(t *testing.T) {
	arena, err := NewArena(8)
	if err != nil {
		t.Fatal(err)
	}
	defer arena.Close()

	restore := arena.Install()
	defer restore()

	frame, kerr := mm.AllocFrame()
	if kerr != nil {
		t.Fatal(kerr)
	}

	if frame != arena.Base() || !arena.Contains(frame) {
		t.Fatalf("expected first allocation to return the arena base frame 0x%x; got 0x%x", uintptr(arena.Base()), uintptr(frame))
	}

	// The frame's physical address is its host address.
	page := arena.Bytes(frame)
	page[0] = 0xaa
	if got := *(*byte)(unsafe.Pointer(uintptr(frame.Address()))); got != 0xaa {
		t.Fatalf("expected frame memory to be reachable through its physical address; read 0x%x", got)
	}

	for i := 1; i < 8; i++ {
		if _, kerr = mm.AllocFrame(); kerr != nil {
			t.Fatal(kerr)
		}
	}

	if _, kerr = mm.AllocFrame(); kerr != pmm.ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory; got %v", kerr)
	}

	mm.FreeFrame(frame)
	if exp := uint(7); arena.Allocated() != exp {
		t.Fatalf("expected %d allocated frames; got %d", exp, arena.Allocated())
	}
}
