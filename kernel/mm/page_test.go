package mm

import (
	"testing"

	"rvkern/kernel"
)

func TestFrameMethods(t *testing.T) {
	for frameIndex := uint64(0x80000); frameIndex < 0x80080; frameIndex++ {
		frame := Frame(frameIndex)

		if !frame.Valid() {
			t.Errorf("expected frame %d to be valid", frameIndex)
		}

		if exp, got := PhysAddr(frameIndex<<PageShift), frame.Address(); got != exp {
			t.Errorf("expected frame (%d, index: %d) call to Address() to return %x; got %x", frame, frameIndex, exp, got)
		}
	}

	invalidFrame := InvalidFrame
	if invalidFrame.Valid() {
		t.Error("expected InvalidFrame.Valid() to return false")
	}
}

func TestFrameFromAddress(t *testing.T) {
	specs := []struct {
		input    PhysAddr
		expFrame Frame
	}{
		{0, Frame(0)},
		{4095, Frame(0)},
		{4096, Frame(1)},
		{4123, Frame(1)},
		{0x80200000, Frame(0x80200)},
		{0x80200fff, Frame(0x80200)},
	}

	for specIndex, spec := range specs {
		if got := FrameFromAddress(spec.input); got != spec.expFrame {
			t.Errorf("[spec %d] expected returned frame to be %v; got %v", specIndex, spec.expFrame, got)
		}
	}
}

func TestPageFromAddress(t *testing.T) {
	specs := []struct {
		input   VirtAddr
		expPage Page
	}{
		{0, Page(0)},
		{4095, Page(0)},
		{4096, Page(1)},
		{0xffffffffc0200123, Page(0xffffffffc0200)},
	}

	for specIndex, spec := range specs {
		got := PageFromAddress(spec.input)
		if got != spec.expPage {
			t.Errorf("[spec %d] expected returned page to be %x; got %x", specIndex, spec.expPage, got)
		}

		if exp := spec.input &^ VirtAddr(PageSize-1); got.Address() != exp {
			t.Errorf("[spec %d] expected page address to be %x; got %x", specIndex, exp, got.Address())
		}
	}
}

func TestPageRange(t *testing.T) {
	specs := []struct {
		begin, end VirtAddr
		exp        PageRange
		expLen     uintptr
	}{
		{0x1000, 0x1000, PageRange{1, 1}, 0},
		{0x1000, 0x2000, PageRange{1, 2}, 1},
		{0x1000, 0x1001, PageRange{1, 2}, 1},
		{0x1800, 0x3800, PageRange{1, 4}, 3},
		{0xffffffffc0200000, 0xffffffffc0204000, PageRange{0xffffffffc0200, 0xffffffffc0204}, 4},
	}

	for specIndex, spec := range specs {
		got := NewPageRange(spec.begin, spec.end)
		if got != spec.exp {
			t.Errorf("[spec %d] expected range %v; got %v", specIndex, spec.exp, got)
		}

		if got.Len() != spec.expLen {
			t.Errorf("[spec %d] expected range length %d; got %d", specIndex, spec.expLen, got.Len())
		}
	}
}

func TestPageRangeOverlaps(t *testing.T) {
	specs := []struct {
		a, b PageRange
		exp  bool
	}{
		{PageRange{1, 3}, PageRange{3, 5}, false},
		{PageRange{1, 4}, PageRange{3, 5}, true},
		{PageRange{3, 5}, PageRange{1, 4}, true},
		{PageRange{1, 10}, PageRange{4, 5}, true},
		{PageRange{4, 4}, PageRange{1, 10}, false},
		{PageRange{1, 2}, PageRange{8, 9}, false},
	}

	for specIndex, spec := range specs {
		if got := spec.a.Overlaps(spec.b); got != spec.exp {
			t.Errorf("[spec %d] expected Overlaps to return %t; got %t", specIndex, spec.exp, got)
		}
	}
}

func TestFrameAllocator(t *testing.T) {
	defer func() {
		frameAllocator = nil
		frameDeallocator = nil
	}()

	var (
		allocCalled bool
		freed       Frame
	)
	SetFrameAllocator(func() (Frame, *kernel.Error) {
		allocCalled = true
		return FrameFromAddress(0x80badf00), nil
	})
	SetFrameDeallocator(func(f Frame) {
		freed = f
	})

	frame, err := AllocFrame()
	if err != nil {
		t.Fatal(err)
	}

	if !allocCalled {
		t.Fatal("expected registered allocator to be invoked")
	}

	FreeFrame(frame)
	if freed != Frame(0x80bad) {
		t.Fatalf("expected frame 0x80bad to be freed; got %x", freed)
	}
}
