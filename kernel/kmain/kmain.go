// Package kmain contains the entry point of the kernel.
package kmain

import (
	"rvkern/kernel"
	"rvkern/kernel/goruntime"
	"rvkern/kernel/kfmt"
	"rvkern/kernel/mm"
	"rvkern/kernel/mm/memset"
	"rvkern/kernel/mm/pmm"
	"rvkern/kernel/sbi"
	"rvkern/kernel/thread"
	"rvkern/kernel/trap"
)

// demoWorkers is the number of threads started by Kmain to exercise the
// scheduler.
const demoWorkers = 8

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// kernelSpace is the address space of the kernel. It is never torn down.
	kernelSpace *memset.MemSet
)

// Kmain is invoked by the boot code with interrupts disabled, the kernel
// image mapped at mm.KernelBeginVAddr and a valid stack. It sets up physical
// and virtual memory, traps and threads and hands the hart to the scheduler.
//
// Kmain is not expected to return. If it does, the boot code will halt the
// hart.
//
//go:noinline
func Kmain() {
	goruntime.Init()
	kfmt.SetOutputSink(sbi.Console{})
	kfmt.Printf("Starting rvkern\n")

	var syms sectionSymbols
	readSectionSymbols(&syms)
	layout := kernelLayout(syms)

	var err *kernel.Error
	if err = pmm.Init(usableFrames(layout)); err != nil {
		kfmt.Panic(err)
	} else if kernelSpace, err = memset.NewKernel(layout); err != nil {
		kfmt.Panic(err)
	}
	kernelSpace.Activate()

	trap.Init()
	thread.Init()
	thread.SelfTest()

	for i := 0; i < demoWorkers; i++ {
		if _, err = thread.Spawn(thread.FuncPC(hello), uintptr(i)); err != nil {
			kfmt.Panic(err)
		}
	}

	trap.InitTimer()
	thread.CPU.Run()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// sectionSymbols holds the addresses of the section boundary symbols defined
// by the linker script.
type sectionSymbols struct {
	stext, etext     uintptr
	srodata, erodata uintptr
	sdata, edata     uintptr
	sbss, ebss       uintptr
	end              uintptr
}

func kernelLayout(s sectionSymbols) memset.KernelLayout {
	return memset.KernelLayout{
		TextStart:   mm.VirtAddr(s.stext),
		TextEnd:     mm.VirtAddr(s.etext),
		RODataStart: mm.VirtAddr(s.srodata),
		RODataEnd:   mm.VirtAddr(s.erodata),
		DataStart:   mm.VirtAddr(s.sdata),
		DataEnd:     mm.VirtAddr(s.edata),
		BSSStart:    mm.VirtAddr(s.sbss),
		BSSEnd:      mm.VirtAddr(s.ebss),
		KernelEnd:   mm.VirtAddr(s.end),
		PhysMemEnd:  mm.PhysMemEnd,
		Offset:      mm.PhysMemOffset,
	}
}

// usableFrames returns the frames following the kernel image, up to the end
// of DRAM.
func usableFrames(l memset.KernelLayout) (lo, hi mm.Frame) {
	imageEnd := mm.PhysAddr(uintptr(l.KernelEnd) - l.Offset)
	return imageEnd.Frame() + 1, l.PhysMemEnd.Frame()
}

func hello(id uintptr) {
	kfmt.Printf("[%4x] hello from a kernel thread!\n", uint64(id))
	for i := 0; i < 0x100; i++ {
		kfmt.Printf("%d", i)
	}
	kfmt.Printf("\n[%4x] bye!\n", uint64(id))
	thread.Exit(id)
}
