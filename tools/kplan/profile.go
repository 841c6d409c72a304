package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"rvkern/kernel/mm"
	"rvkern/kernel/thread"
	"rvkern/kernel/trap"
)

// profile describes the board a kernel image is built for. Values missing
// from a profile file default to the ones the kernel is compiled with.
type profile struct {
	// PhysMemBegin and PhysMemSize delimit DRAM.
	PhysMemBegin uint64 `toml:"phys_mem_begin"`
	PhysMemSize  uint64 `toml:"phys_mem_size"`

	// KernelBeginPAddr is where the firmware loads the image and
	// KernelBeginVAddr where it is linked.
	KernelBeginPAddr uint64 `toml:"kernel_begin_paddr"`
	KernelBeginVAddr uint64 `toml:"kernel_begin_vaddr"`

	// TimeFreq is the frequency of the time CSR in Hz.
	TimeFreq uint64 `toml:"time_freq"`

	// Timebase is the number of time CSR ticks between timer interrupts.
	Timebase uint64 `toml:"timebase"`

	// TimeSlice is the number of timer interrupts per time slice.
	TimeSlice int `toml:"time_slice"`
}

func defaultProfile() profile {
	return profile{
		PhysMemBegin:     uint64(mm.PhysMemBegin),
		PhysMemSize:      uint64(mm.MaxPhysMem),
		KernelBeginPAddr: uint64(mm.KernelBeginPAddr),
		KernelBeginVAddr: uint64(mm.KernelBeginVAddr),
		TimeFreq:         10000000,
		Timebase:         trap.Timebase,
		TimeSlice:        thread.TicksPerTimeSlice,
	}
}

// loadProfile reads a TOML profile. An empty path selects the defaults.
func loadProfile(path string) (profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}

	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return p, fmt.Errorf("loading profile %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logrus.WithField("profile", path).Warnf("ignoring unknown key %q", key.String())
	}

	if err = p.validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

func (p profile) validate() error {
	switch {
	case p.PhysMemBegin%uint64(mm.PageSize) != 0:
		return fmt.Errorf("phys_mem_begin 0x%x is not page aligned", p.PhysMemBegin)
	case p.KernelBeginPAddr < p.PhysMemBegin || p.KernelBeginPAddr >= p.physMemEnd():
		return fmt.Errorf("kernel_begin_paddr 0x%x is outside of DRAM", p.KernelBeginPAddr)
	case p.KernelBeginVAddr < p.KernelBeginPAddr:
		return fmt.Errorf("kernel_begin_vaddr 0x%x is below kernel_begin_paddr", p.KernelBeginVAddr)
	case p.TimeFreq == 0 || p.Timebase == 0:
		return fmt.Errorf("time_freq and timebase must be positive")
	case p.TimeSlice < 1:
		return fmt.Errorf("time_slice must be at least 1")
	}
	return nil
}

func (p profile) physMemEnd() uint64 {
	return p.PhysMemBegin + p.PhysMemSize
}

// offset is the distance between a kernel virtual address and the physical
// address backing it.
func (p profile) offset() uintptr {
	return uintptr(p.KernelBeginVAddr - p.KernelBeginPAddr)
}
