package main

import (
	"context"
	"debug/elf"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"rvkern/kernel/mm"
	"rvkern/kernel/mm/memset"
)

// sectionSymbolNames are the linker script symbols delimiting the kernel
// sections, in the order expected by layoutFromSymbols.
var sectionSymbolNames = []string{
	"stext", "etext",
	"srodata", "erodata",
	"sdata", "edata",
	"sbss", "ebss",
	"end",
}

// layoutCmd implements subcommands.Command for the "layout" command.
type layoutCmd struct {
	profile string
}

// Name implements subcommands.Command.
func (*layoutCmd) Name() string { return "layout" }

// Synopsis implements subcommands.Command.
func (*layoutCmd) Synopsis() string {
	return "print the kernel address space of a kernel image"
}

// Usage implements subcommands.Command.
func (*layoutCmd) Usage() string {
	return "layout [-profile board.toml] <kernel.elf>\n"
}

// SetFlags implements subcommands.Command.
func (c *layoutCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "profile", "", "board profile (TOML)")
}

// Execute implements subcommands.Command.
func (c *layoutCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	log := logrus.WithField("image", f.Arg(0))

	p, err := loadProfile(c.profile)
	if err != nil {
		log.WithError(err).Error("invalid profile")
		return subcommands.ExitFailure
	}

	syms, err := readSectionSymbols(f.Arg(0))
	if err != nil {
		log.WithError(err).Error("reading section symbols")
		return subcommands.ExitFailure
	}
	log.Debugf("resolved %d section symbols", len(syms))

	layout, err := layoutFromSymbols(syms, p)
	if err != nil {
		log.WithError(err).Error("invalid kernel layout")
		return subcommands.ExitFailure
	}

	if err := printLayout(os.Stdout, layout); err != nil {
		log.WithError(err).Error("invalid kernel address space")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// readSectionSymbols returns the values of the section symbols found in the
// symbol table of an ELF image.
func readSectionSymbols(imgFile string) (map[string]uint64, error) {
	f, err := elf.Open(imgFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return nil, err
	}

	syms := make(map[string]uint64, len(sectionSymbolNames))
	for _, symbol := range symbols {
		for _, name := range sectionSymbolNames {
			if symbol.Name == name {
				syms[name] = symbol.Value
			}
		}
	}
	return syms, nil
}

// layoutFromSymbols builds the layout of a kernel image from its section
// symbols.
func layoutFromSymbols(syms map[string]uint64, p profile) (memset.KernelLayout, error) {
	addrs := make([]mm.VirtAddr, len(sectionSymbolNames))
	for i, name := range sectionSymbolNames {
		v, ok := syms[name]
		if !ok {
			return memset.KernelLayout{}, fmt.Errorf("missing symbol %q", name)
		}
		if v < p.KernelBeginVAddr {
			return memset.KernelLayout{}, fmt.Errorf("symbol %q at 0x%x is below the kernel base 0x%x", name, v, p.KernelBeginVAddr)
		}
		addrs[i] = mm.VirtAddr(v)
	}

	return memset.KernelLayout{
		TextStart:   addrs[0],
		TextEnd:     addrs[1],
		RODataStart: addrs[2],
		RODataEnd:   addrs[3],
		DataStart:   addrs[4],
		DataEnd:     addrs[5],
		BSSStart:    addrs[6],
		BSSEnd:      addrs[7],
		KernelEnd:   addrs[8],
		PhysMemEnd:  mm.PhysAddr(p.physMemEnd()),
		Offset:      p.offset(),
	}, nil
}

// printLayout checks the areas planned for a layout and prints them to w.
func printLayout(w io.Writer, l memset.KernelLayout) error {
	areas := memset.KernelAreas(l)
	if err := memset.CheckAreas(areas); err != nil {
		return err
	}

	for _, area := range areas {
		pages := mm.NewPageRange(area.Begin, area.End).Len()
		fmt.Fprintf(w, "%-8s [0x%016x, 0x%016x) %s %6d pages\n",
			area.Name, uintptr(area.Begin), uintptr(area.End), area.Attrib.String(), pages,
		)
	}

	imageEnd := uintptr(l.KernelEnd) - l.Offset
	free := (uintptr(l.PhysMemEnd) - imageEnd) / uintptr(mm.PageSize)
	fmt.Fprintf(w, "image ends at 0x%x; %d frames left for the frame allocator\n", imageEnd, free)
	return nil
}
