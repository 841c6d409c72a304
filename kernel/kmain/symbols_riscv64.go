package kmain

// readSectionSymbols stores the addresses of the linker script symbols
// delimiting the kernel sections into s.
func readSectionSymbols(s *sectionSymbols)
