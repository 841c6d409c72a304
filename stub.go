package main

import "rvkern/kernel/kmain"

// main only references kmain.Kmain so that the linker keeps the kernel code
// in the object handed to the boot code, which calls Kmain directly.
func main() {
	kmain.Kmain()
}
