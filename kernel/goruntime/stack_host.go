//go:build !riscv64

package goruntime

// liftStackGuard is a no-op on the host where the runtime manages the stacks.
func liftStackGuard() {}
