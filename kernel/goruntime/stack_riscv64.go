package goruntime

// liftStackGuard clears the lower stack bound and the stack guards of the
// running g.
func liftStackGuard()
