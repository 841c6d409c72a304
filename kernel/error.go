package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error so that reporting them never touches the allocator; code
// running inside a trap handler or on a fabricated thread stack can return
// and compare them freely.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
