package kernel

import "testing"

func TestKernelError(t *testing.T) {
	err := &Error{
		Module:  "pmm",
		Message: "out of physical memory",
	}

	if err.Error() != err.Message {
		t.Fatalf("expected to err.Error() to return %q; got %q", err.Message, err.Error())
	}

	var asError error = err
	if asError != error(err) {
		t.Fatal("expected a kernel error to compare equal to itself through the error interface")
	}
}
