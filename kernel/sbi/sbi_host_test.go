//go:build !riscv64

package sbi

import (
	"bytes"
	"io"
	"testing"
)

func TestHostFirmwareModel(t *testing.T) {
	defer func() {
		hostConsole = io.Discard
		hostInput = nil
		hostDeadline = 0
		hostPoweredOff = false
	}()

	var buf bytes.Buffer
	hostConsole = &buf
	hostInput = []byte("k")

	PutChar('x')
	if buf.String() != "x" {
		t.Fatalf("expected console to contain %q; got %q", "x", buf.String())
	}

	if got := GetChar(); got != 'k' {
		t.Fatalf("expected GetChar to return 'k'; got %d", got)
	}

	if got := GetChar(); got != -1 {
		t.Fatalf("expected GetChar to return -1 when no input is pending; got %d", got)
	}

	SetTimer(42)
	if hostDeadline != 42 {
		t.Fatalf("expected timer deadline to be 42; got %d", hostDeadline)
	}

	Shutdown()
	if !hostPoweredOff {
		t.Fatal("expected Shutdown to power off the machine")
	}
}
