package sbi

import (
	"bytes"
	"testing"
)

func TestPutCharAndConsole(t *testing.T) {
	defer func() { callFn = call }()

	var buf bytes.Buffer
	callFn = func(ext, arg0, _, _ uintptr) uintptr {
		if ext != extConsolePutChar {
			t.Fatalf("expected call to use extension %d; got %d", extConsolePutChar, ext)
		}
		buf.WriteByte(byte(arg0))
		return 0
	}

	PutChar('>')
	n, err := Console{}.Write([]byte("hello, world!\n"))
	if err != nil {
		t.Fatal(err)
	}

	if exp := 14; n != exp {
		t.Fatalf("expected Console.Write to report %d bytes; got %d", exp, n)
	}

	if exp, got := ">hello, world!\n", buf.String(); got != exp {
		t.Fatalf("expected console output to be %q; got %q", exp, got)
	}
}

func TestGetChar(t *testing.T) {
	defer func() { callFn = call }()

	specs := []struct {
		ret uintptr
		exp int
	}{
		{uintptr('a'), 'a'},
		{^uintptr(0), -1},
	}

	for specIndex, spec := range specs {
		callFn = func(ext, _, _, _ uintptr) uintptr {
			if ext != extConsoleGetChar {
				t.Fatalf("[spec %d] unexpected extension %d", specIndex, ext)
			}
			return spec.ret
		}

		if got := GetChar(); got != spec.exp {
			t.Errorf("[spec %d] expected GetChar to return %d; got %d", specIndex, spec.exp, got)
		}
	}
}

func TestSetTimer(t *testing.T) {
	defer func() { callFn = call }()

	var (
		gotExt, gotArg uintptr
	)
	callFn = func(ext, arg0, _, _ uintptr) uintptr {
		gotExt, gotArg = ext, arg0
		return 0
	}

	SetTimer(0x1234567)
	if gotExt != extSetTimer || gotArg != 0x1234567 {
		t.Fatalf("expected SetTimer to issue call(%d, 0x1234567); got call(%d, 0x%x)", extSetTimer, gotExt, gotArg)
	}
}
