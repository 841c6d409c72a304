// Package kfmt implements the kernel's formatted output. Everything here is
// written so that it never allocates: it runs inside trap handlers and on
// hand-built thread stacks where calling into the Go allocator is not safe.
package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize is the size of the scratch buffer used for formatting integers.
// It fits a 64-bit value in base 8 plus a sign.
const numBufSize = 24

var (
	missingArg  = []byte("%!(MISSING)")
	badArgType  = []byte("%!(WRONGTYPE)")
	missingVerb = []byte("%!(NOVERB)")
	extraArg    = []byte("%!(EXTRA)")
	trueValue   = []byte("true")
	falseValue  = []byte("false")
	digits      = "0123456789abcdef"

	numBuf [numBufSize]byte

	// scratch carries single bytes to write.
	scratch = []byte{0}

	// earlyPrintBuffer captures output produced before a sink is attached.
	earlyPrintBuffer ringBuffer

	// outputSink receives the output of Printf. While nil, output is kept in
	// earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf and replays any output
// accumulated so far into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// GetOutputSink returns the current target for calls to Printf.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf is a small, allocation-free subset of fmt.Printf. The supported verbs
// are:
//
//	%s  string or []byte
//	%c  a single byte
//	%d  integer, base 10
//	%o  integer, base 8
//	%x  integer, base 16 (lower-case)
//	%t  bool
//	%%  a literal percent sign
//
// A decimal width may precede the verb. Strings and decimals are padded on
// the left with spaces; octal and hex values are padded with zeroes.
//
// Arguments must be one of the built-in integer types, bool, string or
// []byte. Named types (mm.Frame, mm.VirtAddr and friends) need to be
// converted by the caller; type-switching on them would require reflection.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but sends its output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		width    int
		i        int
	)

	for i < len(format) {
		if format[i] != '%' {
			writeByte(w, format[i])
			i++
			continue
		}

		// Parse width followed by the verb.
		width = 0
		for i++; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			width = width*10 + int(format[i]-'0')
		}

		if i == len(format) {
			write(w, missingVerb)
			break
		}

		verb := format[i]
		i++

		if verb == '%' {
			writeByte(w, '%')
			continue
		}

		if !isVerb(verb) {
			write(w, missingVerb)
			continue
		}

		if argIndex >= len(args) {
			write(w, missingArg)
			continue
		}

		switch verb {
		case 'd':
			fmtInt(w, args[argIndex], 10, width)
		case 'o':
			fmtInt(w, args[argIndex], 8, width)
		case 'x':
			fmtInt(w, args[argIndex], 16, width)
		case 's':
			fmtString(w, args[argIndex], width)
		case 'c':
			fmtChar(w, args[argIndex])
		case 't':
			fmtBool(w, args[argIndex])
		}
		argIndex++
	}

	for ; argIndex < len(args); argIndex++ {
		write(w, extraArg)
	}
}

func isVerb(ch byte) bool {
	switch ch {
	case 'd', 'o', 'x', 's', 'c', 't':
		return true
	}
	return false
}

func fmtBool(w io.Writer, v interface{}) {
	b, ok := v.(bool)
	switch {
	case !ok:
		write(w, badArgType)
	case b:
		write(w, trueValue)
	default:
		write(w, falseValue)
	}
}

func fmtChar(w io.Writer, v interface{}) {
	switch ch := v.(type) {
	case byte:
		writeByte(w, ch)
	case rune:
		writeByte(w, byte(ch))
	default:
		write(w, badArgType)
	}
}

// fmtString writes a string or byte slice, left-padded with spaces up to width.
func fmtString(w io.Writer, v interface{}, width int) {
	switch s := v.(type) {
	case string:
		pad(w, ' ', width-len(s))
		// Converting s to a []byte would allocate.
		for i := 0; i < len(s); i++ {
			writeByte(w, s[i])
		}
	case []byte:
		pad(w, ' ', width-len(s))
		write(w, s)
	default:
		write(w, badArgType)
	}
}

func pad(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt writes v in the requested base. Negative values are only printed
// with a sign in base 10; other bases print the two's complement bits of the
// value's own width, matching what a register dump should show.
func fmtInt(w io.Writer, v interface{}, base uint64, width int) {
	var (
		val      uint64
		negative bool
	)

	switch n := v.(type) {
	case uint8:
		val = uint64(n)
	case uint16:
		val = uint64(n)
	case uint32:
		val = uint64(n)
	case uint64:
		val = n
	case uint:
		val = uint64(n)
	case uintptr:
		val = uint64(n)
	case int8:
		val, negative = signed(int64(n), base, 8)
	case int16:
		val, negative = signed(int64(n), base, 16)
	case int32:
		val, negative = signed(int64(n), base, 32)
	case int64:
		val, negative = signed(n, base, 64)
	case int:
		val, negative = signed(int64(n), base, 64)
	default:
		write(w, badArgType)
		return
	}

	// Digits are produced right to left.
	pos := numBufSize
	for {
		pos--
		numBuf[pos] = digits[val%base]
		val /= base
		if val == 0 || pos == 1 {
			break
		}
	}

	if width > numBufSize-1 {
		width = numBufSize - 1
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}

	// Only base 10 values carry a sign and those are padded with spaces, so
	// the sign always sits right before the digits.
	if negative {
		pos--
		numBuf[pos] = '-'
	}

	for numBufSize-pos < width {
		pos--
		numBuf[pos] = padCh
	}

	write(w, numBuf[pos:])
}

// signed returns the magnitude of v for base 10 output or the raw bits of v
// truncated to the given bit width for any other base.
func signed(v int64, base uint64, bits uint) (uint64, bool) {
	if base != 10 {
		if bits == 64 {
			return uint64(v), false
		}
		return uint64(v) & (1<<bits - 1), false
	}

	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func writeByte(w io.Writer, b byte) {
	scratch[0] = b
	write(w, scratch)
}

// write hides p from escape analysis. Without this the compiler assumes p
// escapes through the dynamic call to w.Write and heap-allocates every
// argument slice passed to Printf.
func write(w io.Writer, p []byte) {
	realWrite(w, noEscape(unsafe.Pointer(&p)))
}

func realWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis (see runtime/stubs.go).
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
