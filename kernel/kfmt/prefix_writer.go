package kfmt

import "io"

// PrefixWriter is an io.Writer that prepends Prefix to every line written
// through it. Kernel subsystems wrap the output sink with a PrefixWriter to tag
// their messages (for example "[vmm] ").
type PrefixWriter struct {
	// Sink receives the prefixed output.
	Sink io.Writer

	// Prefix is injected at the beginning of each line.
	Prefix []byte

	midLine bool
}

// Write writes p to the sink, injecting the prefix at the start of each line.
// The returned byte count excludes the injected prefixes.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written, lineStart int

	for i := 0; i < len(p); i++ {
		if p[i] != '\n' {
			continue
		}

		n, err := w.writeLine(p[lineStart : i+1])
		written += n
		if err != nil {
			return written, err
		}
		w.midLine = false
		lineStart = i + 1
	}

	if lineStart < len(p) {
		n, err := w.writeLine(p[lineStart:])
		written += n
		if err != nil {
			return written, err
		}
		w.midLine = true
	}

	return written, nil
}

func (w *PrefixWriter) writeLine(line []byte) (int, error) {
	if !w.midLine {
		w.Sink.Write(w.Prefix)
	}
	return w.Sink.Write(line)
}
