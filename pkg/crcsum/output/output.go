// Package output serializes result and error lines from concurrent workers.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Sink writes whole lines to a result stream and an error stream. A single
// mutex covers both, and every line is written with one Write call, so lines
// from different goroutines never interleave.
type Sink struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// New returns a Sink writing results to out and errors to errw.
// Nil writers default to os.Stdout and os.Stderr.
func New(out, errw io.Writer) *Sink {
	if out == nil {
		out = os.Stdout
	}
	if errw == nil {
		errw = os.Stderr
	}
	return &Sink{out: out, err: errw}
}

// Stdio returns a Sink bound to the process's standard streams.
func Stdio() *Sink {
	return New(os.Stdout, os.Stderr)
}

// Line writes one formatted line to the result stream.
func (s *Sink) Line(format string, args ...any) {
	s.write(s.out, format, args)
}

// Error writes one formatted line to the error stream.
func (s *Sink) Error(format string, args ...any) {
	s.write(s.err, format, args)
}

func (s *Sink) write(w io.Writer, format string, args []any) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Nothing useful can be done when a standard stream fails.
	_, _ = io.WriteString(w, line)
}
