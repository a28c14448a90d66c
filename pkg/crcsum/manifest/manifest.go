// Package manifest reads checksum manifests: text files with one
// "<checksum> <filename>" record per line, as written by the directory modes.
package manifest

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/jamesainslie/crcsum/pkg/crcsum/logging"
)

// ErrIsDirectory is returned by Open when the manifest path names a directory.
var ErrIsDirectory = errors.New("is a directory")

var logger = logging.Get("manifest")

// Record is one parsed manifest line.
type Record struct {
	// Checksum is the text before the first whitespace character.
	Checksum string

	// Filename is everything after the first whitespace character, verbatim.
	Filename string

	// Line is the 1-based line number in the manifest.
	Line int
}

// ParseLine splits line at its first Unicode whitespace character.
// A line with no whitespace yields the whole line as the checksum and an
// empty filename. It never fails.
func ParseLine(line string) Record {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return Record{Checksum: line}
	}

	_, size := utf8.DecodeRuneInString(line[i:])
	return Record{
		Checksum: line[:i],
		Filename: line[i+size:],
	}
}

// Reader streams records from an open manifest file.
type Reader struct {
	path string
	file *os.File

	mu  sync.Mutex
	err error
}

// Open opens the manifest at path. Directories are rejected here so that
// the failure surfaces before any record is read. Pipes and other
// non-regular files are accepted.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) // #nosec G304 -- manifest path is user supplied
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &fs.PathError{Op: "open", Path: path, Err: ErrIsDirectory}
	}

	return &Reader{path: path, file: f}, nil
}

// Path returns the manifest path.
func (r *Reader) Path() string {
	return r.path
}

// Records streams one Record per line, in file order. Lines of any length
// are accepted and a final line without a newline is still a record.
// The channel is closed and the file released at end of input, on a read
// error, or when ctx is done. Call Err after the channel is drained to learn
// whether input ended early.
func (r *Reader) Records(ctx context.Context) <-chan Record {
	out := make(chan Record)

	go func() {
		defer close(out)
		defer func() {
			_ = r.file.Close()
		}()

		br := bufio.NewReader(r.file)

		line := 0
		for {
			text, err := br.ReadString('\n')
			if text != "" {
				line++
				rec := ParseLine(trimEOL(text))
				rec.Line = line

				select {
				case out <- rec:
				case <-ctx.Done():
					r.setErr(ctx.Err())
					return
				}
			}

			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				logger.Warn("manifest read stopped", "path", r.path, "line", line+1, "err", err)
				r.setErr(err)
				return
			}
		}
	}()

	return out
}

// trimEOL removes one trailing "\n" or "\r\n".
func trimEOL(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s
	}
	s = s[:len(s)-1]
	return strings.TrimSuffix(s, "\r")
}

// Err returns the error that ended the record stream early, if any.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reader) setErr(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}
