package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_Streams(t *testing.T) {
	var out, errw bytes.Buffer
	s := New(&out, &errw)

	s.Line("%s %s", "3610a686", "a.txt")
	s.Error("Error processing %s: %v", "b.txt", io.ErrUnexpectedEOF)
	s.Line("already terminated\n")

	assert.Equal(t, "3610a686 a.txt\nalready terminated\n", out.String())
	assert.Equal(t, "Error processing b.txt: unexpected EOF\n", errw.String())
}

// chunkWriter records each Write call separately.
type chunkWriter struct {
	mu     sync.Mutex
	writes []string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestSink_ConcurrentLinesNeverInterleave(t *testing.T) {
	w := &chunkWriter{}
	s := New(w, w)

	const goroutines, perG = 16, 200
	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perG {
				name := fmt.Sprintf("dir-%02d/file with spaces %04d.txt", g, i)
				if i%3 == 0 {
					s.Error("Error processing %s: %s", name, "permission denied")
				} else {
					s.Line("%08x %s", uint32(g*perG+i), name)
				}
			}
		}()
	}
	wg.Wait()

	require.Len(t, w.writes, goroutines*perG)
	for _, line := range w.writes {
		assert.True(t, strings.HasSuffix(line, "\n"))
		assert.Equal(t, 1, strings.Count(line, "\n"), "line %q", line)
		assert.True(t, strings.HasPrefix(line, "Error processing dir-") || strings.Contains(line, " dir-"), "line %q", line)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(nil, nil)
	assert.NotNil(t, s.out)
	assert.NotNil(t, s.err)
	assert.NotNil(t, Stdio())
}
