package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantChecksum string
		wantFilename string
	}{
		{"simple", "3610a686 ./a.txt", "3610a686", "./a.txt"},
		{"embedded spaces", "0000abcd my file.txt", "0000abcd", "my file.txt"},
		{"extra spaces kept", "0000abcd  two.txt", "0000abcd", " two.txt"},
		{"trailing space kept", "0000abcd x.txt ", "0000abcd", "x.txt "},
		{"tab separator", "0000abcd\tx.txt", "0000abcd", "x.txt"},
		{"no whitespace", "0000abcd", "0000abcd", ""},
		{"empty line", "", "", ""},
		{"leading space", " x.txt", "", "x.txt"},
		{"multibyte separator", "0000abcd　x.txt", "0000abcd", "x.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ParseLine(tt.line)
			assert.Equal(t, tt.wantChecksum, rec.Checksum)
			assert.Equal(t, tt.wantFilename, rec.Filename)
		})
	}
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sums.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAll(t *testing.T, r *Reader) []Record {
	t.Helper()
	var out []Record
	for rec := range r.Records(context.Background()) {
		out = append(out, rec)
	}
	return out
}

func TestReader_Records(t *testing.T) {
	path := writeManifest(t, "3610a686 a.txt\r\n\n3a771143 sub/b c.txt\nnospace")

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, r.Path())

	recs := readAll(t, r)
	require.NoError(t, r.Err())
	require.Len(t, recs, 4)

	assert.Equal(t, Record{Checksum: "3610a686", Filename: "a.txt", Line: 1}, recs[0])
	assert.Equal(t, Record{Line: 2}, recs[1])
	assert.Equal(t, Record{Checksum: "3a771143", Filename: "sub/b c.txt", Line: 3}, recs[2])
	assert.Equal(t, Record{Checksum: "nospace", Line: 4}, recs[3])
}

func TestReader_Empty(t *testing.T) {
	r, err := Open(writeManifest(t, ""))
	require.NoError(t, err)

	assert.Empty(t, readAll(t, r))
	assert.NoError(t, r.Err())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReader_LongLineDoesNotEndStream(t *testing.T) {
	long := "00000000 " + strings.Repeat("x", 2<<20)
	r, err := Open(writeManifest(t, "3610a686 a.txt\n"+long+"\n3a771143 b.txt\n"))
	require.NoError(t, err)

	recs := readAll(t, r)
	require.NoError(t, r.Err())
	require.Len(t, recs, 3)

	assert.Equal(t, "a.txt", recs[0].Filename)
	assert.Equal(t, "00000000", recs[1].Checksum)
	assert.Len(t, recs[1].Filename, 2<<20)
	assert.Equal(t, Record{Checksum: "3a771143", Filename: "b.txt", Line: 3}, recs[2])
}

func TestReader_NoTrailingNewline(t *testing.T) {
	r, err := Open(writeManifest(t, "3610a686 a.txt\r\n3a771143 b.txt"))
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 2)
	assert.Equal(t, "a.txt", recs[0].Filename)
	assert.Equal(t, "b.txt", recs[1].Filename)
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestReader_Cancel(t *testing.T) {
	var b strings.Builder
	for range 1000 {
		b.WriteString("00000000 f.txt\n")
	}
	r, err := Open(writeManifest(t, b.String()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	recs := r.Records(ctx)
	<-recs
	cancel()

	n := 0
	for range recs {
		n++
	}
	assert.Less(t, n, 999)
	assert.ErrorIs(t, r.Err(), context.Canceled)
}
