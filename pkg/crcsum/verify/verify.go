// Package verify recomputes checksums for manifest records and classifies
// each one as a match, a mismatch, or a lookup failure.
package verify

import (
	"errors"
	"path/filepath"

	"github.com/jamesainslie/crcsum/pkg/crcsum/checksum"
	"github.com/jamesainslie/crcsum/pkg/crcsum/manifest"
)

// Outcome is the classification of one manifest record.
type Outcome int

const (
	// Match means the recomputed checksum equals the recorded one.
	Match Outcome = iota

	// Mismatch means the file was read but its checksum differs.
	Mismatch

	// LookupFailed means the file could not be opened or read.
	LookupFailed
)

// String returns the status word printed for the outcome.
func (o Outcome) String() string {
	switch o {
	case Match:
		return "OK"
	case Mismatch:
		return "FAILED"
	case LookupFailed:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrEmptyFilename is reported for records that carry no filename.
var ErrEmptyFilename = errors.New("no filename in manifest line")

// Result is the outcome of checking one record.
type Result struct {
	Outcome Outcome

	// Sum is the recomputed checksum. Zero when Outcome is LookupFailed.
	Sum checksum.Sum

	// Bytes is the number of bytes hashed.
	Bytes int64

	// Err is the I/O error when Outcome is LookupFailed.
	Err error
}

// Verifier checks manifest records against the filesystem.
type Verifier struct {
	// Algorithm is the checksum function the manifest was written with.
	Algorithm checksum.Algorithm

	// BaseDir, if set, is joined to relative filenames before opening them.
	BaseDir string
}

// Check recomputes the checksum of rec.Filename and compares its canonical
// text with rec.Checksum. The comparison is exact: case and surrounding
// whitespace are significant.
func (v Verifier) Check(rec manifest.Record) Result {
	if rec.Filename == "" {
		return Result{Outcome: LookupFailed, Err: ErrEmptyFilename}
	}

	sum, n, err := checksum.File(v.path(rec.Filename), v.Algorithm)
	if err != nil {
		return Result{Outcome: LookupFailed, Bytes: n, Err: err}
	}

	outcome := Mismatch
	if sum.String() == rec.Checksum {
		outcome = Match
	}
	return Result{Outcome: outcome, Sum: sum, Bytes: n}
}

func (v Verifier) path(name string) string {
	if v.BaseDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(v.BaseDir, name)
}
