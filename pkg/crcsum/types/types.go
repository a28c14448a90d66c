// Package types provides core data types for the crcsum checksum utility.
// It includes the enumeration and display modes, the per-file entry produced
// by directory scans, and the summary reported after each invocation.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DepthMode controls how far below the root a directory scan descends.
type DepthMode int

const (
	// Flat enumerates only the root's direct children (depth 1).
	Flat DepthMode = iota

	// Recursive enumerates every depth below the root.
	Recursive
)

// String returns the string representation of the depth mode.
func (m DepthMode) String() string {
	switch m {
	case Flat:
		return "flat"
	case Recursive:
		return "recursive"
	default:
		return "unknown"
	}
}

// DisplayMode controls how a discovered path is printed.
type DisplayMode int

const (
	// Canonical prints the absolute, symlink-resolved path.
	Canonical DisplayMode = iota

	// Local prints the path exactly as it was discovered.
	Local
)

// String returns the string representation of the display mode.
func (m DisplayMode) String() string {
	switch m {
	case Canonical:
		return "canonical"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// ParseDisplayMode parses "local" or "canonical" (case-insensitive).
// An empty string selects Canonical.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "canonical":
		return Canonical, nil
	case "local":
		return Local, nil
	default:
		return Canonical, fmt.Errorf("invalid display mode %q", s)
	}
}

// FileEntry is a regular file discovered by a directory scan.
type FileEntry struct {
	// Path is the file path as discovered, rooted at Root.
	Path string `json:"path"`

	// Root is the directory the scan started from.
	Root string `json:"root"`

	// Depth is the entry's depth relative to Root; direct children are 1.
	Depth int `json:"depth"`
}

// Summary contains per-invocation counters.
// It is informational only and never influences the emitted lines.
type Summary struct {
	// Units is the number of units processed (files or manifest records).
	Units int64 `json:"units"`

	// OK is the number of files hashed successfully, or records that matched.
	OK int64 `json:"ok"`

	// Failed is the number of manifest records whose checksum differed.
	Failed int64 `json:"failed"`

	// Errors is the number of units that could not be opened, read or resolved.
	Errors int64 `json:"errors"`

	// Unreadable is the number of directory entries skipped during
	// enumeration because they could not be read.
	Unreadable int64 `json:"unreadable"`

	// Bytes is the total number of bytes fed through the checksum.
	Bytes int64 `json:"bytes"`

	// Elapsed is the wall time of the invocation.
	Elapsed time.Duration `json:"elapsed"`
}

// HumanBytes returns Bytes formatted with binary (IEC) units.
func (s Summary) HumanBytes() string {
	return FormatSize(s.Bytes)
}

// Throughput returns the hashing rate in human-readable form, e.g. "1.2 GiB/s".
func (s Summary) Throughput() string {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return "n/a"
	}
	return humanize.IBytes(uint64(float64(s.Bytes)/secs)) + "/s"
}

// FormatSize converts a size in bytes to a human-readable string.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
//   - FormatSize(1536*1024) returns "1.5 MiB"
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
