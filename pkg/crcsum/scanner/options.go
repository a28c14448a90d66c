// Package scanner enumerates the regular files under a root directory for
// checksumming. It walks the tree in parallel with fastwalk and streams each
// qualifying file on a channel as soon as it is found.
package scanner

import (
	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
)

// Options configures the scanner behavior.
type Options struct {
	// Root is the starting directory for the scan.
	Root string

	// Depth selects flat (direct children only) or recursive enumeration.
	Depth types.DepthMode

	// Exclude contains glob patterns for paths to skip during scanning.
	// Patterns use '/' as separator and are matched against the path
	// relative to Root and against the base name.
	Exclude []string

	// Buffer is the capacity of the entry channel returned by Scan.
	Buffer int

	// Workers is the number of fastwalk goroutines. Zero uses fastwalk's default.
	Workers int

	// OnError is called for every entry that could not be read. The entry
	// is skipped and the scan continues. It must be safe to call from
	// multiple goroutines.
	OnError func(path string, err error)
}

// setDefaults replaces out-of-range values with their defaults.
func (o *Options) setDefaults() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Buffer < 0 {
		o.Buffer = 0
	}
	if o.Workers < 0 {
		o.Workers = 0
	}
}
