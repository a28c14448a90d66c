// Package resolve turns a discovered path into the form that is printed next
// to its checksum.
package resolve

import (
	"fmt"
	"path/filepath"

	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
)

// Resolver maps discovered paths to display paths.
type Resolver struct {
	mode types.DisplayMode
}

// New returns a Resolver for the given display mode.
func New(mode types.DisplayMode) *Resolver {
	return &Resolver{mode: mode}
}

// Display returns the path to print for path.
//
// In Local mode the path is returned exactly as given. In Canonical mode it is
// made absolute with every symlink resolved; a path that cannot be resolved
// (for example because it vanished after discovery) yields an error.
func (r *Resolver) Display(path string) (string, error) {
	if r.mode == types.Local {
		return path, nil
	}
	return Canonical(path)
}

// Canonical returns the absolute, symlink-free form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}
