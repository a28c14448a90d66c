package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
	"github.com/jamesainslie/crcsum/pkg/crcsum/logging"
	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
)

// logger is the package-level logger for scan operations.
var logger = logging.Get("scanner")

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Stats is a snapshot of scan counters.
type Stats struct {
	DirsScanned int64
	FilesFound  int64
	Skipped     int64
	Errors      int64
}

// Scanner performs parallel directory enumeration using fastwalk.
type Scanner struct {
	opts    Options
	exclude []glob.Glob

	dirsScanned atomic.Int64
	filesFound  atomic.Int64
	skipped     atomic.Int64
	errors      atomic.Int64
}

// New creates a new Scanner with the given options.
// It fails only if an exclude pattern does not compile.
func New(opts Options) (*Scanner, error) {
	opts.setDefaults()

	s := &Scanner{opts: opts}
	for _, pattern := range opts.Exclude {
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		s.exclude = append(s.exclude, g)
	}
	return s, nil
}

// Scan validates the root and starts the walk. Entries are delivered on the
// returned channel, which is closed when the walk finishes or ctx is done.
// An unusable root is the only error; unreadable entries below it are
// reported through Options.OnError and skipped.
func (s *Scanner) Scan(ctx context.Context) (<-chan types.FileEntry, error) {
	root := s.opts.Root

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	out := make(chan types.FileEntry, s.opts.Buffer)

	go func() {
		defer close(out)

		conf := fastwalk.Config{
			Follow:     false, // Symlinked directories are never descended.
			NumWorkers: s.opts.Workers,
		}

		logger.Debug("scan started", "root", root, "depth", s.opts.Depth)

		err := fastwalk.Walk(&conf, root, s.walkCallback(ctx, out))
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) &&
			!errors.Is(err, fastwalk.ErrSkipFiles) {
			s.report(root, err)
		}

		logger.Debug("scan finished", "root", root,
			"dirs", s.dirsScanned.Load(), "files", s.filesFound.Load(),
			"skipped", s.skipped.Load(), "errors", s.errors.Load())
	}()

	return out, nil
}

// Stats returns the current scan counters.
func (s *Scanner) Stats() Stats {
	return Stats{
		DirsScanned: s.dirsScanned.Load(),
		FilesFound:  s.filesFound.Load(),
		Skipped:     s.skipped.Load(),
		Errors:      s.errors.Load(),
	}
}

// walkCallback returns the callback function for fastwalk.Walk.
// fastwalk invokes it from several goroutines at once.
func (s *Scanner) walkCallback(ctx context.Context, out chan<- types.FileEntry) fs.WalkDirFunc {
	root := s.opts.Root

	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			s.report(path, relErr)
			return nil
		}

		// fastwalk passes the root itself first.
		if rel == "." {
			if err != nil {
				s.report(path, err)
			}
			return nil
		}

		// Handle errors gracefully - report and continue.
		if err != nil {
			s.report(path, err)
			if d != nil && d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		depth := pathDepth(rel)

		if s.isExcluded(rel) {
			s.skipped.Add(1)
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.dirsScanned.Add(1)
			if s.opts.Depth == types.Flat {
				return fastwalk.SkipDir
			}
			return nil
		}

		if !s.isRegular(path, d) {
			s.skipped.Add(1)
			return nil
		}

		s.filesFound.Add(1)
		entry := types.FileEntry{Path: path, Root: root, Depth: depth}

		select {
		case out <- entry:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// isRegular reports whether d is a regular file or a symlink resolving to one.
// Anything else (dangling links, devices, sockets, links to directories)
// is filtered silently.
func (s *Scanner) isRegular(path string, d fs.DirEntry) bool {
	typ := d.Type()
	if typ.IsRegular() {
		return true
	}
	if typ&fs.ModeSymlink == 0 {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// isExcluded checks the root-relative path and base name against the exclude patterns.
func (s *Scanner) isExcluded(rel string) bool {
	if len(s.exclude) == 0 {
		return false
	}

	slashed := filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, g := range s.exclude {
		if g.Match(slashed) || g.Match(base) {
			return true
		}
	}
	return false
}

// report records an enumeration error without stopping the walk.
func (s *Scanner) report(path string, err error) {
	s.errors.Add(1)
	logger.Debug("skipping unreadable entry", "path", path, "err", err)
	if s.opts.OnError != nil {
		s.opts.OnError(path, err)
	}
}

// pathDepth returns the number of components in a cleaned relative path.
func pathDepth(rel string) int {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}
