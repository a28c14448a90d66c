// Package engine implements the three invocation modes of crcsum: checksum a
// single file, checksum every regular file of a directory (flat or
// recursive), and verify a manifest.
//
// Every mode emits exactly one line per unit through an output.Sink.
// Per-unit failures become error lines and never stop sibling units; only
// an unusable top-level input (file, root directory, manifest) is returned
// as an error wrapping ErrFatal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/crcsum/pkg/crcsum/checksum"
	"github.com/jamesainslie/crcsum/pkg/crcsum/dispatch"
	"github.com/jamesainslie/crcsum/pkg/crcsum/logging"
	"github.com/jamesainslie/crcsum/pkg/crcsum/manifest"
	"github.com/jamesainslie/crcsum/pkg/crcsum/output"
	"github.com/jamesainslie/crcsum/pkg/crcsum/resolve"
	"github.com/jamesainslie/crcsum/pkg/crcsum/scanner"
	"github.com/jamesainslie/crcsum/pkg/crcsum/tuner"
	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
	"github.com/jamesainslie/crcsum/pkg/crcsum/verify"
)

var logger = logging.Get("engine")

// ErrFatal marks errors that prevented an operation from starting.
var ErrFatal = errors.New("fatal")

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }

func (e *fatalError) Unwrap() []error { return []error{ErrFatal, e.err} }

func fatal(err error) error {
	return &fatalError{err: err}
}

// Options configures an Engine.
type Options struct {
	// Workers is the pool size. 0 selects one worker per CPU.
	Workers int

	// Algorithm is the checksum function. Empty selects checksum.DefaultAlgorithm.
	Algorithm checksum.Algorithm

	// Display selects how directory-mode paths are printed.
	Display types.DisplayMode

	// Exclude holds glob patterns skipped by directory scans.
	Exclude []string

	// BaseDir is joined to relative manifest filenames during verification.
	BaseDir string
}

// Engine runs invocation modes against a shared output sink.
type Engine struct {
	opts     Options
	sink     *output.Sink
	resolver *resolve.Resolver
	pool     tuner.OptimalConfig
}

// New creates an Engine. A nil sink writes to the standard streams.
func New(opts Options, sink *output.Sink) *Engine {
	if opts.Algorithm == "" {
		opts.Algorithm = checksum.DefaultAlgorithm
	}
	if sink == nil {
		sink = output.Stdio()
	}

	return &Engine{
		opts:     opts,
		sink:     sink,
		resolver: resolve.New(opts.Display),
		pool:     tuner.CalculateWithOverrides(tuner.Detect(), opts.Workers),
	}
}

// Workers returns the effective pool size.
func (e *Engine) Workers() int {
	return e.pool.Workers
}

// counters accumulates a Summary from concurrent units.
type counters struct {
	units, ok, failed, errs, unreadable, bytes atomic.Int64
	start                                      time.Time
}

func newCounters() *counters {
	return &counters{start: time.Now()}
}

func (c *counters) summary() types.Summary {
	return types.Summary{
		Units:      c.units.Load(),
		OK:         c.ok.Load(),
		Failed:     c.failed.Load(),
		Errors:     c.errs.Load(),
		Unreadable: c.unreadable.Load(),
		Bytes:      c.bytes.Load(),
		Elapsed:    time.Since(c.start),
	}
}

// SingleFile prints the checksum of path, exactly as given. A file that
// cannot be opened or read is fatal.
func (e *Engine) SingleFile(ctx context.Context, path string) (types.Summary, error) {
	c := newCounters()
	c.units.Add(1)

	if err := ctx.Err(); err != nil {
		return c.summary(), err
	}

	sum, n, err := checksum.File(path, e.opts.Algorithm)
	c.bytes.Add(n)
	if err != nil {
		c.errs.Add(1)
		return c.summary(), fatal(err)
	}

	c.ok.Add(1)
	e.sink.Line("%s %s", sum, path)
	return c.summary(), nil
}

// Directory prints "<checksum> <path>" for every regular file under root.
// An empty root means the current directory. A root that cannot be listed
// is fatal; any other failure is reported as "Error processing <path>: ..."
// on the error stream.
func (e *Engine) Directory(ctx context.Context, root string, depth types.DepthMode) (types.Summary, error) {
	c := newCounters()

	if root == "" {
		root = "."
	}

	s, err := scanner.New(scanner.Options{
		Root:    root,
		Depth:   depth,
		Exclude: e.opts.Exclude,
		Buffer:  e.pool.QueueSize,
		Workers: e.pool.Workers,
		OnError: func(string, error) {
			c.unreadable.Add(1)
		},
	})
	if err != nil {
		return c.summary(), fatal(err)
	}

	entries, err := s.Scan(ctx)
	if err != nil {
		return c.summary(), fatal(err)
	}

	logger.Debug("directory run", "root", root, "depth", depth, "display", e.opts.Display,
		"workers", e.pool.Workers, "algorithm", e.opts.Algorithm)

	pool := dispatch.Pool[types.FileEntry]{
		Workers: e.pool.Workers,
		OnPanic: func(entry types.FileEntry, perr *dispatch.PanicError) {
			c.errs.Add(1)
			e.sink.Error("Error processing %s: %v", entry.Path, perr)
		},
	}
	pool.Run(ctx, entries, func(entry types.FileEntry) {
		c.units.Add(1)
		e.hashEntry(entry, c)
	})

	stats := s.Stats()
	logger.Debug("scan stats", "dirs", stats.DirsScanned, "files", stats.FilesFound,
		"skipped", stats.Skipped, "errors", stats.Errors)

	return c.summary(), ctx.Err()
}

// hashEntry computes and prints one directory entry.
func (e *Engine) hashEntry(entry types.FileEntry, c *counters) {
	display, err := e.resolver.Display(entry.Path)
	if err != nil {
		c.errs.Add(1)
		e.sink.Error("Error processing %s: %v", entry.Path, err)
		return
	}

	sum, n, err := checksum.File(entry.Path, e.opts.Algorithm)
	c.bytes.Add(n)
	if err != nil {
		c.errs.Add(1)
		e.sink.Error("Error processing %s: %v", display, err)
		return
	}

	c.ok.Add(1)
	e.sink.Line("%s %s", sum, display)
}

// Verify checks every record of the manifest at manifestPath and prints
// "<filename>: OK" or "<filename>: FAILED". Records whose file cannot be
// read are reported as "Error verifying <filename>: ..." on the error
// stream. A manifest that cannot be opened is fatal.
func (e *Engine) Verify(ctx context.Context, manifestPath string) (types.Summary, error) {
	c := newCounters()

	r, err := manifest.Open(manifestPath)
	if err != nil {
		return c.summary(), fatal(err)
	}

	v := verify.Verifier{Algorithm: e.opts.Algorithm, BaseDir: e.opts.BaseDir}

	logger.Debug("verify run", "manifest", manifestPath, "workers", e.pool.Workers,
		"algorithm", e.opts.Algorithm, "base_dir", e.opts.BaseDir)

	pool := dispatch.Pool[manifest.Record]{
		Workers: e.pool.Workers,
		OnPanic: func(rec manifest.Record, perr *dispatch.PanicError) {
			c.errs.Add(1)
			e.sink.Error("Error verifying %s: %v", rec.Filename, perr)
		},
	}
	pool.Run(ctx, r.Records(ctx), func(rec manifest.Record) {
		c.units.Add(1)
		e.checkRecord(v, rec, c)
	})

	if err := ctx.Err(); err != nil {
		return c.summary(), err
	}
	if err := r.Err(); err != nil {
		return c.summary(), fmt.Errorf("read manifest %s: %w", manifestPath, err)
	}
	return c.summary(), nil
}

// checkRecord verifies and prints one manifest record.
func (e *Engine) checkRecord(v verify.Verifier, rec manifest.Record, c *counters) {
	res := v.Check(rec)
	c.bytes.Add(res.Bytes)

	switch res.Outcome {
	case verify.Match:
		c.ok.Add(1)
		e.sink.Line("%s: %s", rec.Filename, res.Outcome)
	case verify.Mismatch:
		c.failed.Add(1)
		logger.Debug("checksum mismatch", "file", rec.Filename, "line", rec.Line,
			"recorded", rec.Checksum, "computed", res.Sum)
		e.sink.Line("%s: %s", rec.Filename, res.Outcome)
	default:
		c.errs.Add(1)
		e.sink.Error("Error verifying %s: %v", rec.Filename, res.Err)
	}
}
