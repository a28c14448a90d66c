// Package dispatch fans independent units of work out to a fixed pool of
// goroutines.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/jamesainslie/crcsum/pkg/crcsum/logging"
)

var logger = logging.Get("dispatch")

// PanicError wraps a value recovered from a panicking unit.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Pool runs a function over every unit received from a channel.
type Pool[T any] struct {
	// Workers is the number of goroutines. Values below 2 process units
	// sequentially in the calling goroutine.
	Workers int

	// OnPanic is called with the unit whose processing panicked.
	// If nil the panic is only logged.
	OnPanic func(unit T, err *PanicError)
}

// Run calls fn once for every unit received from units and returns when the
// channel is closed and every call has returned. Units are pulled by idle
// workers, so a slow unit never holds up the others. When ctx is done, units
// not yet picked up are drained without being processed.
func (p Pool[T]) Run(ctx context.Context, units <-chan T, fn func(T)) {
	if p.Workers <= 1 {
		p.work(ctx, units, fn)
		return
	}

	var wg sync.WaitGroup
	for range p.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx, units, fn)
		}()
	}
	wg.Wait()
}

func (p Pool[T]) work(ctx context.Context, units <-chan T, fn func(T)) {
	for unit := range units {
		if ctx.Err() != nil {
			continue
		}
		p.call(unit, fn)
	}
}

// call runs fn for a single unit, isolating any panic to that unit.
func (p Pool[T]) call(unit T, fn func(T)) {
	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{Value: r, Stack: debug.Stack()}
			logger.Error("unit panicked", "unit", unit, "panic", r)
			if p.OnPanic != nil {
				p.OnPanic(unit, perr)
			}
		}
	}()
	fn(unit)
}
