// Package parallel provides the goroutine fan-out used by the parallel
// accelerator variants.
package parallel

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/accel/internal/config"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns the configuration derived from config.Current.
func DefaultConfig() Config {
	return FromConfig(config.Current())
}

// FromConfig derives the fan-out from c. Zero workers means one per CPU.
func FromConfig(c *config.Config) Config {
	n := c.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// PanicError is a panic recovered from an execution unit.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Protect runs f and converts a panic into a *PanicError.
func Protect(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	f()
	return nil
}

// For executes f(i) for i in [0, n) with at most cfg.NumWorkers goroutines.
// Falls back to sequential execution if parallelism is disabled or n is too
// small. An error or panic ends its chunk; the first one is returned.
func For(n int, f func(i int) error, cfg Config) error {
	if !cfg.Enabled || n < 2*max(cfg.MinChunkSize, 1) {
		return runChunk(0, n, f)
	}

	workers := max(cfg.NumWorkers, 1)
	chunkSize := max((n+workers-1)/workers, cfg.MinChunkSize, 1)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			return runChunk(start, end, f)
		})
	}
	return g.Wait()
}

func runChunk(start, end int, f func(i int) error) (err error) {
	if perr := Protect(func() {
		for i := start; i < end && err == nil; i++ {
			err = f(i)
		}
	}); perr != nil {
		return perr
	}
	return err
}

// Go runs f(i) for i in [0, n) on n goroutines at once, as required when the
// participants synchronize with each other. The first panic is returned
// and abort is called once so that participants blocked on a peer can
// give up.
func Go(n int, f func(i int), abort func()) error {
	var (
		wg    sync.WaitGroup
		once  sync.Once
		mu    sync.Mutex
		first error
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := Protect(func() { f(i) }); err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
				if abort != nil {
					once.Do(abort)
				}
			}
		}()
	}
	wg.Wait()
	return first
}
