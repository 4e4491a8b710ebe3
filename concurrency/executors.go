// Package concurrency implements the three process-wide shared executors
// plus a bounded fork/join executor used for structured parallel work.
package concurrency

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/melix/astro4j-sub008/apperrors"
)

// Task is a unit of cancelable work.
type Task func(ctx context.Context) error

// future tracks one submitted task.
type future struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func (f *future) finished() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the task completes and returns its error.
func (f *future) Wait() error {
	<-f.done
	return f.err
}

// registry tracks every in-flight future so interrupt() can cancel them all
// and a background goroutine can scrub completed entries.
type registry struct {
	mu      sync.Mutex
	entries map[*future]struct{}
}

func newRegistry() *registry {
	r := &registry{entries: make(map[*future]struct{})}
	go r.scrubLoop()
	return r
}

func (r *registry) add(f *future) {
	r.mu.Lock()
	r.entries[f] = struct{}{}
	r.mu.Unlock()
}

func (r *registry) scrubLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		r.mu.Lock()
		for f := range r.entries {
			if f.finished() {
				delete(r.entries, f)
			}
		}
		r.mu.Unlock()
	}
}

// interrupt cancels every currently registered future.
func (r *registry) interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for f := range r.entries {
		f.cancel()
	}
}

// Executor runs tasks according to its own concurrency policy.
type Executor struct {
	reg  *registry
	mode mode
	mu   sync.Mutex // only used by the exclusiveIo mode
}

type mode int

const (
	modeAsync mode = iota
	modeAsyncIO
	modeExclusiveIO
)

func newExecutor(m mode) *Executor {
	return &Executor{reg: newRegistry(), mode: m}
}

var (
	once        sync.Once
	asyncExec   *Executor
	asyncIOExec *Executor
	exclExec    *Executor
)

// Async returns the process-wide unbounded CPU-task executor.
func Async() *Executor {
	initSingletons()
	return asyncExec
}

// AsyncIO returns the process-wide one-goroutine-per-submission I/O executor.
func AsyncIO() *Executor {
	initSingletons()
	return asyncIOExec
}

// ExclusiveIO returns the process-wide mutex-serialized I/O executor.
func ExclusiveIO() *Executor {
	initSingletons()
	return exclExec
}

func initSingletons() {
	once.Do(func() {
		asyncExec = newExecutor(modeAsync)
		asyncIOExec = newExecutor(modeAsyncIO)
		exclExec = newExecutor(modeExclusiveIO)
	})
}

// Submit schedules t and returns a future. Exclusive-io submissions block
// the caller until the task completes, matching the collaborator contract
// for operations that must not interleave.
func (e *Executor) Submit(ctx context.Context, t Task) *future {
	childCtx, cancel := context.WithCancel(ctx)
	f := &future{cancel: cancel, done: make(chan struct{})}
	e.reg.add(f)

	run := func() {
		defer close(f.done)
		f.err = t(childCtx)
	}

	switch e.mode {
	case modeExclusiveIO:
		e.mu.Lock()
		defer e.mu.Unlock()
		run()
	default:
		go run()
	}
	return f
}

// Interrupt cancels every task tracked by this executor.
func (e *Executor) Interrupt() { e.reg.interrupt() }

// InterruptAll cancels every task across all three shared executors.
func InterruptAll() {
	initSingletons()
	asyncExec.Interrupt()
	asyncIOExec.Interrupt()
	exclExec.Interrupt()
}

// Sizing reports the CPU topology used to size the fork/join pool, logged
// for diagnostics.
type Sizing struct {
	LogicalCores  int
	PhysicalCores int
	HasAVX2       bool
}

// DetectSizing probes the host CPU via cpuid to choose a sensible default
// permit count and batch width for vector-friendly work.
func DetectSizing() Sizing {
	return Sizing{
		LogicalCores:  runtime.NumCPU(),
		PhysicalCores: cpuid.CPU.PhysicalCores,
		HasAVX2:       cpuid.CPU.Supports(cpuid.AVX2),
	}
}

var errCancelled = apperrors.New(apperrors.CategoryCancelled, "concurrency", context.Canceled)

// ErrCancelled is returned by operations rejected after Interrupt.
func ErrCancelled() error { return errCancelled }
