package concurrency

import (
	"context"
	"sync"

	"github.com/melix/astro4j-sub008/apperrors"
)

// ForkJoin is a bounded structured-parallelism executor. A counting
// semaphore (active/max, guarded by mu and drained via cond) gates the
// number of concurrently running tasks; a task awaiting its own fork
// releases its permit before blocking on WaitFor and re-acquires it on
// completion so it cannot deadlock the pool.
type ForkJoin struct {
	mu     sync.Mutex
	cond   *sync.Cond
	active int
	max    int
}

// forkJoinOwner is the context key under which Submit marks the context
// handed to a running task with the ForkJoin whose permit it holds, so a
// nested WaitFor/ForkJoinRun call on the same pool can detect that it must
// compensate around its blocking wait.
type forkJoinOwner struct{}

func withHeldPermit(ctx context.Context, fj *ForkJoin) context.Context {
	return context.WithValue(ctx, forkJoinOwner{}, fj)
}

func holdsPermit(ctx context.Context, fj *ForkJoin) bool {
	owner, _ := ctx.Value(forkJoinOwner{}).(*ForkJoin)
	return owner == fj
}

// NewForkJoin creates a ForkJoin bounded by maxParallel concurrent tasks.
// maxParallel <= 0 defaults to DetectSizing().LogicalCores.
func NewForkJoin(maxParallel int) *ForkJoin {
	if maxParallel <= 0 {
		maxParallel = DetectSizing().LogicalCores
		if maxParallel <= 0 {
			maxParallel = 1
		}
	}
	fj := &ForkJoin{max: maxParallel}
	fj.cond = sync.NewCond(&fj.mu)
	return fj
}

// acquire blocks until a permit is available or ctx is done, waking on
// every release() via the condition variable.
func (fj *ForkJoin) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryCancelled, "forkjoin.acquire", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				fj.mu.Lock()
				fj.cond.Broadcast()
				fj.mu.Unlock()
			case <-stop:
			}
		}()
	}

	fj.mu.Lock()
	defer fj.mu.Unlock()
	for fj.active >= fj.max {
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(apperrors.CategoryCancelled, "forkjoin.acquire", err)
		}
		fj.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryCancelled, "forkjoin.acquire", err)
	}
	fj.active++
	return nil
}

func (fj *ForkJoin) release() {
	fj.mu.Lock()
	fj.active--
	fj.cond.Broadcast()
	fj.mu.Unlock()
}

// Submit runs t under a permit and returns its future. The context passed
// to t is marked so a nested WaitFor/ForkJoinRun call made from within t,
// on this same ForkJoin, knows to compensate for the permit t is holding.
func (fj *ForkJoin) Submit(ctx context.Context, t Task) *future {
	f := &future{done: make(chan struct{})}
	f.cancel = func() {}
	go func() {
		defer close(f.done)
		if err := fj.acquire(ctx); err != nil {
			f.err = err
			return
		}
		defer fj.release()
		f.err = t(withHeldPermit(ctx, fj))
	}()
	return f
}

// SubmitAndThen runs t, then (on success) runs cont with the same context,
// as a single tracked future.
func (fj *ForkJoin) SubmitAndThen(ctx context.Context, t Task, cont Task) *future {
	return fj.Submit(ctx, func(ctx context.Context) error {
		if err := t(ctx); err != nil {
			return err
		}
		return cont(ctx)
	})
}

// Isolate runs t in a child context that inherits ctx's deadline/values but
// can be canceled independently, sharing the same hook chain conceptually
// (the caller is responsible for wiring hooks; Isolate only manages the
// context lifetime).
func (fj *ForkJoin) Isolate(ctx context.Context, t Task) *future {
	child, cancel := context.WithCancel(ctx)
	f := fj.Submit(child, t)
	original := f.cancel
	f.cancel = func() {
		cancel()
		original()
	}
	return f
}

// ForkJoinResult collects the per-task errors of a ForkJoin call.
type ForkJoinResult struct {
	Errs []error
}

// Err returns the first non-nil error, if any.
func (r ForkJoinResult) Err() error {
	for _, e := range r.Errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// ForkJoinRun submits every task for concurrent execution, blocks until all
// complete, and returns their results.
func (fj *ForkJoin) ForkJoinRun(ctx context.Context, tasks ...Task) ForkJoinResult {
	futures := make([]*future, len(tasks))
	for i, t := range tasks {
		futures[i] = fj.Submit(ctx, t)
	}
	return fj.WaitFor(ctx, futures...)
}

// WaitFor blocks until every given future is done, draining via the
// condition variable rather than one goroutine per future. If ctx carries a
// permit held on this ForkJoin (i.e. WaitFor is called from within a task
// this same pool is running), the permit is released before blocking and
// re-acquired once every future has finished, so a task awaiting its own
// fork cannot starve the pool it holds a seat in.
func (fj *ForkJoin) WaitFor(ctx context.Context, futures ...*future) ForkJoinResult {
	compensating := holdsPermit(ctx, fj)
	if compensating {
		fj.release()
	}

	res := ForkJoinResult{Errs: make([]error, len(futures))}
	pending := len(futures)
	done := make([]bool, len(futures))

	fj.mu.Lock()
	for pending > 0 {
		progressed := false
		for i, f := range futures {
			if !done[i] && f.finished() {
				done[i] = true
				pending--
				progressed = true
			}
		}
		if pending == 0 {
			break
		}
		if !progressed {
			fj.cond.Wait()
		}
	}
	fj.mu.Unlock()

	for i, f := range futures {
		res.Errs[i] = f.Wait()
	}

	if compensating {
		// The permit must be restored unconditionally: the task's own
		// Submit goroutine still holds a deferred release() for it, so
		// reacquiring ignores ctx cancellation rather than leaving the
		// pool's accounting short a permit.
		_ = fj.acquire(context.Background())
	}
	return res
}

// Active reports the number of tasks currently holding a permit.
func (fj *ForkJoin) Active() int {
	fj.mu.Lock()
	defer fj.mu.Unlock()
	return fj.active
}
