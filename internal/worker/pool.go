// Package worker runs a bounded pool of goroutines over a batch of
// independent tasks — one task per archive entry during batch extraction —
// and reassembles their results in the caller's original order.
package worker

import (
	"context"
	"runtime"
	"sync"
)

// Progress reports one completed task, for a CLI progress bar or a
// websocket stream.
type Progress struct {
	Index int
	Err   error
}

type poolOpts struct {
	concurrency int
	failFast    bool
	progressCh  chan<- Progress
}

// Option configures a Pool.
type Option func(*poolOpts)

// WithConcurrency sets the number of worker goroutines. n <= 0 leaves the
// pool's default (runtime.GOMAXPROCS(-1)) in place, so a zero-value CLI
// flag means "use the hardware thread count" rather than "use one worker".
func WithConcurrency(n int) Option {
	return func(o *poolOpts) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithFailFast cancels outstanding and not-yet-started tasks as soon as
// one task returns a non-nil error.
func WithFailFast(v bool) Option {
	return func(o *poolOpts) {
		o.failFast = v
	}
}

// WithProgress delivers one Progress value per completed task. The
// channel is never closed by the pool; the caller owns it.
func WithProgress(ch chan<- Progress) Option {
	return func(o *poolOpts) {
		o.progressCh = ch
	}
}

// Task is one unit of work. It must respect ctx cancellation on anything
// blocking and must release any resource it opens (an archive handle, a
// file) on every exit path, including early return from ctx.Done().
type Task func(ctx context.Context) (any, error)

// Result is one Task's outcome; Run returns it at the task's original index.
type Result struct {
	Value any
	Err   error
}

// Run executes tasks across a bounded pool and returns their results in
// the same order tasks were given, regardless of completion order.
func Run(ctx context.Context, tasks []Task, opts ...Option) []Result {
	o := poolOpts{concurrency: runtime.GOMAXPROCS(-1)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.concurrency <= 0 {
		o.concurrency = 1
	}

	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type indexed struct {
		index int
		task  Task
	}
	workCh := make(chan indexed)
	dispatched := make([]bool, len(tasks))

	var wg sync.WaitGroup
	wg.Add(o.concurrency)
	for i := 0; i < o.concurrency; i++ {
		go func() {
			defer wg.Done()
			for item := range workCh {
				value, err := item.task(runCtx)
				results[item.index] = Result{Value: value, Err: err}
				if o.progressCh != nil {
					o.progressCh <- Progress{Index: item.index, Err: err}
				}
				if err != nil && o.failFast {
					cancel()
				}
			}
		}()
	}

feed:
	for i, t := range tasks {
		select {
		case workCh <- indexed{index: i, task: t}:
			dispatched[i] = true
		case <-runCtx.Done():
			break feed
		}
	}
	close(workCh)
	wg.Wait()

	cancelErr := runCtx.Err()
	if cancelErr != nil {
		for i := range results {
			if !dispatched[i] {
				results[i] = Result{Err: cancelErr}
			}
		}
	}
	return results
}
