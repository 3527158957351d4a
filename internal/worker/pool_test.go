package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunPreservesOrder(t *testing.T) {
	tasks := make([]Task, 20)
	for i := 0; i < 20; i++ {
		i := i
		tasks[i] = func(ctx context.Context) (any, error) {
			return i * 2, nil
		}
	}
	results := Run(context.Background(), tasks, WithConcurrency(4))
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("task %d: %v", i, r.Err)
		}
		if r.Value.(int) != i*2 {
			t.Fatalf("task %d: got %v, want %d", i, r.Value, i*2)
		}
	}
}

func TestRunFailFastCancelsRemaining(t *testing.T) {
	var started int32
	boom := errors.New("boom")
	tasks := make([]Task, 50)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (any, error) {
			atomic.AddInt32(&started, 1)
			if i == 0 {
				return nil, boom
			}
			<-ctx.Done()
			return nil, ctx.Err()
		}
	}
	results := Run(context.Background(), tasks, WithConcurrency(1), WithFailFast(true))
	if results[0].Err != boom {
		t.Fatalf("expected first task's error to survive, got %v", results[0].Err)
	}
	foundCancelled := false
	for _, r := range results[1:] {
		if r.Err != nil {
			foundCancelled = true
		}
	}
	if !foundCancelled {
		t.Fatal("expected at least one remaining task to be cancelled or skipped")
	}
}

func TestRunEmptyBatch(t *testing.T) {
	results := Run(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestRunProgressChannelReceivesOneEventPerTask(t *testing.T) {
	progressCh := make(chan Progress, 10)
	tasks := make([]Task, 5)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (any, error) { return nil, nil }
	}
	Run(context.Background(), tasks, WithConcurrency(2), WithProgress(progressCh))
	close(progressCh)
	count := 0
	for range progressCh {
		count++
	}
	if count != 5 {
		t.Fatalf("expected 5 progress events, got %d", count)
	}
}
