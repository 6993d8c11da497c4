package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunnerExecutesTasks(t *testing.T) {
	runner := NewRunner(Config{WorkerCount: 2, QueueSize: 8, TaskTimeout: time.Second}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)
	defer runner.Stop()

	var ran atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		ok := runner.Submit(Task{
			Name: "count",
			Run: func(ctx context.Context) error {
				if ran.Add(1) == 5 {
					close(done)
				}
				return nil
			},
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("tasks did not finish, ran=%d", ran.Load())
	}
}

func TestRunnerSurvivesTaskError(t *testing.T) {
	runner := NewRunner(Config{WorkerCount: 1, QueueSize: 4, TaskTimeout: time.Second}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)
	defer runner.Stop()

	runner.Submit(Task{
		Name: "failing",
		Run: func(ctx context.Context) error {
			return errors.New("boom")
		},
	})

	done := make(chan struct{})
	runner.Submit(Task{
		Name: "after-failure",
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a task error")
	}
}

func TestRunnerTaskTimeout(t *testing.T) {
	runner := NewRunner(Config{WorkerCount: 1, QueueSize: 4, TaskTimeout: 50 * time.Millisecond}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)
	defer runner.Stop()

	timedOut := make(chan struct{})
	runner.Submit(Task{
		Name: "slow",
		Run: func(taskCtx context.Context) error {
			<-taskCtx.Done()
			close(timedOut)
			return taskCtx.Err()
		},
	})

	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("task context was not cancelled by the timeout")
	}
}

func TestRunnerDropsWhenQueueFull(t *testing.T) {
	runner := NewRunner(Config{WorkerCount: 1, QueueSize: 1, TaskTimeout: time.Second}, zerolog.Nop())
	// Not started: nothing drains the queue.

	block := Task{Name: "fill", Run: func(ctx context.Context) error { return nil }}
	if !runner.Submit(block) {
		t.Fatal("first submit should fit the queue")
	}
	if runner.Submit(block) {
		t.Error("second submit should be dropped")
	}
}

func TestRunnerRejectsAfterStop(t *testing.T) {
	runner := NewRunner(Config{WorkerCount: 1, QueueSize: 4, TaskTimeout: time.Second}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)
	runner.Stop()

	ok := runner.Submit(Task{Name: "late", Run: func(ctx context.Context) error { return nil }})
	if ok {
		t.Error("submit after stop must be rejected")
	}
}
