package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is a unit of background work. Run errors are captured by the runner's
// supervisor log; they are never joined by the submitting path.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Submitter is the narrow surface exposed to task producers.
type Submitter interface {
	Submit(task Task) bool
}

// Runner executes tasks on a fixed set of workers with a per-task timeout.
type Runner struct {
	tasks       chan Task
	workerCount int
	taskTimeout time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopChan    chan struct{}
}

// Config contains runner configuration.
type Config struct {
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
}

// NewRunner creates a background task runner.
func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}
	return &Runner{
		tasks:       make(chan Task, cfg.QueueSize),
		workerCount: cfg.WorkerCount,
		taskTimeout: cfg.TaskTimeout,
		log:         log.With().Str("component", "task-runner").Logger(),
		stopChan:    make(chan struct{}),
	}
}

// Start launches the workers. They drain the queue until Stop is called or
// the context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.log.Info().Int("worker_count", r.workerCount).Msg("starting task runner")
	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go func(id int) {
			defer r.wg.Done()
			r.loop(ctx, id)
		}(i + 1)
	}
}

// Submit enqueues a task without blocking. It returns false when the queue
// is full or the runner is stopping; the task is dropped and logged.
func (r *Runner) Submit(task Task) bool {
	select {
	case <-r.stopChan:
		r.log.Warn().Str("task", task.Name).Msg("runner stopped, task dropped")
		return false
	default:
	}

	select {
	case r.tasks <- task:
		return true
	default:
		r.log.Warn().Str("task", task.Name).Msg("task queue full, task dropped")
		return false
	}
}

// Stop signals workers and waits for in-flight tasks to finish.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info().Msg("all workers stopped")
	case <-time.After(30 * time.Second):
		r.log.Warn().Msg("task runner shutdown timed out")
	}
}

func (r *Runner) loop(ctx context.Context, id int) {
	log := r.log.With().Int("worker", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case task := <-r.tasks:
			r.execute(ctx, log, task)
		}
	}
}

func (r *Runner) execute(ctx context.Context, log zerolog.Logger, task Task) {
	taskCtx, cancel := context.WithTimeout(ctx, r.taskTimeout)
	defer cancel()

	start := time.Now()
	if err := task.Run(taskCtx); err != nil {
		log.Error().Err(err).Str("task", task.Name).Dur("duration", time.Since(start)).Msg("background task failed")
		return
	}
	log.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("background task done")
}
