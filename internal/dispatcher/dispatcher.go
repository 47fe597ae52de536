// Package dispatcher runs lookup tasks on a fixed-size worker pool.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/metrics"
	"github.com/JakeFAU/weather-lookup/internal/queue/memory"
)

// ErrTaskPanicked wraps the value recovered from a panicking task.
var ErrTaskPanicked = errors.New("task panicked")

// Task is one unit of pool work. Run receives the name of the worker
// executing it.
type Task struct {
	ID   [16]byte
	Name string
	Run  func(ctx context.Context, worker string) error
}

// Summary counts task outcomes for one Run. Skipped tasks were still queued
// when the context ended.
type Summary struct {
	Completed int
	Failed    int
	Skipped   int
}

// Dispatcher fans tasks out to a pool of workers.
type Dispatcher struct {
	workers int
	logger  *zap.Logger
}

// New creates a Dispatcher. workers <= 0 sizes the pool to the CPU count.
func New(workers int, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		workers: workers,
		logger:  logger,
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Run queues every task, starts the workers and blocks until they all exit.
// A failing or panicking task is logged and counted; it never stops its
// siblings.
func (d *Dispatcher) Run(ctx context.Context, tasks []Task) Summary {
	if len(tasks) == 0 {
		return Summary{}
	}
	metrics.Init()
	metrics.SetPoolSize(d.workers)

	queue := memory.NewQueue[Task](len(tasks))
	queued := 0
	for _, task := range tasks {
		if err := queue.Enqueue(ctx, task); err != nil {
			d.logger.Warn("stopped queueing tasks", zap.Error(err))
			break
		}
		queued++
	}
	queue.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary Summary
	)
	for i := 1; i <= d.workers; i++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for {
				task, err := queue.Dequeue(ctx)
				if err != nil {
					if !errors.Is(err, memory.ErrClosed) {
						d.logger.Debug("worker stopping", zap.String("worker", name), zap.Error(err))
					}
					return
				}
				ok := d.runTask(ctx, name, task)
				mu.Lock()
				if ok {
					summary.Completed++
				} else {
					summary.Failed++
				}
				mu.Unlock()
			}
		}(fmt.Sprintf("worker-%d", i))
	}
	wg.Wait()

	summary.Skipped = len(tasks) - summary.Completed - summary.Failed
	d.logger.Info("pool finished",
		zap.Int("workers", d.workers),
		zap.Int("queued", queued),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary
}

// runTask executes task inside a recover boundary and reports whether it
// succeeded.
func (d *Dispatcher) runTask(ctx context.Context, worker string, task Task) (ok bool) {
	logger := d.logger.With(
		zap.String("worker", worker),
		zap.String("task", task.Name),
		zap.String("lookup_id", uuid.UUID(task.ID).String()),
	)
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	status := metrics.TaskSucceeded
	defer func() {
		if r := recover(); r != nil {
			ok = false
			status = metrics.TaskPanicked
			logger.Error("task failed", zap.Error(fmt.Errorf("%w: %v", ErrTaskPanicked, r)), zap.Stack("stack"))
		}
		metrics.ObserveTask(status)
		logger.Info("task completed", zap.String("status", status))
	}()

	if task.Run == nil {
		status = metrics.TaskFailed
		logger.Error("task failed", zap.Error(errors.New("task has no run function")))
		return false
	}
	if err := task.Run(ctx, worker); err != nil {
		status = metrics.TaskFailed
		logger.Error("task failed", zap.Error(err), zap.Stack("stack"))
		return false
	}
	return true
}
