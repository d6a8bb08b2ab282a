// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package matching

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kindred-dev/kindred/internal/metrics"
)

// Task kinds.
const (
	TaskRefresh    = "refresh"
	TaskInvalidate = "invalidate"
)

const (
	defaultQueueSize   = 1024
	defaultTaskTimeout = 5 * time.Second
)

// Task is a unit of cache maintenance scheduled after a successful commit.
type Task struct {
	Kind   string
	UserID int64
	Run    func(ctx context.Context) error
}

// Dispatcher runs cache maintenance tasks on a single worker in FIFO order,
// so maintenance for the same profile is applied in commit order. Task
// failures are logged and dropped. Tasks run with their own timeout and
// are not tied to the request that scheduled them.
type Dispatcher struct {
	queue   chan Task
	timeout time.Duration

	mu      sync.Mutex
	stopped bool
	pending sync.WaitGroup
}

// NewDispatcher returns a dispatcher with the given queue capacity and
// per-task timeout. Non-positive values select defaults.
func NewDispatcher(queueSize int, taskTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if taskTimeout <= 0 {
		taskTimeout = defaultTaskTimeout
	}
	return &Dispatcher{
		queue:   make(chan Task, queueSize),
		timeout: taskTimeout,
	}
}

// Dispatch enqueues t without blocking. When the queue is full or the
// dispatcher has stopped the task is dropped.
func (d *Dispatcher) Dispatch(t Task) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		d.drop(t, "dispatcher stopped")
		return
	}

	d.pending.Add(1)
	select {
	case d.queue <- t:
	default:
		d.pending.Done()
		d.drop(t, "queue full")
	}
}

// Run executes tasks until ctx is done, then drains what is already queued
// and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case t := <-d.queue:
			d.execute(t)
		case <-ctx.Done():
			d.mu.Lock()
			d.stopped = true
			d.mu.Unlock()

			for {
				select {
				case t := <-d.queue:
					d.execute(t)
				default:
					return nil
				}
			}
		}
	}
}

// Wait blocks until every dispatched task has been executed. Callers must
// not Dispatch concurrently with Wait while nothing is pending.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) execute(t Task) {
	defer d.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := t.Run(ctx); err != nil {
		metrics.CacheTasks.WithLabelValues(t.Kind, metrics.ResultError).Inc()
		slog.Warn("cache task failed", "kind", t.Kind, "user_id", t.UserID, "error", err)
		return
	}
	metrics.CacheTasks.WithLabelValues(t.Kind, metrics.ResultOK).Inc()
}

func (d *Dispatcher) drop(t Task, reason string) {
	metrics.CacheTasks.WithLabelValues(t.Kind, "dropped").Inc()
	slog.Warn("cache task dropped", "kind", t.Kind, "user_id", t.UserID, "reason", reason)
}
