// Package queue orders tasks on a device. A blocking queue runs a task
// inside Enqueue; a non-blocking queue runs tasks in FIFO order on its own
// goroutine.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/born-ml/accel/internal/dev"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("queue: closed")

// Behavior selects when Enqueue returns.
type Behavior int

// Behaviors.
const (
	// Blocking runs the task before Enqueue returns.
	Blocking Behavior = iota
	// NonBlocking returns immediately; Wait observes completion.
	NonBlocking
)

// String returns the behavior name.
func (b Behavior) String() string {
	switch b {
	case Blocking:
		return "blocking"
	case NonBlocking:
		return "non-blocking"
	}
	return fmt.Sprintf("Behavior(%d)", int(b))
}

// Task is a unit of work executed on a device.
type Task interface {
	Exec(ctx context.Context, d *dev.Device) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, d *dev.Device) error

// Exec implements Task.
func (f TaskFunc) Exec(ctx context.Context, d *dev.Device) error {
	return f(ctx, d)
}

type item struct {
	ctx  context.Context
	task Task
}

// Queue is an ordered stream of tasks on one device.
type Queue struct {
	device   *dev.Device
	behavior Behavior

	mu      sync.Mutex
	cond    *sync.Cond
	items   []item
	running bool
	idle    chan struct{}
	errs    []error
	closed  bool
	stopped chan struct{}
}

// New returns a queue on d with behavior b.
func New(d *dev.Device, b Behavior) *Queue {
	q := &Queue{device: d, behavior: b, stopped: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	q.idle = closedChan()
	if b == NonBlocking {
		go q.worker()
	} else {
		close(q.stopped)
	}
	slog.Debug("Queue created", "device", d.ID(), "behavior", b.String())
	return q
}

// Device returns the device the queue executes on.
func (q *Queue) Device() *dev.Device {
	return q.device
}

// Behavior returns the queue behavior.
func (q *Queue) Behavior() Behavior {
	return q.behavior
}

// Enqueue submits t. A blocking queue returns the task's error; tasks of a
// blocking queue run one at a time in call order. A non-blocking queue
// returns nil and reports task errors from Wait.
func (q *Queue) Enqueue(ctx context.Context, t Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}

	if q.behavior == Blocking {
		for q.running {
			q.cond.Wait()
		}
		q.running = true
		q.mu.Unlock()

		err := q.exec(ctx, t)

		q.mu.Lock()
		q.running = false
		q.cond.Broadcast()
		q.mu.Unlock()
		return err
	}

	if len(q.items) == 0 && !q.running {
		q.idle = make(chan struct{})
	}
	q.items = append(q.items, item{ctx: ctx, task: t})
	q.cond.Broadcast()
	q.mu.Unlock()
	return nil
}

// Empty reports whether every enqueued task has completed.
func (q *Queue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0 && !q.running
}

// Wait blocks until every task enqueued so far has completed or ctx is
// done. It returns the joined errors of the tasks that failed since the
// previous Wait.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	err := errors.Join(q.errs...)
	q.errs = nil
	return err
}

// Close stops accepting tasks, waits for queued tasks and returns their
// errors.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
	q.mu.Unlock()

	<-q.stopped
	slog.Debug("Queue closed", "device", q.device.ID())
	return q.Wait(context.Background())
}

func (q *Queue) worker() {
	defer close(q.stopped)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		it := q.items[0]
		q.items[0] = item{}
		q.items = q.items[1:]
		q.running = true
		q.mu.Unlock()

		err := q.exec(it.ctx, it.task)

		q.mu.Lock()
		q.running = false
		if err != nil {
			q.errs = append(q.errs, err)
		}
		if len(q.items) == 0 {
			close(q.idle)
		}
		q.mu.Unlock()
	}
}

func (q *Queue) exec(ctx context.Context, t Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := t.Exec(ctx, q.device)
	if err != nil {
		slog.Debug("Queue task failed", "device", q.device.ID(), "error", err)
	}
	return err
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
