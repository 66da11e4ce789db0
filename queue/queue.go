// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package queue orders tasks on a device.
//
// A blocking queue runs every task inside Enqueue on the calling
// goroutine. A non-blocking queue returns immediately and runs tasks in
// FIFO order on its own goroutine; Wait reports their errors.
package queue

import (
	"github.com/born-ml/accel/dev"
	"github.com/born-ml/accel/internal/queue"
)

// Queue is a FIFO of tasks bound to one device.
type Queue = queue.Queue

// Behavior selects when Enqueue returns.
type Behavior = queue.Behavior

// Queue behaviors.
const (
	Blocking    Behavior = queue.Blocking
	NonBlocking Behavior = queue.NonBlocking
)

// Task is work a queue can run.
type Task = queue.Task

// TaskFunc adapts a function to Task.
type TaskFunc = queue.TaskFunc

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = queue.ErrQueueClosed

// New returns a queue on d.
func New(d *dev.Device, b Behavior) *Queue { return queue.New(d, b) }
