// Package tasks is the asynchronous unit-of-work runtime: callers submit a
// payload and get an opaque identifier back immediately; a worker pool
// executes the task out-of-band and records the terminal state.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Task states.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

// ErrTaskNotFound is returned by Store.Get for unknown or expired ids.
var ErrTaskNotFound = errors.New("task not found")

// Task is the durable handle for one unit of work.
type Task struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	State     string          `json:"state"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Handler executes one task. The returned value is recorded as the task
// result; a non-nil error marks the task failed.
type Handler func(ctx context.Context, t *Task) (interface{}, error)

// Store persists task records and the pending-work queue.
type Store interface {
	Save(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Enqueue(ctx context.Context, id string) error
	// Dequeue blocks up to timeout for the next pending task id and
	// returns "" when none arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
}
