package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dequeueWait = 2 * time.Second

// Runner owns a worker pool that consumes the pending queue and executes
// registered handlers. Submission is non-blocking; running tasks cannot be
// cancelled by callers, only by stopping the runner.
type Runner struct {
	store    Store
	handlers map[string]Handler
	workers  int
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewRunner(store Store, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		store:    store,
		handlers: make(map[string]Handler),
		workers:  workers,
		logger:   logger,
	}
}

// Register binds a handler to a task kind. Must be called before Start.
func (r *Runner) Register(kind string, h Handler) {
	r.handlers[kind] = h
}

// Submit records a pending task and enqueues it, returning the task id
// immediately.
func (r *Runner) Submit(ctx context.Context, kind string, payload interface{}) (string, error) {
	if _, ok := r.handlers[kind]; !ok {
		return "", fmt.Errorf("no handler registered for task kind %q", kind)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	now := time.Now().UTC()
	t := &Task{
		ID:        uuid.New().String(),
		Kind:      kind,
		State:     StatePending,
		Payload:   b,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Save(ctx, t); err != nil {
		return "", err
	}
	if err := r.store.Enqueue(ctx, t.ID); err != nil {
		return "", err
	}
	return t.ID, nil
}

// Poll returns the current state and result of a task.
func (r *Runner) Poll(ctx context.Context, id string) (*Task, error) {
	return r.store.Get(ctx, id)
}

// Start launches the worker pool. Workers run until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("task runner started", zap.Int("workers", r.workers))
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Wait blocks until all workers have exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		id, err := r.store.Dequeue(ctx, dequeueWait)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			r.logger.Error("task dequeue failed", zap.Error(err))
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if id == "" {
			continue
		}
		r.run(ctx, id)
	}
}

func (r *Runner) run(ctx context.Context, id string) {
	t, err := r.store.Get(ctx, id)
	if err != nil {
		r.logger.Error("failed to read task", zap.String("task_id", id), zap.Error(err))
		return
	}

	handler, ok := r.handlers[t.Kind]
	if !ok {
		r.fail(ctx, t, fmt.Sprintf("no handler registered for task kind %q", t.Kind))
		return
	}

	t.State = StateRunning
	t.UpdatedAt = time.Now().UTC()
	if err := r.store.Save(ctx, t); err != nil {
		r.logger.Error("failed to mark task running", zap.String("task_id", id), zap.Error(err))
	}

	result, err := handler(ctx, t)
	if err != nil {
		r.logger.Error("task failed",
			zap.String("task_id", id),
			zap.String("kind", t.Kind),
			zap.Error(err),
		)
		r.fail(ctx, t, err.Error())
		return
	}

	if result != nil {
		b, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			r.fail(ctx, t, fmt.Sprintf("marshal result: %v", marshalErr))
			return
		}
		t.Result = b
	}
	t.State = StateSucceeded
	t.Error = ""
	t.UpdatedAt = time.Now().UTC()
	if err := r.store.Save(ctx, t); err != nil {
		r.logger.Error("failed to record task result", zap.String("task_id", id), zap.Error(err))
	}
}

func (r *Runner) fail(ctx context.Context, t *Task, msg string) {
	t.State = StateFailed
	t.Error = msg
	t.UpdatedAt = time.Now().UTC()
	if err := r.store.Save(ctx, t); err != nil {
		r.logger.Error("failed to record task failure", zap.String("task_id", t.ID), zap.Error(err))
	}
}
