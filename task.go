package clusterpoints

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the lifecycle state of a Task.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	}
	return "unknown"
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCanceled
}

// ProgressFunc receives coarse progress in percent (0-100).
type ProgressFunc func(percent int)

// JobFunc is the computation a Task runs. It must return promptly with
// ctx.Err() once ctx is done; the checks are cooperative.
type JobFunc[T any] func(ctx context.Context, report ProgressFunc) (T, error)

// Task runs one JobFunc on a dedicated goroutine and exposes its state,
// progress and result. Callers poll State (or wait on Done) and read Result
// once the task is terminal. A Task runs at most once.
type Task[T any] struct {
	id         uuid.UUID
	name       string
	job        JobFunc[T]
	logger     *zap.Logger
	onProgress ProgressFunc

	progress atomic.Int32
	state    atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	result T
	err    error
	done   chan struct{}
}

// NewTask wraps job in an Idle task. onProgress may be nil; when set it is
// called from the worker goroutine whenever progress advances.
func NewTask[T any](name string, job JobFunc[T], logger *zap.Logger, onProgress ProgressFunc) *Task[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	return &Task[T]{
		id:         id,
		name:       name,
		job:        job,
		logger:     logger.With(zap.String("task_id", id.String()), zap.String("task", name)),
		onProgress: onProgress,
		done:       make(chan struct{}),
	}
}

func (t *Task[T]) ID() uuid.UUID { return t.id }
func (t *Task[T]) Name() string  { return t.name }

// State returns the current lifecycle state.
func (t *Task[T]) State() State { return State(t.state.Load()) }

// Progress returns the last reported progress in percent.
func (t *Task[T]) Progress() int { return int(t.progress.Load()) }

// Done is closed when the task reaches a terminal state.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Start launches the job. Cancelling ctx has the same effect as Cancel.
func (t *Task[T]) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State() != StateIdle {
		return errors.Wrapf(ErrTaskStarted, "task %s is %s", t.name, t.State())
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.state.Store(int32(StateRunning))
	t.logger.Info("task started")

	go t.run(runCtx)
	return nil
}

func (t *Task[T]) run(ctx context.Context) {
	started := time.Now()
	result, err := t.call(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	defer close(t.done)
	t.cancel()

	elapsed := zap.Duration("elapsed", time.Since(started))
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrCanceled)):
		t.err = errors.WithStack(ErrCanceled)
		t.state.Store(int32(StateCanceled))
		t.logger.Warn("task canceled", elapsed)
	case err != nil:
		t.err = err
		t.state.Store(int32(StateFailed))
		t.logger.Error("task failed", zap.Error(err), elapsed)
	default:
		t.result = result
		t.state.Store(int32(StateSucceeded))
		t.logger.Info("task succeeded", elapsed)
	}
}

// call runs the job and turns a panic into an error.
func (t *Task[T]) call(ctx context.Context) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, errors.Newf("task %s panicked: %v", t.name, r)
		}
	}()
	result, err = t.job(ctx, t.report)
	if err == nil {
		t.report(100)
	}
	return result, err
}

// report raises the progress counter; lower or equal values are ignored.
func (t *Task[T]) report(percent int) {
	percent = min(max(percent, 0), 100)
	for {
		cur := t.progress.Load()
		if int32(percent) <= cur {
			return
		}
		if t.progress.CompareAndSwap(cur, int32(percent)) {
			break
		}
	}
	if t.onProgress != nil {
		t.onProgress(percent)
	}
}

// Cancel requests cancellation. An Idle task becomes Canceled at once; a
// Running task becomes Canceled when the job next checks its context.
// Cancelling a terminal task does nothing.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.State() {
	case StateIdle:
		t.err = errors.WithStack(ErrCanceled)
		t.state.Store(int32(StateCanceled))
		close(t.done)
		t.logger.Warn("task canceled before start")
	case StateRunning:
		t.logger.Info("task cancellation requested")
		t.cancel()
	}
}

// Result returns the job's result once the task succeeded. Before that it
// returns ErrTaskNotFinished; for a canceled task ErrCanceled; for a failed
// task the job's error.
func (t *Task[T]) Result() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	switch t.State() {
	case StateSucceeded:
		return t.result, nil
	case StateFailed, StateCanceled:
		return zero, t.err
	}
	return zero, errors.Wrapf(ErrTaskNotFinished, "task %s is %s", t.name, t.State())
}

// Wait blocks until the task is terminal or ctx is done, then returns Result.
// Giving up on ctx does not cancel the task.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Poll is the caller loop: it checks the task every interval until the task
// leaves Running. When ctx ends first, Poll requests cancellation and waits
// for the task to acknowledge it. Poll returns the terminal state, or
// StateIdle at once for a task that was never started.
func Poll[T any](ctx context.Context, t *Task[T], interval time.Duration) State {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if s := t.State(); s.Terminal() || s == StateIdle {
			return s
		}
		select {
		case <-ticker.C:
		case <-t.done:
		case <-ctx.Done():
			t.Cancel()
			<-t.done
			return t.State()
		}
	}
}
