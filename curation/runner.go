package curation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// errWorkersSaturated is returned when every worker is busy with another session.
var errWorkersSaturated = errors.New("all collaborator workers are busy")

// antsLoggerAdapter routes the pool's own log output to slog.
type antsLoggerAdapter struct {
	logger *slog.Logger
}

func (a *antsLoggerAdapter) Printf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}

// runner executes collaborator calls on a bounded worker pool so a slow
// generator or store can never hold a request past its timeout.
type runner struct {
	pool *ants.Pool
}

func newRunner(workers int, logger *slog.Logger) (*runner, error) {
	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithLogger(&antsLoggerAdapter{logger: logger}))
	if err != nil {
		return nil, err
	}
	return &runner{pool: pool}, nil
}

func (r *runner) release() {
	r.pool.Release()
}

type outcome[T any] struct {
	value T
	err   error
}

// call runs fn on the pool and waits for it or for the timeout, whichever
// comes first. A non-positive timeout waits only on ctx.
func call[T any](ctx context.Context, r *runner, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan outcome[T], 1)
	err := r.pool.Submit(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome[T]{err: fmt.Errorf("collaborator panic: %v", p)}
			}
		}()
		v, err := fn(ctx)
		done <- outcome[T]{value: v, err: err}
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			return zero, errWorkersSaturated
		}
		return zero, err
	}

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
		}
		return zero, ctx.Err()
	}
}
