package parallel

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// Unit is one independent piece of work submitted to FanOut.
type Unit[T any] func(ctx context.Context) (T, error)

// WorkerPool bounds how many units run at the same time. It holds no
// goroutines between calls; its lifetime and size are whatever the caller
// who constructed it decides.
type WorkerPool struct {
	size   int
	logger log.Logger
}

// NewWorkerPool returns a pool running at most size units concurrently.
func NewWorkerPool(size int) (*WorkerPool, error) {
	if size <= 0 {
		return nil, errors.NewValidationError("size", "worker pool size must be positive", size)
	}
	return &WorkerPool{
		size:   size,
		logger: log.GetLoggerWithName("parallel.pool"),
	}, nil
}

// Size returns the maximum number of concurrently running units.
func (p *WorkerPool) Size() int {
	return p.size
}

// FanOut runs every unit exactly once on pool and waits until all of them
// have returned. results[i] holds the value of units[i] regardless of the
// order in which units complete.
//
// A failing unit does not stop the others; once everything has finished,
// FanOut returns the first error that was observed. A panicking unit is
// reported as *errors.PanicError. The pool never cancels ctx; it is handed
// to the units unchanged.
func FanOut[T any](ctx context.Context, pool *WorkerPool, units []Unit[T]) ([]T, error) {
	if pool == nil {
		return nil, errors.NewValueError("FanOut", "worker pool is nil")
	}

	results := make([]T, len(units))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(pool.size)
	for i, unit := range units {
		g.Go(func() (err error) {
			defer errors.Recover(&err, fmt.Sprintf("unit %d", i))
			v, err := unit(ctx)
			if err != nil {
				return errors.Wrapf(err, "unit %d", i)
			}
			results[i] = v
			return nil
		})
	}
	err := g.Wait()

	pool.logger.Debug("fan-out finished",
		log.OperationKey, log.OperationFanOut,
		log.WorkersKey, pool.size,
		log.UnitsKey, len(units),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return results, err
}
