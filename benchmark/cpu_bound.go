// Package benchmark measures how a fixed batch of CPU-bound units scales on a
// bounded worker pool.
package benchmark

import (
	"context"
	"math/big"
	"math/bits"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// Config describes one benchmark run.
type Config struct {
	// Workers is the pool size callers should construct the pool with.
	Workers int
	// Tasks is the number of identical units submitted.
	Tasks int
	// Size is the exclusive upper bound of each unit's sum.
	Size int
}

// DefaultConfig returns four workers, ten tasks and n = 5,000,000.
func DefaultConfig() Config {
	return Config{Workers: 4, Tasks: 10, Size: 5_000_000}
}

// Validate checks that the configuration describes a runnable batch.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errors.NewValidationError("Workers", "must be positive", c.Workers)
	}
	if c.Tasks < 0 {
		return errors.NewValidationError("Tasks", "must not be negative", c.Tasks)
	}
	if c.Size < 0 {
		return errors.NewValidationError("Size", "must not be negative", c.Size)
	}
	return nil
}

// Report is the outcome of Run.
type Report struct {
	RunID   uuid.UUID
	Workers int
	Tasks   int
	Size    int
	Elapsed time.Duration
	// Results holds each unit's sum, indexed by submission order.
	Results []*big.Int
}

// SumOfSquares returns the exact value of Σ i² for 0 <= i < n. A
// non-positive n yields zero.
//
// The running total is kept in 128 bits: for n = 5,000,000 the sum is about
// 4.2e19, past the range of int64.
func SumOfSquares(n int) *big.Int {
	var hi, lo uint64
	for i := uint64(0); i < uint64(max(n, 0)); i++ {
		sqHi, sqLo := bits.Mul64(i, i)
		var carry uint64
		lo, carry = bits.Add64(lo, sqLo, 0)
		hi += sqHi + carry
	}

	sum := new(big.Int).SetUint64(hi)
	sum.Lsh(sum, 64)
	return sum.Or(sum, new(big.Int).SetUint64(lo))
}

// Run submits cfg.Tasks SumOfSquares(cfg.Size) units to pool, waits for all
// of them and reports the wall time between submission and the last
// completion.
func Run(ctx context.Context, pool *parallel.WorkerPool, cfg Config) (Report, error) {
	if pool == nil {
		return Report{}, errors.NewValueError("benchmark.Run", "worker pool is nil")
	}
	if cfg.Tasks < 0 {
		return Report{}, errors.NewValidationError("Tasks", "must not be negative", cfg.Tasks)
	}
	if cfg.Size < 0 {
		return Report{}, errors.NewValidationError("Size", "must not be negative", cfg.Size)
	}

	report := Report{
		RunID:   uuid.New(),
		Workers: pool.Size(),
		Tasks:   cfg.Tasks,
		Size:    cfg.Size,
	}
	logger := log.GetLoggerWithName("benchmark").With("run_id", report.RunID.String())

	units := make([]parallel.Unit[*big.Int], cfg.Tasks)
	for i := range units {
		units[i] = func(context.Context) (*big.Int, error) {
			return SumOfSquares(cfg.Size), nil
		}
	}

	start := time.Now()
	results, err := parallel.FanOut(ctx, pool, units)
	report.Elapsed = time.Since(start)
	if err != nil {
		logger.Error("cpu-bound run failed", err)
		return report, errors.Wrap(err, "cpu-bound run")
	}
	report.Results = results

	logger.Info("cpu-bound run finished",
		log.WorkersKey, report.Workers,
		log.UnitsKey, report.Tasks,
		"sum_bound", report.Size,
		log.DurationMsKey, report.Elapsed.Milliseconds(),
	)
	return report, nil
}

// ParallelMode reports whether the scheduler may execute more than one
// goroutine at the same instant.
func ParallelMode() bool {
	return runtime.GOMAXPROCS(0) > 1
}
