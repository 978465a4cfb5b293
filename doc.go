// Package scibench is a set of small numeric benchmarks for Go, built on
// gonum.
//
// Each benchmark is a runnable program under examples/ backed by a library
// package:
//
//   - cpu_bound: fans CPU-bound sum-of-squares units onto a fixed-size
//     worker pool (package benchmark, core/parallel).
//   - hist_gradient_boosting: fits a histogram gradient-boosting regressor
//     on synthetic regression data (sklearn/ensemble, sklearn/datasets).
//   - np_copy and np_out: compute sin(cos(X))^3 over a large seeded matrix
//     with a fresh buffer per stage or with one reused buffer (pipeline,
//     ufunc).
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/YuminosukeSato/scibench/core/random"
//	    "github.com/YuminosukeSato/scibench/pipeline"
//	)
//
//	func main() {
//	    X := random.New(42).StandardNormal(1000, 1000)
//
//	    Y, report, err := pipeline.New(pipeline.InPlace).Run(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = Y
//	    log.Printf("%d allocations, %d bytes peak", report.Allocations, report.PeakBytes)
//	}
//
// # Error Handling
//
// Library functions return errors from pkg/errors (ValueError,
// DimensionError, ValidationError, NotFittedError,
// NumericalInstabilityError), all carrying a stack trace from
// github.com/cockroachdb/errors. Use errors.As to inspect them.
//
// # Logging
//
// pkg/log wraps zerolog behind a small Logger interface. The programs call
// log.SetupLogger("warn", os.Stderr), so a successful run writes nothing to
// stderr.
//
// # Randomness
//
// There is no global generator. Build a random.Generator with a seed and
// pass it explicitly; the same seed always produces the same data.
package scibench
