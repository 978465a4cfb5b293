// Package pipeline computes f(X) = sin(cos(X))^3 elementwise over a matrix
// using one of two strategies with identical results and different memory
// behaviour.
//
// Allocating gives every stage a fresh result buffer, so the input and three
// full-size buffers are referenced at the end of the call. InPlace allocates one
// buffer for the first stage and lets the remaining stages overwrite it, so
// the working set is the input plus a single buffer. The input matrix is
// never modified by either strategy.
package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
	"github.com/YuminosukeSato/scibench/ufunc"
)

// Strategy selects how intermediate results are buffered.
type Strategy int

const (
	// Allocating gives each stage its own newly allocated output.
	Allocating Strategy = iota
	// InPlace reuses the first stage's output for every later stage.
	InPlace
)

func (s Strategy) String() string {
	switch s {
	case Allocating:
		return "allocating"
	case InPlace:
		return "in_place"
	default:
		return "unknown"
	}
}

// Kernel writes an elementwise transform of src into dst following the
// ufunc buffer rule.
type Kernel func(dst *mat.Dense, src mat.Matrix) (*mat.Dense, error)

// Stage is one elementwise transform of the pipeline.
type Stage struct {
	Name   string
	Kernel Kernel
}

// Stages returns the transforms applied in order: cosine, sine, cube.
func Stages() []Stage {
	return []Stage{
		{Name: "cos", Kernel: ufunc.Cos},
		{Name: "sin", Kernel: ufunc.Sin},
		{Name: "cube", Kernel: func(dst *mat.Dense, src mat.Matrix) (*mat.Dense, error) {
			return ufunc.Pow(dst, src, 3)
		}},
	}
}

// Report describes one Run.
type Report struct {
	Strategy Strategy
	Rows     int
	Cols     int
	// Allocations is the number of matrix buffers the run allocated.
	Allocations int
	// PeakBuffers is the strategy's nominal working set: the input plus
	// every buffer it allocated, counted rather than measured. Heap use
	// is measured separately by performance.MemorySampler.
	PeakBuffers int
	// PeakBytes is PeakBuffers expressed in bytes of float64 data.
	PeakBytes int64
	Elapsed   time.Duration
}

// Pipeline runs the three stages with a fixed strategy.
type Pipeline struct {
	strategy Strategy
	stages   []Stage
	logger   log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-run diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns a pipeline using strategy.
func New(strategy Strategy, opts ...Option) *Pipeline {
	p := &Pipeline{
		strategy: strategy,
		stages:   Stages(),
		logger:   log.GetLoggerWithName("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Strategy returns the pipeline's strategy.
func (p *Pipeline) Strategy() Strategy {
	return p.strategy
}

// Compute returns Y with Y[i,j] = sin(cos(X[i,j]))^3 and the shape of X.
func (p *Pipeline) Compute(X mat.Matrix) (*mat.Dense, error) {
	y, _, err := p.Run(X)
	return y, err
}

// Run is Compute plus a Report of what the run allocated.
func (p *Pipeline) Run(X mat.Matrix) (*mat.Dense, Report, error) {
	if X == nil {
		return nil, Report{}, errors.NewValueError("pipeline.Compute", "input matrix is nil")
	}

	r, c := X.Dims()
	report := Report{Strategy: p.strategy, Rows: r, Cols: c}
	if r == 0 || c == 0 {
		return &mat.Dense{}, report, nil
	}

	start := time.Now()
	var (
		out *mat.Dense
		err error
	)
	switch p.strategy {
	case Allocating:
		out, report.Allocations, err = p.runAllocating(X)
	case InPlace:
		out, report.Allocations, err = p.runInPlace(X)
	default:
		return nil, report, errors.NewValidationError("strategy", "unknown pipeline strategy", int(p.strategy))
	}
	if err != nil {
		return nil, report, errors.Wrapf(err, "pipeline %s", p.strategy)
	}

	report.Elapsed = time.Since(start)
	report.PeakBuffers = 1 + report.Allocations
	report.PeakBytes = int64(report.PeakBuffers) * int64(r) * int64(c) * 8

	p.logger.Debug("pipeline finished",
		log.OperationKey, log.OperationCompute,
		log.StrategyKey, p.strategy.String(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.AllocationsKey, report.Allocations,
		log.MemoryUsageKey, report.PeakBytes,
		log.DurationMsKey, report.Elapsed.Milliseconds(),
	)
	return out, report, nil
}

// runAllocating keeps every intermediate alive until the last stage has run,
// matching a straight-line a, b, c := cos(X), sin(a), b**3.
func (p *Pipeline) runAllocating(X mat.Matrix) (*mat.Dense, int, error) {
	intermediates := make([]*mat.Dense, 0, len(p.stages))
	var in mat.Matrix = X
	for _, st := range p.stages {
		next, err := st.Kernel(nil, in)
		if err != nil {
			return nil, len(intermediates), errors.Wrapf(err, "stage %s", st.Name)
		}
		intermediates = append(intermediates, next)
		in = next
	}
	return intermediates[len(intermediates)-1], len(intermediates), nil
}

// runInPlace allocates the first stage's output and reuses it afterwards.
func (p *Pipeline) runInPlace(X mat.Matrix) (*mat.Dense, int, error) {
	out, err := p.stages[0].Kernel(nil, X)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "stage %s", p.stages[0].Name)
	}
	for _, st := range p.stages[1:] {
		if _, err := st.Kernel(out, out); err != nil {
			return nil, 1, errors.Wrapf(err, "stage %s", st.Name)
		}
	}
	return out, 1, nil
}

// ComputeAllocating runs the allocating strategy with default options.
func ComputeAllocating(X mat.Matrix) (*mat.Dense, error) {
	return New(Allocating).Compute(X)
}

// ComputeInPlace runs the in-place strategy with default options.
func ComputeInPlace(X mat.Matrix) (*mat.Dense, error) {
	return New(InPlace).Compute(X)
}
