// Package log defines standard attribute keys for numeric workloads.
//
// Using the same keys everywhere keeps log lines from the pipeline, the
// worker pool and the regressor filterable with a single query. Keys follow
// a hierarchical naming convention (e.g. "data.samples", "perf.duration_ms").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "HistGradientBoostingRegressor"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific estimator instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "compute", "fan_out"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component emitted the record.
	ComponentKey = "ml.component"

	// StrategyKey records the execution strategy of an array pipeline.
	// Values: "allocating", "in_place"
	StrategyKey = "pipeline.strategy"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// DataSizeKey indicates the memory size of the data in bytes.
	DataSizeKey = "data.size_bytes"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MemoryUsageKey records memory usage in bytes during the operation.
	MemoryUsageKey = "perf.memory_bytes"

	// AllocationsKey records how many matrix buffers an operation allocated.
	AllocationsKey = "perf.allocations"

	// LossKey records loss value during training or evaluation.
	LossKey = "metrics.loss"

	// IterationKey records the current iteration number.
	IterationKey = "training.iteration"
)

// Concurrency
const (
	// WorkersKey records the size of a worker pool.
	WorkersKey = "pool.workers"

	// UnitsKey records how many units of work were fanned out.
	UnitsKey = "pool.units"
)

// Error and Configuration
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationCompute = "compute"
	OperationFanOut  = "fan_out"
)
