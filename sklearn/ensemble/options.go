package ensemble

import (
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

// EarlyStopping controls whether a validation split is held out to stop
// boosting once the validation loss stops improving.
type EarlyStopping int

const (
	// EarlyStoppingAuto enables early stopping when there are more than
	// 10000 samples.
	EarlyStoppingAuto EarlyStopping = iota
	// EarlyStoppingOn always enables early stopping.
	EarlyStoppingOn
	// EarlyStoppingOff disables early stopping.
	EarlyStoppingOff
)

func (e EarlyStopping) String() string {
	switch e {
	case EarlyStoppingAuto:
		return "auto"
	case EarlyStoppingOn:
		return "on"
	case EarlyStoppingOff:
		return "off"
	default:
		return "unknown"
	}
}

// autoEarlyStoppingThreshold is the sample count above which
// EarlyStoppingAuto turns early stopping on.
const autoEarlyStoppingThreshold = 10000

// Option is a function that configures HistGradientBoostingRegressor
type Option func(*HistGradientBoostingRegressor)

// WithLearningRate sets the shrinkage applied to every leaf value
func WithLearningRate(lr float64) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.learningRate = lr
	}
}

// WithMaxIter sets the maximum number of boosting iterations
func WithMaxIter(n int) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.maxIter = n
	}
}

// WithMaxLeafNodes sets the maximum number of leaves per tree
func WithMaxLeafNodes(n int) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.maxLeafNodes = n
	}
}

// WithMaxDepth limits tree depth. Zero means unlimited.
func WithMaxDepth(d int) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.maxDepth = d
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf
func WithMinSamplesLeaf(n int) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.minSamplesLeaf = n
	}
}

// WithL2Regularization sets the L2 penalty on leaf values
func WithL2Regularization(l2 float64) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.l2Regularization = l2
	}
}

// WithMaxBins sets the maximum number of bins per feature (2 to 255)
func WithMaxBins(n int) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.maxBins = n
	}
}

// WithEarlyStopping sets the early stopping mode
func WithEarlyStopping(mode EarlyStopping) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.earlyStopping = mode
	}
}

// WithValidationFraction sets the share of samples held out for early stopping
func WithValidationFraction(f float64) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.validationFraction = f
	}
}

// WithNIterNoChange sets how many iterations without improvement stop training
func WithNIterNoChange(n int) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.nIterNoChange = n
	}
}

// WithTol sets the minimum improvement that counts for early stopping
func WithTol(tol float64) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.tol = tol
	}
}

// WithRandomState seeds the validation split and bin subsampling
func WithRandomState(seed uint64) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.randomState = seed
	}
}

// WithLogger sets the logger used for training diagnostics
func WithLogger(logger log.Logger) Option {
	return func(m *HistGradientBoostingRegressor) {
		m.logger = logger
	}
}

// validateParams checks the hyperparameters before fitting.
func (m *HistGradientBoostingRegressor) validateParams() error {
	switch {
	case m.learningRate <= 0:
		return errors.NewValidationError("learning_rate", "must be positive", m.learningRate)
	case m.maxIter < 1:
		return errors.NewValidationError("max_iter", "must be at least 1", m.maxIter)
	case m.maxLeafNodes < 2:
		return errors.NewValidationError("max_leaf_nodes", "must be at least 2", m.maxLeafNodes)
	case m.maxDepth < 0:
		return errors.NewValidationError("max_depth", "must be zero (unlimited) or positive", m.maxDepth)
	case m.minSamplesLeaf < 1:
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", m.minSamplesLeaf)
	case m.l2Regularization < 0:
		return errors.NewValidationError("l2_regularization", "must not be negative", m.l2Regularization)
	case m.maxBins < 2 || m.maxBins > 255:
		return errors.NewValidationError("max_bins", "must be in [2, 255]", m.maxBins)
	case m.earlyStopping < EarlyStoppingAuto || m.earlyStopping > EarlyStoppingOff:
		return errors.NewValidationError("early_stopping", "unknown mode", int(m.earlyStopping))
	case m.validationFraction <= 0 || m.validationFraction >= 1:
		return errors.NewValidationError("validation_fraction", "must be in (0, 1)", m.validationFraction)
	case m.nIterNoChange < 1:
		return errors.NewValidationError("n_iter_no_change", "must be at least 1", m.nIterNoChange)
	case m.tol < 0:
		return errors.NewValidationError("tol", "must not be negative", m.tol)
	}
	return nil
}
