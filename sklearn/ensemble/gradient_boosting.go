// Package ensemble implements histogram-based gradient boosting for
// regression.
package ensemble

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scibench/core/model"
	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/core/random"
	"github.com/YuminosukeSato/scibench/metrics"
	"github.com/YuminosukeSato/scibench/pkg/errors"
	"github.com/YuminosukeSato/scibench/pkg/log"
)

const modelName = "HistGradientBoostingRegressor"

// HistGradientBoostingRegressor is a gradient-boosted ensemble of regression
// trees grown on binned features with the half squared error loss.
type HistGradientBoostingRegressor struct {
	model.BaseEstimator

	learningRate       float64
	maxIter            int
	maxLeafNodes       int
	maxDepth           int
	minSamplesLeaf     int
	l2Regularization   float64
	maxBins            int
	earlyStopping      EarlyStopping
	validationFraction float64
	nIterNoChange      int
	tol                float64
	randomState        uint64

	id     uuid.UUID
	logger log.Logger

	// Learned state
	nFeatures       int
	baseline        float64
	bins            *binMapper
	predictors      []*treePredictor
	nIter           int
	doEarlyStopping bool
	trainScore      []float64
	validationScore []float64
}

var _ model.Regressor = (*HistGradientBoostingRegressor)(nil)

// NewHistGradientBoostingRegressor creates a regressor with the default
// hyperparameters, overridden by opts.
func NewHistGradientBoostingRegressor(opts ...Option) *HistGradientBoostingRegressor {
	m := &HistGradientBoostingRegressor{
		learningRate:       0.1,
		maxIter:            100,
		maxLeafNodes:       31,
		minSamplesLeaf:     20,
		maxBins:            255,
		earlyStopping:      EarlyStoppingAuto,
		validationFraction: 0.1,
		nIterNoChange:      10,
		tol:                1e-7,
		id:                 uuid.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("ensemble.hist_gradient_boosting")
	}
	m.logger = m.logger.With(
		log.ModelNameKey, modelName,
		log.EstimatorIDKey, m.id.String(),
		log.RandomSeedKey, m.randomState,
	)
	return m
}

// Fit trains the ensemble. y must be an n×1 column (a *mat.VecDense works).
func (m *HistGradientBoostingRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, modelName+".Fit")

	if err := m.validateParams(); err != nil {
		return err
	}
	xd, yv, err := m.checkXY("Fit", X, y)
	if err != nil {
		return err
	}

	m.Reset()
	m.predictors = nil
	m.trainScore = nil
	m.validationScore = nil

	start := time.Now()
	rows, cols := xd.Dims()
	m.nFeatures = cols
	m.doEarlyStopping = m.earlyStopping == EarlyStoppingOn ||
		(m.earlyStopping == EarlyStoppingAuto && rows > autoEarlyStoppingThreshold)

	gen := random.New(m.randomState)

	xTrain, yTrain := xd, yv
	var (
		xVal *mat.Dense
		yVal []float64
	)
	if m.doEarlyStopping {
		xTrain, yTrain, xVal, yVal, err = m.trainValidationSplit(gen, xd, yv)
		if err != nil {
			return err
		}
	}
	nTrain, _ := xTrain.Dims()

	m.bins = newBinMapper(m.maxBins)
	m.bins.fit(xTrain, gen)
	binnedTrain := m.bins.transform(xTrain)
	var binnedVal [][]uint8
	if m.doEarlyStopping {
		binnedVal = m.bins.transform(xVal)
	}

	nBins := make([]int, cols)
	for f := range nBins {
		nBins[f] = m.bins.nBins(f)
	}

	m.baseline = stat.Mean(yTrain, nil)
	rawTrain := filled(nTrain, m.baseline)
	rawVal := filled(len(yVal), m.baseline)

	gradients := make([]float64, nTrain)
	hessians := filled(nTrain, 1)
	builder := &histogramBuilder{binned: binnedTrain, nBins: nBins, gradients: gradients, hessians: hessians}
	grower := &treeGrower{
		hist:           builder,
		splitter:       &splitter{l2Regularization: m.l2Regularization, minSamplesLeaf: m.minSamplesLeaf},
		binned:         binnedTrain,
		thresholds:     m.bins.thresholds,
		shrinkage:      m.learningRate,
		maxLeafNodes:   m.maxLeafNodes,
		maxDepth:       m.maxDepth,
		minSamplesLeaf: m.minSamplesLeaf,
	}

	allSamples := make([]int, nTrain)
	for i := range allSamples {
		allSamples[i] = i
	}

	if m.doEarlyStopping {
		if err := m.recordScores(yTrain, rawTrain, yVal, rawVal); err != nil {
			return err
		}
	}

	for iter := 0; iter < m.maxIter; iter++ {
		// Half squared error: gradient = raw - y, hessian = 1.
		for i := range gradients {
			gradients[i] = rawTrain[i] - yTrain[i]
		}

		tree, leaves := grower.grow(allSamples)
		m.predictors = append(m.predictors, tree)
		m.nIter = iter + 1

		for _, leaf := range leaves {
			for _, i := range leaf.samples {
				rawTrain[i] += leaf.value
			}
		}
		if err := errors.CheckNumericalStability("hist_gradient_boosting.update", rawTrain, iter); err != nil {
			return err
		}

		if iter%10 == 0 {
			m.logger.Debug("boosting progress",
				log.IterationKey, iter,
				"n_leaves", tree.nLeaves(),
				"max_depth", tree.maxDepth(),
			)
		}

		if !m.doEarlyStopping {
			continue
		}
		parallel.Parallelize(len(rawVal), func(start, end int) {
			for i := start; i < end; i++ {
				rawVal[i] += tree.predictBinned(binnedVal, i)
			}
		})
		if err := m.recordScores(yTrain, rawTrain, yVal, rawVal); err != nil {
			return err
		}
		if m.shouldStop(m.validationScore) {
			m.logger.Info("early stopping", log.IterationKey, iter,
				log.LossKey, -m.validationScore[len(m.validationScore)-1])
			break
		}
	}

	if m.doEarlyStopping && m.nIter == m.maxIter && !m.shouldStop(m.validationScore) {
		errors.Warn(errors.NewConvergenceWarning(modelName, m.nIter,
			"validation loss was still improving; consider increasing max_iter"))
	}

	m.SetFitted()
	m.logger.Info("fit finished",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.IterationKey, m.nIter,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict returns baseline plus the sum of every tree's leaf value for each
// row of X.
func (m *HistGradientBoostingRegressor) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := m.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.NewValueError(modelName+".Predict", "input matrix is nil")
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError(modelName+".Predict", "empty data")
	}
	if cols != m.nFeatures {
		return nil, errors.NewDimensionError(modelName+".Predict", m.nFeatures, cols, 1)
	}
	if err := errors.CheckMatrix(modelName+".Predict", X, 0); err != nil {
		return nil, err
	}

	xd := mat.DenseCopyOf(X)
	out := make([]float64, rows)
	parallel.Parallelize(rows, func(start, end int) {
		for i := start; i < end; i++ {
			row := xd.RawRowView(i)
			v := m.baseline
			for _, t := range m.predictors {
				v += t.predictRow(row)
			}
			out[i] = v
		}
	})

	m.logger.Debug("predict finished", log.OperationKey, log.OperationPredict, log.SamplesKey, rows)
	return mat.NewVecDense(rows, out), nil
}

// Score returns the coefficient of determination R² of Predict(X) against y.
func (m *HistGradientBoostingRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	if y == nil {
		return 0, errors.NewValueError(modelName+".Score", "target is nil")
	}
	yr, yc := y.Dims()
	if yc != 1 {
		return 0, errors.NewDimensionError(modelName+".Score", 1, yc, 1)
	}
	if yr != pred.Len() {
		return 0, errors.NewDimensionError(modelName+".Score", pred.Len(), yr, 0)
	}
	return metrics.R2Score(mat.NewVecDense(yr, mat.Col(nil, 0, y)), pred)
}

// NIter returns the number of boosting iterations that were run.
func (m *HistGradientBoostingRegressor) NIter() int {
	return m.nIter
}

// DoEarlyStopping reports whether the last Fit held out a validation split.
func (m *HistGradientBoostingRegressor) DoEarlyStopping() bool {
	return m.doEarlyStopping
}

// TrainScore returns the negated half squared error on the training data
// before the first iteration and after each one. It is empty when early
// stopping was not used.
func (m *HistGradientBoostingRegressor) TrainScore() []float64 {
	return append([]float64(nil), m.trainScore...)
}

// ValidationScore is TrainScore on the held-out validation data.
func (m *HistGradientBoostingRegressor) ValidationScore() []float64 {
	return append([]float64(nil), m.validationScore...)
}

// ID returns the identifier attached to this estimator's log records.
func (m *HistGradientBoostingRegressor) ID() uuid.UUID {
	return m.id
}

// checkXY validates the training input and returns X as a dense copy and y
// as a slice.
func (m *HistGradientBoostingRegressor) checkXY(method string, X, y mat.Matrix) (*mat.Dense, []float64, error) {
	op := modelName + "." + method
	if X == nil || y == nil {
		return nil, nil, errors.NewValueError(op, "input is nil")
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	yr, yc := y.Dims()
	if yc != 1 {
		return nil, nil, errors.NewDimensionError(op, 1, yc, 1)
	}
	if yr != rows {
		return nil, nil, errors.NewDimensionError(op, rows, yr, 0)
	}
	if err := errors.CheckMatrix(op, X, 0); err != nil {
		return nil, nil, err
	}
	if err := errors.CheckMatrix(op, y, 0); err != nil {
		return nil, nil, err
	}
	return mat.DenseCopyOf(X), mat.Col(nil, 0, y), nil
}

// trainValidationSplit holds out ceil(validationFraction·n) shuffled rows.
func (m *HistGradientBoostingRegressor) trainValidationSplit(gen *random.Generator, X *mat.Dense, y []float64) (*mat.Dense, []float64, *mat.Dense, []float64, error) {
	rows, cols := X.Dims()
	nVal := int(math.Ceil(m.validationFraction * float64(rows)))
	nTrain := rows - nVal
	if nVal < 1 || nTrain < 1 {
		return nil, nil, nil, nil, errors.NewValueError(modelName+".Fit",
			"too few samples to hold out a validation set")
	}

	perm := gen.Perm(rows)
	take := func(idx []int) (*mat.Dense, []float64) {
		xs := mat.NewDense(len(idx), cols, nil)
		ys := make([]float64, len(idx))
		for k, i := range idx {
			xs.SetRow(k, X.RawRowView(i))
			ys[k] = y[i]
		}
		return xs, ys
	}
	xVal, yVal := take(perm[:nVal])
	xTrain, yTrain := take(perm[nVal:])
	return xTrain, yTrain, xVal, yVal, nil
}

// recordScores appends the negated half squared error of the current raw
// predictions.
func (m *HistGradientBoostingRegressor) recordScores(yTrain, rawTrain, yVal, rawVal []float64) error {
	trainLoss, err := halfSquaredError(yTrain, rawTrain)
	if err != nil {
		return err
	}
	valLoss, err := halfSquaredError(yVal, rawVal)
	if err != nil {
		return err
	}
	if err := errors.CheckScalar("hist_gradient_boosting.validation_loss", valLoss, len(m.validationScore)); err != nil {
		return err
	}
	m.trainScore = append(m.trainScore, -trainLoss)
	m.validationScore = append(m.validationScore, -valLoss)
	return nil
}

// shouldStop reports whether none of the last nIterNoChange scores beat the
// score before them by more than tol.
func (m *HistGradientBoostingRegressor) shouldStop(scores []float64) bool {
	ref := m.nIterNoChange + 1
	if len(scores) < ref {
		return false
	}
	reference := scores[len(scores)-ref] + m.tol
	for _, s := range scores[len(scores)-ref+1:] {
		if s > reference {
			return false
		}
	}
	return true
}

func halfSquaredError(y, raw []float64) (float64, error) {
	mse, err := metrics.MSE(mat.NewVecDense(len(y), y), mat.NewVecDense(len(raw), raw))
	if err != nil {
		return 0, err
	}
	return 0.5 * mse, nil
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
