package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 の列ベクトル。
	Fit(X, y mat.Matrix) error
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for single-target regression models.
type Regressor interface {
	Fitter
	Scorer

	// Predict returns one prediction per row of X.
	Predict(X mat.Matrix) (*mat.VecDense, error)
}
