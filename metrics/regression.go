// Package metrics は回帰モデルの評価指標を提供します。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// checkPair は評価指標の共通入力検証です。
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	if yTrue.IsEmpty() || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() {
		return 0, errors.NewDimensionError(op, n, 0, 0)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// residuals は yTrue - yPred を新しいスライスとして返します。
func residuals(yTrue, yPred *mat.VecDense) []float64 {
	n := yTrue.Len()
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return diff
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	diff := residuals(yTrue, yPred)
	return floats.Dot(diff, diff) / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score は決定係数（R²）を計算する
//
// yTrue の分散が0の場合、予測が完全一致なら1、そうでなければ0を返します。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	truth := make([]float64, n)
	for i := range truth {
		truth[i] = yTrue.AtVec(i)
	}
	yMean := stat.Mean(truth, nil)

	// 全変動（TSS）と残差変動（RSS）
	diff := residuals(yTrue, yPred)
	rss := floats.Dot(diff, diff)
	floats.AddConst(-yMean, truth)
	tss := floats.Dot(truth, truth)

	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}
