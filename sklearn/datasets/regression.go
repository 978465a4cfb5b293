// Package datasets はテスト・ベンチマーク用の合成データセットを生成します。
package datasets

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/random"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// RegressionOption は MakeRegression の設定を変更します。
type RegressionOption func(*regressionConfig)

type regressionConfig struct {
	nInformative int
	bias         float64
	noise        float64
	shuffle      bool
}

// WithInformative は非ゼロ係数を持つ特徴量の数を設定します（既定値 10）。
func WithInformative(n int) RegressionOption {
	return func(c *regressionConfig) {
		c.nInformative = n
	}
}

// WithBias は目的変数に加える切片を設定します。
func WithBias(bias float64) RegressionOption {
	return func(c *regressionConfig) {
		c.bias = bias
	}
}

// WithNoise は目的変数に加えるガウスノイズの標準偏差を設定します。
func WithNoise(noise float64) RegressionOption {
	return func(c *regressionConfig) {
		c.noise = noise
	}
}

// WithShuffle はサンプルと特徴量をシャッフルするかを設定します（既定値 true）。
func WithShuffle(shuffle bool) RegressionOption {
	return func(c *regressionConfig) {
		c.shuffle = shuffle
	}
}

// MakeRegression はランダムな線形回帰問題を生成します。
//
// X は標準正規分布に従い、先頭 nInformative 個の特徴量だけが
// 100·U[0,1) の係数を持ちます。y = X·coef + bias + N(0, noise²) です。
// シャッフルが有効な場合、行を並べ替えたうえで特徴量の列を coef と同じ順序で並べ替えます。
// 返される coef は並べ替え後の列順に対応します。
func MakeRegression(gen *random.Generator, nSamples, nFeatures int, opts ...RegressionOption) (*mat.Dense, *mat.VecDense, *mat.VecDense, error) {
	if gen == nil {
		return nil, nil, nil, errors.NewValueError("MakeRegression", "generator is nil")
	}
	if nSamples <= 0 {
		return nil, nil, nil, errors.NewValidationError("nSamples", "must be positive", nSamples)
	}
	if nFeatures <= 0 {
		return nil, nil, nil, errors.NewValidationError("nFeatures", "must be positive", nFeatures)
	}

	cfg := regressionConfig{nInformative: 10, shuffle: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.nInformative < 0 {
		return nil, nil, nil, errors.NewValidationError("nInformative", "must not be negative", cfg.nInformative)
	}
	if cfg.noise < 0 {
		return nil, nil, nil, errors.NewValidationError("noise", "must not be negative", cfg.noise)
	}
	nInformative := min(cfg.nInformative, nFeatures)

	X := gen.StandardNormal(nSamples, nFeatures)

	coef := mat.NewVecDense(nFeatures, nil)
	for j, u := range gen.Uniform(0, 1, nInformative) {
		coef.SetVec(j, 100*u)
	}

	y := mat.NewVecDense(nSamples, nil)
	y.MulVec(X, coef)
	if cfg.bias != 0 {
		for i := 0; i < nSamples; i++ {
			y.SetVec(i, y.AtVec(i)+cfg.bias)
		}
	}
	if cfg.noise > 0 {
		for i, e := range gen.Normal(0, cfg.noise, nSamples) {
			y.SetVec(i, y.AtVec(i)+e)
		}
	}

	if !cfg.shuffle {
		return X, y, coef, nil
	}

	// 行の並べ替え
	rows := gen.Perm(nSamples)
	Xs := mat.NewDense(nSamples, nFeatures, nil)
	ys := mat.NewVecDense(nSamples, nil)
	for i, src := range rows {
		Xs.SetRow(i, X.RawRowView(src))
		ys.SetVec(i, y.AtVec(src))
	}

	// 列の並べ替え（coef も同じ順序に揃える）
	cols := gen.Perm(nFeatures)
	Xc := mat.NewDense(nSamples, nFeatures, nil)
	coefs := mat.NewVecDense(nFeatures, nil)
	for j, src := range cols {
		for i := 0; i < nSamples; i++ {
			Xc.Set(i, j, Xs.At(i, src))
		}
		coefs.SetVec(j, coef.AtVec(src))
	}

	return Xc, ys, coefs, nil
}
