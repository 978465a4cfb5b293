package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/random"
)

func TestFindThresholdsFewDistinctValues(t *testing.T) {
	col := []float64{3, 1, 2, 2, 1, 3}
	got := findThresholds(col, 255)
	assert.Equal(t, []float64{1.5, 2.5}, got)
}

func TestFindThresholdsConstantColumn(t *testing.T) {
	assert.Empty(t, findThresholds([]float64{4, 4, 4}, 255))
	assert.Nil(t, findThresholds(nil, 255))
}

func TestFindThresholdsQuantiles(t *testing.T) {
	col := make([]float64, 1000)
	for i := range col {
		col[i] = float64(i)
	}
	got := findThresholds(col, 4)

	// Positions 249.75, 499.5, 749.25 with the midpoint rule.
	assert.Equal(t, []float64{249.5, 499.5, 749.5}, got)
}

func TestFindThresholdsRespectsMaxBins(t *testing.T) {
	col := random.New(3).Normal(0, 1, 5000)
	got := findThresholds(col, 255)
	require.LessOrEqual(t, len(got), 254)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
}

func TestBinOf(t *testing.T) {
	th := []float64{1.5, 2.5}
	tests := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{1.5, 0}, // equal to a threshold stays left
		{2, 1},
		{2.5, 1},
		{9, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, binOf(th, tt.v), "v=%v", tt.v)
	}
}

func TestBinMapperTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 20,
		2, 30,
	})
	b := newBinMapper(255)
	b.fit(X, random.New(0))

	assert.Equal(t, 3, b.nBins(0))
	assert.Equal(t, 3, b.nBins(1))

	binned := b.transform(X)
	assert.Equal(t, []uint8{0, 1, 2, 1}, binned[0])
	assert.Equal(t, []uint8{0, 0, 1, 2}, binned[1])
}
