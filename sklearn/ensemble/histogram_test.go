package ensemble

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *histogramBuilder {
	return &histogramBuilder{
		binned: [][]uint8{
			{0, 0, 1, 1, 2, 2},
			{1, 0, 1, 0, 1, 0},
		},
		nBins:     []int{3, 2},
		gradients: []float64{-2, -2, 0, 0, 3, 3},
		hessians:  []float64{1, 1, 1, 1, 1, 1},
	}
}

func TestHistogramBuild(t *testing.T) {
	b := newTestBuilder()
	hist := b.build([]int{0, 1, 2, 3, 4, 5})

	require.Len(t, hist, 2)
	assert.Equal(t, []binStat{
		{sumGradients: -4, sumHessians: 2, count: 2},
		{sumGradients: 0, sumHessians: 2, count: 2},
		{sumGradients: 6, sumHessians: 2, count: 2},
	}, hist[0])
	assert.Equal(t, []binStat{
		{sumGradients: 1, sumHessians: 3, count: 3},
		{sumGradients: 1, sumHessians: 3, count: 3},
	}, hist[1])
}

func TestFeatureThreshold(t *testing.T) {
	assert.Equal(t, minParallelWork/40, featureThreshold(40))
	assert.Equal(t, minParallelWork, featureThreshold(0))
	assert.Equal(t, 0, featureThreshold(minParallelWork+1))
}

func TestHistogramBuildLargeNodeMatchesSequential(t *testing.T) {
	const (
		nFeatures = 40
		nSamples  = 2000
		nBins     = 16
	)
	require.Greater(t, nFeatures, featureThreshold(nSamples))

	b := &histogramBuilder{
		binned:    make([][]uint8, nFeatures),
		nBins:     make([]int, nFeatures),
		gradients: make([]float64, nSamples),
		hessians:  make([]float64, nSamples),
	}
	samples := make([]int, nSamples)
	for i := range samples {
		samples[i] = i
		b.gradients[i] = float64(i%7) - 3
		b.hessians[i] = 1
	}
	for f := range b.binned {
		b.nBins[f] = nBins
		col := make([]uint8, nSamples)
		for i := range col {
			col[i] = uint8((i*(f+1) + f) % nBins)
		}
		b.binned[f] = col
	}

	hist := b.build(samples)
	require.Len(t, hist, nFeatures)
	for f := range b.binned {
		want := make([]binStat, nBins)
		for _, i := range samples {
			st := &want[b.binned[f][i]]
			st.sumGradients += b.gradients[i]
			st.sumHessians += b.hessians[i]
			st.count++
		}
		assert.Equal(t, want, hist[f], "feature %d", f)
	}
}

func TestHistogramSubtractionMatchesDirectBuild(t *testing.T) {
	b := newTestBuilder()
	parent := b.build([]int{0, 1, 2, 3, 4, 5})
	left := b.build([]int{0, 1, 3})
	right := b.build([]int{2, 4, 5})

	assert.Equal(t, right, subtract(parent, left))
}

func TestSplitterFindsSeparatingFeature(t *testing.T) {
	b := newTestBuilder()
	hist := b.build([]int{0, 1, 2, 3, 4, 5})
	s := &splitter{minSamplesLeaf: 1}

	split, ok := s.findBestSplit(hist, 2, 6, 6)
	require.True(t, ok)
	assert.Equal(t, 0, split.feature)
	assert.Equal(t, 1, split.binIdx)
	assert.Equal(t, 4, split.countLeft)
	assert.Equal(t, 2, split.countRight)
	assert.InDelta(t, -4, split.sumGradientsLeft, 1e-12)
	assert.InDelta(t, 6, split.sumGradientsRight, 1e-12)
	// 16/4 + 36/2 - 4/6
	assert.InDelta(t, 4+18-4.0/6, split.gain, 1e-12)
}

func TestSplitterHonoursMinSamplesLeaf(t *testing.T) {
	b := newTestBuilder()
	hist := b.build([]int{0, 1, 2, 3, 4, 5})

	// Feature 0 only separates the gradients with a two-sample side and
	// feature 1 has no gain, so three samples per leaf rules out any split.
	s := &splitter{minSamplesLeaf: 2}
	split, ok := s.findBestSplit(hist, 2, 6, 6)
	require.True(t, ok)
	assert.GreaterOrEqual(t, split.countRight, 2)

	s = &splitter{minSamplesLeaf: 3}
	_, ok = s.findBestSplit(hist, 2, 6, 6)
	assert.False(t, ok)
}

func TestSplitterNoGainOnConstantGradients(t *testing.T) {
	b := newTestBuilder()
	b.gradients = []float64{0, 0, 0, 0, 0, 0}
	hist := b.build([]int{0, 1, 2, 3, 4, 5})

	_, ok := (&splitter{minSamplesLeaf: 1}).findBestSplit(hist, 0, 6, 6)
	assert.False(t, ok)
}

func TestSplitHeapOrdersByGain(t *testing.T) {
	h := &splitHeap{}
	for id, gain := range []float64{1, 5, 3, 5} {
		heap.Push(h, &growingNode{id: id, split: splitInfo{gain: gain}})
	}

	var ids []int
	for h.Len() > 0 {
		ids = append(ids, heap.Pop(h).(*growingNode).id)
	}
	assert.Equal(t, []int{1, 3, 2, 0}, ids)
}
