package ensemble

import (
	"github.com/YuminosukeSato/scibench/core/parallel"
)

// binStat accumulates the gradient statistics of the samples in one bin.
type binStat struct {
	sumGradients float64
	sumHessians  float64
	count        int
}

// histogram holds one []binStat per feature.
type histogram [][]binStat

// width returns the largest number of bins of any feature.
func (h histogram) width() int {
	w := 0
	for _, bins := range h {
		if len(bins) > w {
			w = len(bins)
		}
	}
	return w
}

// minParallelWork is the number of per-element updates below which a loop
// over features runs on the calling goroutine.
const minParallelWork = 1 << 14

// featureThreshold returns the feature count at or below which a loop doing
// perFeature updates per feature stays sequential.
func featureThreshold(perFeature int) int {
	if perFeature < 1 {
		perFeature = 1
	}
	return minParallelWork / perFeature
}

// histogramBuilder builds per-node histograms from feature-major binned data.
type histogramBuilder struct {
	binned    [][]uint8
	nBins     []int
	gradients []float64
	hessians  []float64
}

// build computes the histogram of the given samples. Large nodes are
// processed feature-parallel; each goroutine only writes the histograms of
// its own features.
func (b *histogramBuilder) build(samples []int) histogram {
	hist := make(histogram, len(b.binned))
	parallel.ParallelizeWithThreshold(len(b.binned), featureThreshold(len(samples)), func(start, end int) {
		for f := start; f < end; f++ {
			bins := make([]binStat, b.nBins[f])
			col := b.binned[f]
			for _, i := range samples {
				st := &bins[col[i]]
				st.sumGradients += b.gradients[i]
				st.sumHessians += b.hessians[i]
				st.count++
			}
			hist[f] = bins
		}
	})
	return hist
}

// subtract returns parent minus child, which is the histogram of child's
// sibling.
func subtract(parent, child histogram) histogram {
	out := make(histogram, len(parent))
	parallel.ParallelizeWithThreshold(len(parent), featureThreshold(parent.width()), func(start, end int) {
		for f := start; f < end; f++ {
			bins := make([]binStat, len(parent[f]))
			for k := range bins {
				bins[k] = binStat{
					sumGradients: parent[f][k].sumGradients - child[f][k].sumGradients,
					sumHessians:  parent[f][k].sumHessians - child[f][k].sumHessians,
					count:        parent[f][k].count - child[f][k].count,
				}
			}
			out[f] = bins
		}
	})
	return out
}

// minHessianToSplit is the smallest hessian sum a child may have.
const minHessianToSplit = 1e-3

// splitInfo describes the best split found for a node.
type splitInfo struct {
	gain    float64
	feature int
	// binIdx is the last bin that goes to the left child.
	binIdx int

	sumGradientsLeft  float64
	sumHessiansLeft   float64
	countLeft         int
	sumGradientsRight float64
	sumHessiansRight  float64
	countRight        int
}

// splitter searches node histograms for the split with the largest gain.
type splitter struct {
	l2Regularization float64
	minSamplesLeaf   int
}

// score is G²/(H+λ), the negated loss of a node at its optimal value.
func (s *splitter) score(sumGradients, sumHessians float64) float64 {
	return sumGradients * sumGradients / (sumHessians + s.l2Regularization)
}

// findBestSplit returns the best split of a node with the given totals and
// whether one with positive gain exists. Ties go to the lower feature index
// and then to the lower bin.
func (s *splitter) findBestSplit(hist histogram, sumGradients, sumHessians float64, count int) (splitInfo, bool) {
	perFeature := make([]splitInfo, len(hist))
	found := make([]bool, len(hist))
	parent := s.score(sumGradients, sumHessians)

	parallel.ParallelizeWithThreshold(len(hist), featureThreshold(hist.width()), func(start, end int) {
		for f := start; f < end; f++ {
			perFeature[f], found[f] = s.bestForFeature(f, hist[f], sumGradients, sumHessians, count, parent)
		}
	})

	var best splitInfo
	ok := false
	for f := range perFeature {
		if found[f] && (!ok || perFeature[f].gain > best.gain) {
			best = perFeature[f]
			ok = true
		}
	}
	return best, ok
}

func (s *splitter) bestForFeature(f int, bins []binStat, sumGradients, sumHessians float64, count int, parent float64) (splitInfo, bool) {
	var (
		best      splitInfo
		ok        bool
		gradLeft  float64
		hessLeft  float64
		countLeft int
	)

	// The last bin can never be the left side of a split.
	for k := 0; k < len(bins)-1; k++ {
		gradLeft += bins[k].sumGradients
		hessLeft += bins[k].sumHessians
		countLeft += bins[k].count

		countRight := count - countLeft
		if countRight < s.minSamplesLeaf {
			break
		}
		if countLeft < s.minSamplesLeaf {
			continue
		}

		hessRight := sumHessians - hessLeft
		if hessLeft < minHessianToSplit || hessRight < minHessianToSplit {
			continue
		}
		gradRight := sumGradients - gradLeft

		gain := s.score(gradLeft, hessLeft) + s.score(gradRight, hessRight) - parent
		if gain <= 0 || (ok && gain <= best.gain) {
			continue
		}
		best = splitInfo{
			gain:              gain,
			feature:           f,
			binIdx:            k,
			sumGradientsLeft:  gradLeft,
			sumHessiansLeft:   hessLeft,
			countLeft:         countLeft,
			sumGradientsRight: gradRight,
			sumHessiansRight:  hessRight,
			countRight:        countRight,
		}
		ok = true
	}
	return best, ok
}
