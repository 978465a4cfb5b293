package ensemble

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/core/random"
)

// binSubsample caps the number of rows used to compute bin thresholds.
const binSubsample = 200_000

// binMapper maps continuous feature values to small integer bins.
type binMapper struct {
	maxBins int
	// thresholds[f] holds the sorted upper edges of every bin of feature f
	// except the last one.
	thresholds [][]float64
}

func newBinMapper(maxBins int) *binMapper {
	return &binMapper{maxBins: maxBins}
}

// fit computes per-feature thresholds from X. When X has more than
// binSubsample rows a random subset of that size is used.
func (b *binMapper) fit(X *mat.Dense, gen *random.Generator) {
	rows, cols := X.Dims()

	sample := make([]int, rows)
	for i := range sample {
		sample[i] = i
	}
	if rows > binSubsample {
		sample = gen.Perm(rows)[:binSubsample]
	}

	b.thresholds = make([][]float64, cols)
	parallel.Parallelize(cols, func(start, end int) {
		col := make([]float64, len(sample))
		for f := start; f < end; f++ {
			for k, i := range sample {
				col[k] = X.At(i, f)
			}
			b.thresholds[f] = findThresholds(col, b.maxBins)
		}
	})
}

// nBins returns the number of bins of feature f.
func (b *binMapper) nBins(f int) int {
	return len(b.thresholds[f]) + 1
}

// transform returns the feature-major binned representation of X:
// binned[f][i] is the bin of X[i, f].
func (b *binMapper) transform(X mat.Matrix) [][]uint8 {
	rows, cols := X.Dims()
	binned := make([][]uint8, cols)
	parallel.Parallelize(cols, func(start, end int) {
		for f := start; f < end; f++ {
			th := b.thresholds[f]
			out := make([]uint8, rows)
			for i := 0; i < rows; i++ {
				out[i] = uint8(binOf(th, X.At(i, f)))
			}
			binned[f] = out
		}
	})
	return binned
}

// binOf returns the number of thresholds strictly below v.
func binOf(thresholds []float64, v float64) int {
	return sort.SearchFloat64s(thresholds, v)
}

// findThresholds returns the bin edges for one feature column. col is
// modified.
//
// With at most maxBins distinct values every distinct value gets its own bin
// and the edges are the midpoints between neighbours. Otherwise the edges
// are the maxBins-1 inner quantiles, computed with the midpoint rule, with
// duplicates removed.
func findThresholds(col []float64, maxBins int) []float64 {
	if len(col) == 0 {
		return nil
	}
	slices.Sort(col)
	distinct := slices.Compact(slices.Clone(col))

	if len(distinct) <= maxBins {
		mids := make([]float64, len(distinct)-1)
		for i := range mids {
			mids[i] = (distinct[i] + distinct[i+1]) * 0.5
		}
		return mids
	}

	n := len(col)
	mids := make([]float64, 0, maxBins-1)
	for k := 1; k < maxBins; k++ {
		pos := float64(k) / float64(maxBins) * float64(n-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		mids = append(mids, (col[lo]+col[hi])*0.5)
	}
	return slices.Compact(mids)
}
