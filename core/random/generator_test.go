package random

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestStandardNormalDeterministic(t *testing.T) {
	a := New(42).StandardNormal(64, 64)
	b := New(42).StandardNormal(64, 64)

	// bit-identical, not just approximately equal
	require.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)

	c := New(43).StandardNormal(64, 64)
	assert.False(t, mat.Equal(a, c), "different seeds should give different matrices")
}

func TestStandardNormalShape(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantEmpty  bool
	}{
		{"square", 10, 10, false},
		{"single", 1, 1, false},
		{"rectangular", 3, 7, false},
		{"zero", 0, 0, true},
		{"zero rows", 0, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(1).StandardNormal(tt.rows, tt.cols)
			if tt.wantEmpty {
				assert.True(t, m.IsEmpty())
				return
			}
			r, c := m.Dims()
			assert.Equal(t, tt.rows, r)
			assert.Equal(t, tt.cols, c)
		})
	}
}

func TestStandardNormalMoments(t *testing.T) {
	data := New(7).StandardNormal(200, 200).RawMatrix().Data
	mean, std := stat.MeanStdDev(data, nil)
	assert.InDelta(t, 0.0, mean, 0.02)
	assert.InDelta(t, 1.0, std, 0.02)
}

func TestNormalAndUniform(t *testing.T) {
	g := New(3)

	normal := g.Normal(5, 0.5, 20000)
	mean, std := stat.MeanStdDev(normal, nil)
	assert.InDelta(t, 5.0, mean, 0.02)
	assert.InDelta(t, 0.5, std, 0.02)

	uniform := g.Uniform(0, 100, 20000)
	for _, v := range uniform {
		require.True(t, v >= 0 && v < 100, "value %v out of range", v)
	}
	assert.InDelta(t, 50.0, stat.Mean(uniform, nil), 1.0)
}

func TestPermIsPermutation(t *testing.T) {
	p := New(42).Perm(100)
	seen := make([]bool, 100)
	for _, v := range p {
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	assert.Equal(t, New(42).Perm(100), p)
}

func TestSeedIsKept(t *testing.T) {
	assert.Equal(t, uint64(42), New(42).Seed())
}

func TestSequencesAreFinite(t *testing.T) {
	for _, v := range New(11).Normal(0, 1, 1000) {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}
