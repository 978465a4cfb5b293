package benchmark

import (
	"context"
	"math/big"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scibench/core/parallel"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// closedForm returns (n-1)n(2n-1)/6.
func closedForm(n int64) *big.Int {
	a := big.NewInt(n - 1)
	a.Mul(a, big.NewInt(n))
	a.Mul(a, big.NewInt(2*n-1))
	return a.Div(a, big.NewInt(6))
}

func TestSumOfSquares(t *testing.T) {
	tests := []struct {
		n    int
		want int64
	}{
		{-3, 0},
		{0, 0},
		{1, 0},
		{2, 1},
		{4, 14},
		{10, 285},
	}

	for _, tt := range tests {
		assert.Equal(t, 0, SumOfSquares(tt.n).Cmp(big.NewInt(tt.want)), "n=%d", tt.n)
	}
}

func TestSumOfSquaresBeyondInt64(t *testing.T) {
	const n = 5_000_000
	got := SumOfSquares(n)
	want := closedForm(n)

	require.Equal(t, 0, got.Cmp(want), "got %s want %s", got, want)
	assert.False(t, got.IsInt64())
	assert.Equal(t, "41666654166667500000", got.String())
}

func TestRunCollectsEveryTask(t *testing.T) {
	pool, err := parallel.NewWorkerPool(2)
	require.NoError(t, err)

	cfg := Config{Workers: 2, Tasks: 5, Size: 1000}
	report, err := Run(context.Background(), pool, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Equal(t, 2, report.Workers)
	assert.Equal(t, 5, report.Tasks)
	assert.Equal(t, 1000, report.Size)
	assert.Positive(t, report.Elapsed)
	require.Len(t, report.Results, 5)

	want := closedForm(1000)
	for i, r := range report.Results {
		assert.Equal(t, 0, r.Cmp(want), "result %d", i)
	}
}

func TestRunZeroTasks(t *testing.T) {
	pool, err := parallel.NewWorkerPool(1)
	require.NoError(t, err)

	report, err := Run(context.Background(), pool, Config{Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), nil, DefaultConfig())
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))

	pool, err := parallel.NewWorkerPool(1)
	require.NoError(t, err)
	_, err = Run(context.Background(), pool, Config{Workers: 1, Tasks: -1})
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name  string
		cfg   Config
		param string
	}{
		{"no workers", Config{Workers: 0, Tasks: 1, Size: 1}, "Workers"},
		{"negative tasks", Config{Workers: 1, Tasks: -1, Size: 1}, "Tasks"},
		{"negative size", Config{Workers: 1, Tasks: 1, Size: -1}, "Size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, Config{Workers: 4, Tasks: 10, Size: 5_000_000}, DefaultConfig())
}

func TestParallelMode(t *testing.T) {
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)
	assert.False(t, ParallelMode())

	runtime.GOMAXPROCS(2)
	assert.True(t, ParallelMode())
}

func BenchmarkSumOfSquares(b *testing.B) {
	for i := 0; i < b.N; i++ {
		SumOfSquares(100_000)
	}
}
