package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	tests := []struct {
		name    string
		items   int
		workers int
	}{
		{"empty", 0, 4},
		{"single item", 1, 4},
		{"fewer items than workers", 3, 8},
		{"uneven chunks", 1001, 7},
		{"single worker", 50, 1},
		{"non-positive workers", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.items)
			ParallelizeWorkers(tt.items, tt.workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("item %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestParallelizeUsesAllCPUs(t *testing.T) {
	var mu sync.Mutex
	total := 0
	Parallelize(10000, func(start, end int) {
		mu.Lock()
		total += end - start
		mu.Unlock()
	})
	if total != 10000 {
		t.Errorf("covered %d items, want 10000", total)
	}
}

func TestParallelizeWithThreshold(t *testing.T) {
	calls := int32(0)
	ParallelizeWithThreshold(100, 1000, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 100 {
			t.Errorf("sequential path got range [%d, %d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected a single sequential call, got %d", calls)
	}

	ParallelizeWithThreshold(0, 10, func(start, end int) {
		t.Error("fn must not be called for zero items")
	})
}
