// Package parallel provides the two concurrency shapes used in scibench:
// chunked data-parallel loops over an index range (Parallelize) and a
// fixed-size worker pool that fans independent units of work out and waits
// for all of them (WorkerPool, FanOut).
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.NumCPU(), fn)
}

// ParallelizeWorkers is Parallelize with an explicit upper bound on goroutines.
func ParallelizeWorkers(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
