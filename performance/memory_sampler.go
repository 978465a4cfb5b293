// Package performance provides runtime measurements for benchmark runs.
package performance

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSampleInterval is used when NewMemorySampler gets a non-positive interval.
const DefaultSampleInterval = 10 * time.Millisecond

// MemoryProfile summarises the heap while a sampler was running.
type MemoryProfile struct {
	StartHeapAlloc uint64
	PeakHeapAlloc  uint64
	// NumGC is the number of GC cycles completed between Start and Stop.
	NumGC    uint32
	Samples  int
	Duration time.Duration
}

// PeakGrowth returns how far the heap rose above its starting size.
func (p MemoryProfile) PeakGrowth() uint64 {
	if p.PeakHeapAlloc < p.StartHeapAlloc {
		return 0
	}
	return p.PeakHeapAlloc - p.StartHeapAlloc
}

// MarshalZerologObject adds the profile to a zerolog event.
func (p MemoryProfile) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("start_heap_alloc", p.StartHeapAlloc).
		Uint64("peak_heap_alloc", p.PeakHeapAlloc).
		Uint64("peak_growth", p.PeakGrowth()).
		Uint32("num_gc", p.NumGC).
		Int("samples", p.Samples).
		Dur("duration", p.Duration)
}

// MemorySampler polls runtime.MemStats on a ticker and keeps the largest
// HeapAlloc it has seen.
type MemorySampler struct {
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	began   time.Time
	profile MemoryProfile
	startGC uint32
}

// NewMemorySampler returns a stopped sampler polling every interval.
func NewMemorySampler(interval time.Duration) *MemorySampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &MemorySampler{interval: interval}
}

// Start records the current heap and begins sampling. Starting a running
// sampler has no effect.
func (s *MemorySampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.profile = MemoryProfile{
		StartHeapAlloc: ms.HeapAlloc,
		PeakHeapAlloc:  ms.HeapAlloc,
		Samples:        1,
	}
	s.startGC = ms.NumGC
	s.began = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.monitor(s.stop, s.done)
}

// Stop takes a final sample, halts the sampler and returns the profile.
// Stopping a sampler that is not running returns the last profile.
func (s *MemorySampler) Stop() MemoryProfile {
	s.mu.Lock()
	if !s.running {
		defer s.mu.Unlock()
		return s.profile
	}
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampleLocked()
	s.profile.Duration = time.Since(s.began)
	s.running = false
	return s.profile
}

func (s *MemorySampler) monitor(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.sampleLocked()
			s.mu.Unlock()
		}
	}
}

func (s *MemorySampler) sampleLocked() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapAlloc > s.profile.PeakHeapAlloc {
		s.profile.PeakHeapAlloc = ms.HeapAlloc
	}
	s.profile.NumGC = ms.NumGC - s.startGC
	s.profile.Samples++
}
