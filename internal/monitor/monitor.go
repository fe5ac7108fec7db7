// Package monitor samples process CPU and memory while workers run.
// Sampling is observational only.
package monitor

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sample is one measurement.
type Sample struct {
	At       time.Time
	CPU      float64 // percent of one core since the previous sample
	HeapMB   float64
	SysMB    float64
	MaxRSSMB float64 // 0 where the platform does not report it
}

// Summary aggregates the samples of one run.
type Summary struct {
	Samples   int
	Duration  time.Duration
	AvgCPU    float64
	PeakCPU   float64
	PeakHeap  float64
	PeakSys   float64
	PeakRSSMB float64
}

// Fields returns the summary as log fields.
func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("samples", s.Samples),
		zap.Duration("duration", s.Duration),
		zap.Float64("avg_cpu_pct", s.AvgCPU),
		zap.Float64("peak_cpu_pct", s.PeakCPU),
		zap.Float64("peak_heap_mb", s.PeakHeap),
		zap.Float64("peak_sys_mb", s.PeakSys),
		zap.Float64("peak_rss_mb", s.PeakRSSMB),
	}
}

// Monitor samples on its own goroutine until Stop.
type Monitor struct {
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	samples []Sample
	start   time.Time

	stop chan struct{}
	done chan struct{}
}

// New returns a monitor sampling every interval. A non-positive interval
// disables sampling; Stop then returns an empty summary.
func New(interval time.Duration, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{interval: interval, log: log}
}

// Start begins sampling.
func (m *Monitor) Start() {
	m.start = time.Now()
	if m.interval <= 0 {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop()
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	prevCPU, prevAt := cpuTime(), time.Now()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			cpu := cpuTime()
			s := measure(now)
			if wall := now.Sub(prevAt); wall > 0 {
				s.CPU = 100 * float64(cpu-prevCPU) / float64(wall)
			}
			prevCPU, prevAt = cpu, now

			m.mu.Lock()
			m.samples = append(m.samples, s)
			m.mu.Unlock()
			m.log.Debug("resource sample",
				zap.Float64("cpu_pct", s.CPU),
				zap.Float64("heap_mb", s.HeapMB))
		}
	}
}

// Stop ends sampling and returns the summary. It is safe to call once.
func (m *Monitor) Stop() Summary {
	if m.stop != nil {
		close(m.stop)
		<-m.done
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return summarize(m.samples, time.Since(m.start))
}

// Samples returns a copy of the samples taken so far.
func (m *Monitor) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sample(nil), m.samples...)
}

func measure(now time.Time) Sample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Sample{
		At:       now,
		HeapMB:   float64(ms.HeapAlloc) / (1 << 20),
		SysMB:    float64(ms.Sys) / (1 << 20),
		MaxRSSMB: maxRSSMB(),
	}
}

func summarize(samples []Sample, d time.Duration) Summary {
	s := Summary{Samples: len(samples), Duration: d}
	if len(samples) == 0 {
		return s
	}
	var total float64
	for _, x := range samples {
		total += x.CPU
		s.PeakCPU = max(s.PeakCPU, x.CPU)
		s.PeakHeap = max(s.PeakHeap, x.HeapMB)
		s.PeakSys = max(s.PeakSys, x.SysMB)
		s.PeakRSSMB = max(s.PeakRSSMB, x.MaxRSSMB)
	}
	s.AvgCPU = total / float64(len(samples))
	return s
}
