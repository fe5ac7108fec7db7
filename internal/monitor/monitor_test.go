package monitor

import (
	"testing"
	"time"
)

func TestMonitor_CollectsSamples(t *testing.T) {
	m := New(5*time.Millisecond, nil)
	m.Start()

	deadline := time.Now().Add(2 * time.Second)
	for len(m.Samples()) < 3 && time.Now().Before(deadline) {
		// Burn a little CPU so the samples are not all zero.
		x := 0
		for i := 0; i < 1e5; i++ {
			x += i
		}
		_ = x
		time.Sleep(time.Millisecond)
	}

	s := m.Stop()
	if s.Samples < 3 {
		t.Fatalf("expected at least 3 samples, got %d", s.Samples)
	}
	if s.PeakHeap <= 0 || s.PeakSys <= 0 {
		t.Errorf("expected positive memory figures, got %+v", s)
	}
	if s.AvgCPU < 0 || s.PeakCPU < s.AvgCPU {
		t.Errorf("inconsistent CPU figures %+v", s)
	}

	// No samples after Stop.
	n := len(m.Samples())
	time.Sleep(20 * time.Millisecond)
	if len(m.Samples()) != n {
		t.Error("monitor kept sampling after Stop")
	}
}

func TestMonitor_Disabled(t *testing.T) {
	m := New(0, nil)
	m.Start()
	s := m.Stop()
	if s.Samples != 0 {
		t.Errorf("expected no samples, got %d", s.Samples)
	}
}

func TestSummarize(t *testing.T) {
	s := summarize([]Sample{
		{CPU: 50, HeapMB: 10, SysMB: 20, MaxRSSMB: 30},
		{CPU: 150, HeapMB: 40, SysMB: 25, MaxRSSMB: 35},
	}, time.Second)
	if s.AvgCPU != 100 || s.PeakCPU != 150 || s.PeakHeap != 40 || s.PeakSys != 25 || s.PeakRSSMB != 35 {
		t.Errorf("unexpected summary %+v", s)
	}
	if len(s.Fields()) != 7 {
		t.Errorf("expected 7 fields, got %d", len(s.Fields()))
	}
}
