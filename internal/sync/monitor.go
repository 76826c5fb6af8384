// ABOUTME: Drift monitor with bounded history and statistics
// ABOUTME: Tracks follower-vs-expected position error while playback is active
package sync

import (
	"math"
	"sync"
)

const (
	// HistoryCapacity bounds the drift sample history.
	HistoryCapacity = 100

	// DefaultThreshold is the in-sync drift tolerance in seconds.
	DefaultThreshold = 0.05
)

// Stats is a read-only snapshot of drift and correction state.
type Stats struct {
	LastDrift       float64 // signed, seconds
	MaxDrift        float64 // absolute, seconds
	AvgDrift        float64 // absolute, seconds
	Samples         int
	InSync          bool
	Corrections     int
	LastCorrectedAt float64 // master-clock seconds, 0 until first correction
}

// Monitor keeps a bounded circular history of absolute drift
// magnitudes and the derived max/average. It samples only while the
// owner is playing; a paused or detached follower produces no
// samples, so stale corrections can never be justified by old data.
type Monitor struct {
	mu        sync.RWMutex
	threshold float64
	history   [HistoryCapacity]float64
	next      int
	count     int
	lastDrift float64
}

// NewMonitor creates a monitor with the given in-sync threshold.
// A zero threshold selects DefaultThreshold.
func NewMonitor(threshold float64) *Monitor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Monitor{threshold: threshold}
}

// Threshold returns the in-sync tolerance in seconds.
func (m *Monitor) Threshold() float64 {
	return m.threshold
}

// Record appends one signed drift sample. The absolute magnitude
// enters the bounded history, evicting the oldest sample beyond
// capacity.
func (m *Monitor) Record(drift float64) {
	m.mu.Lock()
	m.lastDrift = drift
	m.history[m.next] = math.Abs(drift)
	m.next = (m.next + 1) % HistoryCapacity
	if m.count < HistoryCapacity {
		m.count++
	}
	m.mu.Unlock()
}

// LastDrift returns the most recent signed drift sample.
func (m *Monitor) LastDrift() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastDrift
}

// InSync reports whether the latest drift magnitude is within the
// threshold.
func (m *Monitor) InSync() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.count == 0 {
		return true
	}
	return math.Abs(m.lastDrift) <= m.threshold
}

// Snapshot derives max and average drift from the current history.
func (m *Monitor) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var max, sum float64
	for i := 0; i < m.count; i++ {
		v := m.history[i]
		if v > max {
			max = v
		}
		sum += v
	}
	avg := 0.0
	if m.count > 0 {
		avg = sum / float64(m.count)
	}
	return Stats{
		LastDrift: m.lastDrift,
		MaxDrift:  max,
		AvgDrift:  avg,
		Samples:   m.count,
		InSync:    m.count == 0 || math.Abs(m.lastDrift) <= m.threshold,
	}
}

// Reset discards all history. Called when a new sync run starts;
// statistics survive jumps within a run but not a stop.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.next = 0
	m.count = 0
	m.lastDrift = 0
	m.mu.Unlock()
}
