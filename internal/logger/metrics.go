package logger

import (
	"encoding/json"
	"sync"
	"time"
)

// TimingStats aggregates the durations recorded under one name.
type TimingStats struct {
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average is Total spread over Count, zero when nothing was recorded.
func (s TimingStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

func (s *TimingStats) add(d time.Duration) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
}

// MarshalJSON renders durations the way time.Duration prints them.
func (s TimingStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"count":   s.Count,
		"total":   s.Total.String(),
		"average": s.Average().String(),
		"min":     s.Min.String(),
		"max":     s.Max.String(),
	})
}

// Snapshot is a point-in-time copy of a Metrics tracker.
type Snapshot struct {
	Counters map[string]int64       `json:"counters"`
	Gauges   map[string]float64     `json:"gauges"`
	Timings  map[string]TimingStats `json:"timings"`
}

// Metrics tracks counters, gauges and timings. All operations are
// thread-safe. Timings keep running aggregates, not individual samples.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]*TimingStats
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]*TimingStats),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Counter returns the current value of a counter.
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// SetGauge sets a gauge, overwriting any previous value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// RecordTiming adds a duration to the named timing.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.timings[name]
	if !ok {
		stats = &TimingStats{}
		m.timings[name] = stats
	}
	stats.add(duration)
}

// Timing returns the aggregate for name.
func (m *Metrics) Timing(name string) TimingStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.timings[name]; ok {
		return *stats
	}
	return TimingStats{}
}

// Snapshot returns a copy of everything tracked so far.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}
	for k, v := range m.gauges {
		snap.Gauges[k] = v
	}
	for k, v := range m.timings {
		snap.Timings[k] = *v
	}
	return snap
}

// DefaultMetrics returns the package-level metrics tracker.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}

// IncrCounter increments a counter on the default tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// SetGauge sets a gauge on the default tracker.
func SetGauge(name string, value float64) {
	defaultMetrics.SetGauge(name, value)
}

// RecordTiming records a timing on the default tracker.
func RecordTiming(name string, duration time.Duration) {
	defaultMetrics.RecordTiming(name, duration)
}
