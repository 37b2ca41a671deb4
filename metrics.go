package main

import (
	"sync"
	"time"
)

// MetricsCollector accumulates run counters and reports throughput at a
// fixed interval. Counters are cumulative for the process lifetime.
type MetricsCollector struct {
	mu sync.Mutex

	steps     int64
	fallbacks int64

	lastReport time.Time
	lastSteps  int64

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMetricsCollector creates a collector reporting every interval.
func NewMetricsCollector(interval time.Duration) *MetricsCollector {
	return &MetricsCollector{
		interval:   interval,
		lastReport: time.Now(),
		stopCh:     make(chan struct{}),
	}
}

// RecordSteps adds completed simulation steps.
func (m *MetricsCollector) RecordSteps(n int) {
	m.mu.Lock()
	m.steps += int64(n)
	m.mu.Unlock()
}

// RecordFallback counts a remote driver failure that switched the run to
// the local engine.
func (m *MetricsCollector) RecordFallback() {
	m.mu.Lock()
	m.fallbacks++
	m.mu.Unlock()
}

// Snapshot returns the cumulative counters.
func (m *MetricsCollector) Snapshot() (steps, fallbacks int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps, m.fallbacks
}

// Start launches the periodic reporter.
func (m *MetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.report()
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop halts the reporter.
func (m *MetricsCollector) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *MetricsCollector) report() {
	m.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(m.lastReport).Seconds()
	delta := m.steps - m.lastSteps
	fallbacks := m.fallbacks
	m.lastReport = now
	m.lastSteps = m.steps
	m.mu.Unlock()

	if delta == 0 {
		return
	}
	rate := float64(delta) / elapsed
	GetLogger().Infof("Throughput %.2f steps/s, remote fallbacks %d", rate, fallbacks)
}

var metrics = NewMetricsCollector(10 * time.Second)
