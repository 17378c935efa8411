package infra

import (
	"math"
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability for the tick loop.
// Uses atomic operations for thread-safety; the Prometheus exporter reads
// them from the scrape goroutine.
type Metrics struct {
	// Counters
	ticksProcessed atomic.Uint64
	ordersEmitted  atomic.Uint64
	fillsTotal     atomic.Uint64
	entries        atomic.Uint64
	takeProfits    atomic.Uint64
	stopLosses     atomic.Uint64
	errorsTotal    atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	lastLineBytes     atomic.Int64
	activeConnections atomic.Int32

	// float64 bits
	realizedPnL   atomic.Uint64
	unrealizedPnL atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records a processed tick with its latency and emitted orders.
func (m *Metrics) RecordTick(latencyNs int64, orders int) {
	m.ticksProcessed.Add(1)
	m.ordersEmitted.Add(uint64(orders))
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordSignal counts a non-hold decision by name.
func (m *Metrics) RecordSignal(signal string) {
	switch signal {
	case "ENTER":
		m.entries.Add(1)
	case "TAKE_PROFIT":
		m.takeProfits.Add(1)
	case "STOP_LOSS":
		m.stopLosses.Add(1)
	}
}

// RecordFills records paper fills.
func (m *Metrics) RecordFills(n int) {
	m.fillsTotal.Add(uint64(n))
}

// RecordPnL stores the latest realized and unrealized PnL.
func (m *Metrics) RecordPnL(realized, unrealized float64) {
	m.realizedPnL.Store(math.Float64bits(realized))
	m.unrealizedPnL.Store(math.Float64bits(unrealized))
}

// RecordLine records the length of the last telemetry line.
func (m *Metrics) RecordLine(bytes int) {
	m.lastLineBytes.Store(int64(bytes))
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementConnections increments active connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksProcessed    uint64
	OrdersEmitted     uint64
	FillsTotal        uint64
	Entries           uint64
	TakeProfits       uint64
	StopLosses        uint64
	ErrorsTotal       uint64
	AvgLatencyNs      int64
	LastLineBytes     int64
	ActiveConnections int32
	RealizedPnL       float64
	UnrealizedPnL     float64
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		TicksProcessed:    m.ticksProcessed.Load(),
		OrdersEmitted:     m.ordersEmitted.Load(),
		FillsTotal:        m.fillsTotal.Load(),
		Entries:           m.entries.Load(),
		TakeProfits:       m.takeProfits.Load(),
		StopLosses:        m.stopLosses.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		AvgLatencyNs:      avgLatency,
		LastLineBytes:     m.lastLineBytes.Load(),
		ActiveConnections: m.activeConnections.Load(),
		RealizedPnL:       math.Float64frombits(m.realizedPnL.Load()),
		UnrealizedPnL:     math.Float64frombits(m.unrealizedPnL.Load()),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksProcessed.Store(0)
	m.ordersEmitted.Store(0)
	m.fillsTotal.Store(0)
	m.entries.Store(0)
	m.takeProfits.Store(0)
	m.stopLosses.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.lastLineBytes.Store(0)
	m.activeConnections.Store(0)
	m.realizedPnL.Store(0)
	m.unrealizedPnL.Store(0)
}
