package infra

import (
	"testing"
)

func TestMetrics_RecordTick(t *testing.T) {
	m := &Metrics{}

	m.RecordTick(1000, 1)
	m.RecordTick(2000, 0)
	m.RecordTick(3000, 1)

	snap := m.Snapshot()

	if snap.TicksProcessed != 3 {
		t.Errorf("Expected 3 ticks, got %d", snap.TicksProcessed)
	}
	if snap.OrdersEmitted != 2 {
		t.Errorf("Expected 2 orders, got %d", snap.OrdersEmitted)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgLatencyNs != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgLatencyNs)
	}
}

func TestMetrics_RecordSignal(t *testing.T) {
	m := &Metrics{}

	m.RecordSignal("ENTER")
	m.RecordSignal("TAKE_PROFIT")
	m.RecordSignal("STOP_LOSS")
	m.RecordSignal("STOP_LOSS")
	m.RecordSignal("HOLD")

	snap := m.Snapshot()
	if snap.Entries != 1 || snap.TakeProfits != 1 || snap.StopLosses != 2 {
		t.Errorf("unexpected signal counts: %+v", snap)
	}
}

func TestMetrics_Connections(t *testing.T) {
	m := &Metrics{}

	m.IncrementConnections()
	m.IncrementConnections()

	snap := m.Snapshot()
	if snap.ActiveConnections != 2 {
		t.Errorf("Expected 2 connections, got %d", snap.ActiveConnections)
	}

	m.DecrementConnections()
	snap = m.Snapshot()
	if snap.ActiveConnections != 1 {
		t.Errorf("Expected 1 connection, got %d", snap.ActiveConnections)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordTick(1000, 1)
	m.RecordFills(2)
	m.RecordLine(321)
	m.RecordError()
	m.IncrementConnections()

	m.Reset()
	snap := m.Snapshot()

	if snap.TicksProcessed != 0 {
		t.Error("Expected 0 ticks after reset")
	}
	if snap.FillsTotal != 0 || snap.LastLineBytes != 0 {
		t.Error("Expected fills and line gauge cleared after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.ActiveConnections != 0 {
		t.Error("Expected 0 connections after reset")
	}
}

func TestMetrics_RecordPnL(t *testing.T) {
	m := &Metrics{}
	m.RecordPnL(15, 2.5)

	snap := m.Snapshot()
	if snap.RealizedPnL != 15 || snap.UnrealizedPnL != 2.5 {
		t.Errorf("pnl = %v/%v, want 15/2.5", snap.RealizedPnL, snap.UnrealizedPnL)
	}

	m.Reset()
	if snap := m.Snapshot(); snap.RealizedPnL != 0 || snap.UnrealizedPnL != 0 {
		t.Errorf("pnl after reset = %v/%v", snap.RealizedPnL, snap.UnrealizedPnL)
	}
}
