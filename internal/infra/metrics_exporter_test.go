package infra

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsCollector_Gather(t *testing.T) {
	m := &Metrics{}
	m.RecordTick(1000, 1)
	m.RecordSignal("TAKE_PROFIT")
	m.RecordPnL(15, -2.5)

	mfs, err := NewMetricsRegistry(m).Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	got := make(map[string]float64)
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range metric.GetLabel() {
				name += "/" + l.GetValue()
			}
			if c := metric.GetCounter(); c != nil {
				got[name] = c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				got[name] = g.GetValue()
			}
		}
	}

	if got["resin_ticks_total"] != 1 {
		t.Errorf("resin_ticks_total = %v, want 1", got["resin_ticks_total"])
	}
	if got["resin_pnl/realized"] != 15 || got["resin_pnl/unrealized"] != -2.5 {
		t.Errorf("pnl gauges = %v/%v, want 15/-2.5", got["resin_pnl/realized"], got["resin_pnl/unrealized"])
	}
	if got["resin_signals_total/take_profit"] != 1 {
		t.Errorf("take_profit signals = %v, want 1", got["resin_signals_total/take_profit"])
	}
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := &Metrics{}
	m.RecordFills(3)

	srv := httptest.NewServer(promhttp.HandlerFor(NewMetricsRegistry(m), promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "resin_fills_total 3") {
		t.Errorf("scrape output missing fills counter:\n%s", body)
	}
}
