package strategy_test

import (
	"testing"

	"resin_go/internal/domain"
	"resin_go/internal/strategy"
)

// BenchmarkDecide measures the per-tick decision cost on a steady hold.
func BenchmarkDecide(b *testing.B) {
	params := strategy.DefaultParams()
	d := depth(
		[]domain.Level{{Price: 9998, Quantity: 10}, {Price: 9996, Quantity: 20}},
		[]domain.Level{{Price: 10002, Quantity: -10}, {Price: 10004, Quantity: -20}},
	)
	st := entryAt(9998)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		strategy.Decide(params, d, 10, st)
	}
}

// BenchmarkTakeProfitStopLoss_Run measures a full tick including log formatting.
func BenchmarkTakeProfitStopLoss_Run(b *testing.B) {
	var log lines
	trader := strategy.NewTakeProfitStopLoss(strategy.DefaultParams(), &log)
	s := snapshot(0, 10, depth([]domain.Level{{Price: 10000, Quantity: 10}}, []domain.Level{{Price: 10002, Quantity: -10}}))
	trader.Run(snapshot(0, 0, depth(nil, []domain.Level{{Price: 9999, Quantity: -10}})))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		s.Timestamp = int64(i) * 100
		trader.Run(s)
		log = log[:0]
	}
}
