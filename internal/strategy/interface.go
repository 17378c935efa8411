package strategy

import (
	"github.com/shopspring/decimal"

	"resin_go/internal/domain"
)

// Result is what a strategy hands back to the harness for one tick.
type Result struct {
	Orders      domain.OrdersBySymbol
	Conversions int
	TraderData  string

	// Signal is the decision taken for the traded product.
	Signal Signal

	// Realized and Unrealized PnL of the traded product, marked at the
	// side of the book the position would exit on.
	Realized   decimal.Decimal
	Unrealized decimal.Decimal
}

// OrderCount returns the number of orders across all symbols.
func (r Result) OrderCount() int {
	n := 0
	r.Orders.Range(func(_ string, orders []domain.Order) bool {
		n += len(orders)
		return true
	})
	return n
}

// Logbook receives the free-text lines a strategy wants in the tick's telemetry.
type Logbook interface {
	Printf(format string, args ...any)
}

// Strategy is the interface that all trading strategies must implement.
// It is called synchronously by the Sequencer, once per tick.
type Strategy interface {
	// Run inspects the snapshot and returns the orders for this tick.
	Run(state domain.TradingState) Result
}
