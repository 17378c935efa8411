package domain

// Order is a limit order emitted by the trader.
// Positive quantity buys, negative quantity sells.
type Order struct {
	Symbol   string `json:"symbol"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// OrdersBySymbol groups a tick's orders by symbol in emission order.
type OrdersBySymbol = OrderedMap[[]Order]

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Side reports the direction of the order.
func (o Order) Side() string {
	if o.Quantity < 0 {
		return SideSell
	}
	return SideBuy
}
