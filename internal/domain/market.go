package domain

// Submission is the counterparty name the exchange uses for our own side of a trade.
const Submission = "SUBMISSION"

// Listing describes a tradable symbol.
type Listing struct {
	Symbol       string `json:"symbol"`
	Product      string `json:"product"`
	Denomination string `json:"denomination"`
}

// OrderDepth holds the outstanding quotes for one symbol.
// Buy quantities are positive, sell quantities negative.
type OrderDepth struct {
	BuyOrders  PriceLevels `json:"buy_orders"`
	SellOrders PriceLevels `json:"sell_orders"`
}

// BestBid returns the highest buy price.
func (d OrderDepth) BestBid() (int64, bool) {
	return d.BuyOrders.Max()
}

// BestAsk returns the lowest sell price.
func (d OrderDepth) BestAsk() (int64, bool) {
	return d.SellOrders.Min()
}

// Trade is an executed trade reported by the exchange.
type Trade struct {
	Symbol    string `json:"symbol"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	Timestamp int64  `json:"timestamp"`
}

// ConversionObservation carries the conversion market quote for a product.
type ConversionObservation struct {
	BidPrice      PyFloat `json:"bidPrice"`
	AskPrice      PyFloat `json:"askPrice"`
	TransportFees PyFloat `json:"transportFees"`
	ExportTariff  PyFloat `json:"exportTariff"`
	ImportTariff  PyFloat `json:"importTariff"`
	SugarPrice    PyFloat `json:"sugarPrice"`
	SunlightIndex PyFloat `json:"sunlightIndex"`
}

// Observation groups the non-book market observations of a tick.
type Observation struct {
	PlainValueObservations OrderedMap[int64]                 `json:"plainValueObservations"`
	ConversionObservations OrderedMap[ConversionObservation] `json:"conversionObservations"`
}

// TradingState is the market snapshot handed to the trader every tick.
type TradingState struct {
	TraderData   string                 `json:"traderData"`
	Timestamp    int64                  `json:"timestamp"`
	Listings     OrderedMap[Listing]    `json:"listings"`
	OrderDepths  OrderedMap[OrderDepth] `json:"order_depths"`
	OwnTrades    OrderedMap[[]Trade]    `json:"own_trades"`
	MarketTrades OrderedMap[[]Trade]    `json:"market_trades"`
	Position     OrderedMap[int64]      `json:"position"`
	Observations Observation            `json:"observations"`
}

// Depth returns the order depth for symbol, if the snapshot carries one.
func (s *TradingState) Depth(symbol string) (OrderDepth, bool) {
	return s.OrderDepths.Get(symbol)
}

// PositionOf returns the current position in symbol, zero when absent.
func (s *TradingState) PositionOf(symbol string) int64 {
	pos, _ := s.Position.Get(symbol)
	return pos
}
