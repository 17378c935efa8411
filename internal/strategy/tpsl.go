package strategy

import (
	"strconv"

	"github.com/shopspring/decimal"

	"resin_go/internal/domain"
)

// Signal is the outcome of one decision.
type Signal int

const (
	SignalHold Signal = iota
	SignalEnter
	SignalTakeProfit
	SignalStopLoss
)

// String returns the string representation of Signal
func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "HOLD"
	case SignalEnter:
		return "ENTER"
	case SignalTakeProfit:
		return "TAKE_PROFIT"
	case SignalStopLoss:
		return "STOP_LOSS"
	default:
		return "UNKNOWN"
	}
}

// Side is the direction of the tracked position.
type Side int

const (
	SideNone Side = iota
	SideLong
)

func (s Side) String() string {
	if s == SideLong {
		return "LONG"
	}
	return "NONE"
}

// EntryState is the per-instrument memory of the engine.
// EntryPrice is nil when no entry is on record.
type EntryState struct {
	EntryPrice *int64
	Side       Side
}

// Entry returns the recorded entry price.
func (e EntryState) Entry() (int64, bool) {
	if e.EntryPrice == nil {
		return 0, false
	}
	return *e.EntryPrice, true
}

// Params configures the take-profit / stop-loss engine.
type Params struct {
	Product       string
	PositionLimit int64
	TakeProfit    int64
	StopLoss      int64
}

// DefaultParams returns the settings the engine was tuned with.
func DefaultParams() Params {
	return Params{
		Product:       "RAINFOREST_RESIN",
		PositionLimit: 50,
		TakeProfit:    3,
		StopLoss:      2,
	}
}

// Decide runs one tick of the entry/exit state machine for a single product.
// A nil depth means the product is absent from the snapshot: nothing happens.
//
// The entry size is capped by the position limit itself rather than by the
// room left under it. Entries only fire when flat, so the two agree today.
func Decide(p Params, depth *domain.OrderDepth, position int64, st EntryState) ([]domain.Order, EntryState, Signal) {
	if depth == nil {
		return nil, st, SignalHold
	}

	if position == 0 {
		ask, ok := depth.BestAsk()
		if !ok {
			return nil, st, SignalHold
		}
		available, _ := depth.SellOrders.Get(ask)
		volume := min(abs(available), p.PositionLimit)

		entry := ask
		next := EntryState{EntryPrice: &entry, Side: SideLong}
		return []domain.Order{{Symbol: p.Product, Price: ask, Quantity: volume}}, next, SignalEnter
	}

	if position < 0 {
		return nil, st, SignalHold
	}
	bid, ok := depth.BestBid()
	if !ok {
		return nil, st, SignalHold
	}
	entry, ok := st.Entry()
	if !ok {
		return nil, st, SignalHold
	}

	gain := bid - entry
	var sig Signal
	switch {
	case gain >= p.TakeProfit:
		sig = SignalTakeProfit
	case gain <= -p.StopLoss:
		sig = SignalStopLoss
	default:
		return nil, st, SignalHold
	}

	exit := []domain.Order{{Symbol: p.Product, Price: bid, Quantity: -position}}
	return exit, EntryState{Side: SideNone}, sig
}

// TakeProfitStopLoss trades one product: it buys the best ask when flat and
// sells the whole position at the best bid once the move from the entry
// reaches either threshold.
type TakeProfitStopLoss struct {
	params  Params
	entries map[string]EntryState
	pnl     *domain.PnLBook
	log     Logbook
}

// NewTakeProfitStopLoss creates a new instance.
func NewTakeProfitStopLoss(params Params, log Logbook) *TakeProfitStopLoss {
	return &TakeProfitStopLoss{
		params:  params,
		entries: make(map[string]EntryState),
		pnl:     domain.NewPnLBook(),
		log:     log,
	}
}

// Run processes one snapshot.
func (s *TakeProfitStopLoss) Run(state domain.TradingState) Result {
	product := s.params.Product
	s.printf("--- Tick %d ---", state.Timestamp)
	s.pnl.ApplyOwnTrades(state.OwnTrades)

	orders := domain.NewOrderedMap[[]domain.Order]()

	depth, ok := state.Depth(product)
	if !ok {
		return Result{Orders: *orders, Realized: s.pnl.Realized(product)}
	}

	bid, hasBid := depth.BestBid()
	ask, hasAsk := depth.BestAsk()

	book := s.pnl.Get(product)
	book.VerifyInvariant()
	unrealized := decimal.Zero
	switch {
	case book.Position > 0 && hasBid:
		unrealized = book.Unrealized(bid)
	case book.Position < 0 && hasAsk:
		unrealized = book.Unrealized(ask)
	}

	position := state.PositionOf(product)
	s.printf("Current position: %d, best bid: %s, best ask: %s",
		position, optional(bid, hasBid), optional(ask, hasAsk))

	current, tracked := s.entries[product]
	out, next, sig := Decide(s.params, &depth, position, current)
	if tracked || sig == SignalEnter {
		s.entries[product] = next
	}

	switch sig {
	case SignalEnter:
		s.printf("Placing buy for %d at %d", out[0].Quantity, out[0].Price)
	case SignalTakeProfit:
		s.printf("Take Profit TRIGGERED: Selling %d at %d", -out[0].Quantity, out[0].Price)
	case SignalStopLoss:
		s.printf("Stop loss TRIGGERED: Selling %d at %d", -out[0].Quantity, out[0].Price)
	}

	s.printf("End of Tick %d — PnL so far: %s", state.Timestamp, book.Realized.String())

	if out == nil {
		out = []domain.Order{}
	}
	orders.Set(product, out)
	return Result{
		Orders:     *orders,
		Signal:     sig,
		Realized:   book.Realized,
		Unrealized: unrealized,
	}
}

// EntryState returns the tracked state for symbol.
func (s *TakeProfitStopLoss) EntryState(symbol string) (EntryState, bool) {
	st, ok := s.entries[symbol]
	return st, ok
}

func (s *TakeProfitStopLoss) printf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func optional(v int64, ok bool) string {
	if !ok {
		return "None"
	}
	return strconv.FormatInt(v, 10)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
