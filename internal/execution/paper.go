package execution

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"resin_go/internal/domain"
)

// PaperExecution simulates the exchange matcher for backtests and replays.
// Orders fill against the snapshot book they were emitted on; unfilled
// remainders are cancelled at the end of the tick.
type PaperExecution struct {
	mu sync.RWMutex

	limit     int64
	symbols   []string
	positions map[string]int64
	lastFills map[string][]domain.Trade
	fills     []domain.Trade
}

// NewPaperExecution creates a paper account enforcing limit on every symbol.
// A non-positive limit disables the check.
func NewPaperExecution(limit int64) *PaperExecution {
	return &PaperExecution{
		limit:     limit,
		positions: make(map[string]int64),
		lastFills: make(map[string][]domain.Trade),
	}
}

// Prepare replaces the feed's account fields with the simulated ones.
func (p *PaperExecution) Prepare(state *domain.TradingState) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var positions domain.OrderedMap[int64]
	var own domain.OrderedMap[[]domain.Trade]
	for _, symbol := range p.symbols {
		positions.Set(symbol, p.positions[symbol])
		if batch := p.lastFills[symbol]; len(batch) > 0 {
			own.Set(symbol, slices.Clone(batch))
		}
	}
	state.Position = positions
	state.OwnTrades = own
}

// Execute matches orders against the book carried by state.
// All orders of a symbol are rejected when their aggregate could breach the
// position limit; other symbols still execute.
func (p *PaperExecution) Execute(ctx context.Context, state domain.TradingState, orders domain.OrdersBySymbol) ([]domain.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	clear(p.lastFills)

	var (
		trades []domain.Trade
		errs   []error
	)
	orders.Range(func(symbol string, batch []domain.Order) bool {
		if len(batch) == 0 {
			return true
		}
		if err := p.checkLimit(symbol, batch); err != nil {
			slog.Warn("Orders rejected", slog.String("symbol", symbol), slog.Any("error", err))
			errs = append(errs, err)
			return true
		}

		depth, _ := state.Depth(symbol)
		asks := sortedLevels(depth.SellOrders, false)
		bids := sortedLevels(depth.BuyOrders, true)

		for _, o := range batch {
			var filled []domain.Trade
			if o.Quantity > 0 {
				filled = match(o, asks, state.Timestamp)
			} else if o.Quantity < 0 {
				filled = match(o, bids, state.Timestamp)
			}
			for _, t := range filled {
				p.book(t)
			}
			trades = append(trades, filled...)
		}
		return true
	})

	return trades, errors.Join(errs...)
}

func (p *PaperExecution) checkLimit(symbol string, batch []domain.Order) error {
	if p.limit <= 0 {
		return nil
	}
	var buys, sells int64
	for _, o := range batch {
		if o.Quantity > 0 {
			buys += o.Quantity
		} else {
			sells -= o.Quantity
		}
	}
	pos := p.positions[symbol]
	if pos+buys > p.limit || pos-sells < -p.limit {
		return fmt.Errorf("%w: %s position %d, buys %d, sells %d, limit %d",
			domain.ErrPositionLimit, symbol, pos, buys, sells, p.limit)
	}
	return nil
}

func (p *PaperExecution) book(t domain.Trade) {
	delta := t.Quantity
	if t.Seller == domain.Submission {
		delta = -delta
	}
	if _, ok := p.positions[t.Symbol]; !ok {
		p.symbols = append(p.symbols, t.Symbol)
	}
	p.positions[t.Symbol] += delta
	p.lastFills[t.Symbol] = append(p.lastFills[t.Symbol], t)
	p.fills = append(p.fills, t)
}

// match walks levels best-first and consumes their volume in place.
func match(o domain.Order, levels []domain.Level, ts int64) []domain.Trade {
	buy := o.Quantity > 0
	remaining := abs(o.Quantity)

	var out []domain.Trade
	for i := range levels {
		if remaining == 0 {
			break
		}
		lvl := &levels[i]
		if buy && lvl.Price > o.Price || !buy && lvl.Price < o.Price {
			break
		}
		avail := abs(lvl.Quantity)
		if avail == 0 {
			continue
		}
		qty := min(avail, remaining)
		remaining -= qty
		if lvl.Quantity < 0 {
			lvl.Quantity += qty
		} else {
			lvl.Quantity -= qty
		}

		t := domain.Trade{Symbol: o.Symbol, Price: lvl.Price, Quantity: qty, Timestamp: ts}
		if buy {
			t.Buyer = domain.Submission
		} else {
			t.Seller = domain.Submission
		}
		out = append(out, t)
	}
	return out
}

func sortedLevels(p domain.PriceLevels, desc bool) []domain.Level {
	levels := p.Levels()
	slices.SortFunc(levels, func(a, b domain.Level) int {
		if desc {
			return cmp.Compare(b.Price, a.Price)
		}
		return cmp.Compare(a.Price, b.Price)
	})
	return levels
}

// Position returns the simulated position in symbol.
func (p *PaperExecution) Position(symbol string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[symbol]
}

// GetFills returns all fills since creation.
func (p *PaperExecution) GetFills() []domain.Trade {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.fills)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
