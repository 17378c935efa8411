package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PnL tracks our holding and realized profit in a single symbol using the
// average-cost method.
type PnL struct {
	Symbol   string          `json:"symbol"`
	Position int64           `json:"position"`
	AvgCost  decimal.Decimal `json:"avg_cost"`
	Realized decimal.Decimal `json:"realized"`
}

// Apply books one of our fills. Positive qty buys, negative qty sells.
func (p *PnL) Apply(price, qty int64) {
	if qty == 0 {
		return
	}
	px := decimal.NewFromInt(price)

	// Opening or adding to the current direction.
	if p.Position == 0 || (p.Position > 0) == (qty > 0) {
		held := decimal.NewFromInt(abs64(p.Position))
		added := decimal.NewFromInt(abs64(qty))
		p.AvgCost = p.AvgCost.Mul(held).Add(px.Mul(added)).Div(held.Add(added))
		p.Position += qty
		return
	}

	closing := min(abs64(qty), abs64(p.Position))
	gain := px.Sub(p.AvgCost).Mul(decimal.NewFromInt(closing))
	if p.Position < 0 {
		gain = gain.Neg()
	}
	p.Realized = p.Realized.Add(gain)

	prev := p.Position
	p.Position += qty
	switch {
	case p.Position == 0:
		p.AvgCost = decimal.Zero
	case (prev > 0) != (p.Position > 0):
		// Flipped through flat: the remainder opened at this price.
		p.AvgCost = px
	}
}

// Unrealized values the open position against mark.
func (p *PnL) Unrealized(mark int64) decimal.Decimal {
	if p.Position == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(mark).Sub(p.AvgCost).Mul(decimal.NewFromInt(p.Position))
}

// PnLBook keeps per-symbol PnL built from own trades.
type PnLBook struct {
	books     map[string]*PnL
	watermark map[string]int64
}

// NewPnLBook creates an empty book.
func NewPnLBook() *PnLBook {
	return &PnLBook{
		books:     make(map[string]*PnL),
		watermark: make(map[string]int64),
	}
}

// Get returns the PnL for symbol, creating it if needed.
func (pb *PnLBook) Get(symbol string) *PnL {
	p, ok := pb.books[symbol]
	if !ok {
		p = &PnL{Symbol: symbol}
		pb.books[symbol] = p
	}
	return p
}

// ApplyTrade books a trade if we are its buyer or seller.
func (pb *PnLBook) ApplyTrade(t Trade) {
	switch {
	case t.Buyer == Submission && t.Seller != Submission:
		pb.Get(t.Symbol).Apply(t.Price, t.Quantity)
	case t.Seller == Submission && t.Buyer != Submission:
		pb.Get(t.Symbol).Apply(t.Price, -t.Quantity)
	}
}

// ApplyOwnTrades books every trade newer than the last batch seen for its
// symbol. The exchange repeats the previous batch when nothing new filled,
// so older timestamps are skipped.
func (pb *PnLBook) ApplyOwnTrades(trades OrderedMap[[]Trade]) {
	trades.Range(func(symbol string, batch []Trade) bool {
		mark, seen := pb.watermark[symbol]
		latest, applied := mark, false
		for _, t := range batch {
			if seen && t.Timestamp <= mark {
				continue
			}
			pb.ApplyTrade(t)
			if !applied || t.Timestamp > latest {
				latest = t.Timestamp
			}
			applied = true
		}
		if applied {
			pb.watermark[symbol] = latest
		}
		return true
	})
}

// Realized returns realized PnL for symbol.
func (pb *PnLBook) Realized(symbol string) decimal.Decimal {
	if p, ok := pb.books[symbol]; ok {
		return p.Realized
	}
	return decimal.Zero
}

// Snapshot returns a copy of all PnL entries.
func (pb *PnLBook) Snapshot() map[string]PnL {
	out := make(map[string]PnL, len(pb.books))
	for k, v := range pb.books {
		out[k] = *v
	}
	return out
}

// VerifyInvariant panics if a flat book still carries an average cost.
func (p *PnL) VerifyInvariant() {
	if p.Position == 0 && !p.AvgCost.IsZero() {
		panic(fmt.Sprintf("PNL_INVARIANT_FLAT_WITH_COST: %s avg=%s", p.Symbol, p.AvgCost))
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
