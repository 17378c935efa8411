package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPnL_RoundTrip(t *testing.T) {
	p := &PnL{Symbol: "RAINFOREST_RESIN"}

	p.Apply(10, 5)
	p.Apply(12, 5)
	if !p.AvgCost.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("AvgCost = %s, want 11", p.AvgCost)
	}

	p.Apply(14, -10)
	if p.Position != 0 {
		t.Errorf("Position = %d, want 0", p.Position)
	}
	// (14 - 11) * 10
	if !p.Realized.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Realized = %s, want 30", p.Realized)
	}
	p.VerifyInvariant()
}

func TestPnL_FractionalAverageCost(t *testing.T) {
	p := &PnL{Symbol: "KELP"}
	p.Apply(10, 1)
	p.Apply(11, 2)

	// (10 + 22) / 3
	want := decimal.NewFromInt(32).Div(decimal.NewFromInt(3))
	if !p.AvgCost.Equal(want) {
		t.Errorf("AvgCost = %s, want %s", p.AvgCost, want)
	}
	if got := p.Unrealized(12); !got.Round(6).Equal(decimal.NewFromInt(4)) {
		t.Errorf("Unrealized(12) = %s, want 4", got)
	}
}

func TestPnL_ShortAndFlip(t *testing.T) {
	p := &PnL{Symbol: "KELP"}
	p.Apply(20, -4)
	p.Apply(18, 6) // covers 4 at +2 each, opens long 2 at 18

	if !p.Realized.Equal(decimal.NewFromInt(8)) {
		t.Errorf("Realized = %s, want 8", p.Realized)
	}
	if p.Position != 2 || !p.AvgCost.Equal(decimal.NewFromInt(18)) {
		t.Errorf("Position/AvgCost = %d/%s, want 2/18", p.Position, p.AvgCost)
	}
}

func TestPnLBook_ApplyOwnTrades(t *testing.T) {
	book := NewPnLBook()

	batch := NewOrderedMap[[]Trade]()
	batch.Set("RAINFOREST_RESIN", []Trade{
		{Symbol: "RAINFOREST_RESIN", Price: 10, Quantity: 5, Buyer: Submission, Timestamp: 100},
		{Symbol: "RAINFOREST_RESIN", Price: 10, Quantity: 3, Buyer: "A", Seller: "B", Timestamp: 100},
	})
	book.ApplyOwnTrades(*batch)
	// Same batch reported again must not double count.
	book.ApplyOwnTrades(*batch)

	if got := book.Get("RAINFOREST_RESIN").Position; got != 5 {
		t.Fatalf("Position = %d, want 5", got)
	}

	exit := NewOrderedMap[[]Trade]()
	exit.Set("RAINFOREST_RESIN", []Trade{
		{Symbol: "RAINFOREST_RESIN", Price: 13, Quantity: 5, Seller: Submission, Timestamp: 200},
	})
	book.ApplyOwnTrades(*exit)

	if got := book.Realized("RAINFOREST_RESIN"); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Realized = %s, want 15", got)
	}
	if got := book.Realized("UNKNOWN"); !got.IsZero() {
		t.Errorf("Realized(UNKNOWN) = %s, want 0", got)
	}
	if snap := book.Snapshot(); len(snap) != 1 {
		t.Errorf("Snapshot len = %d, want 1", len(snap))
	}
}
