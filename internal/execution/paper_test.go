package execution

import (
	"context"
	"errors"
	"testing"

	"resin_go/internal/domain"
)

const product = "RAINFOREST_RESIN"

func bookState(ts int64, bids, asks []domain.Level) domain.TradingState {
	var s domain.TradingState
	s.Timestamp = ts
	s.OrderDepths.Set(product, domain.OrderDepth{
		BuyOrders:  domain.NewPriceLevels(bids...),
		SellOrders: domain.NewPriceLevels(asks...),
	})
	return s
}

func ordersOf(orders ...domain.Order) domain.OrdersBySymbol {
	var m domain.OrdersBySymbol
	for _, o := range orders {
		batch, _ := m.Get(o.Symbol)
		m.Set(o.Symbol, append(batch, o))
	}
	return m
}

func TestPaperExecution_Buy(t *testing.T) {
	paper := NewPaperExecution(50)
	state := bookState(100, nil, []domain.Level{{Price: 10005, Quantity: -4}, {Price: 10002, Quantity: -3}})

	trades, err := paper.Execute(context.Background(), state, ordersOf(domain.Order{Symbol: product, Price: 10005, Quantity: 5}))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("Expected 2 fills, got %d", len(trades))
	}
	if trades[0].Price != 10002 || trades[0].Quantity != 3 {
		t.Errorf("first fill = %+v, want 3 at 10002", trades[0])
	}
	if trades[1].Price != 10005 || trades[1].Quantity != 2 {
		t.Errorf("second fill = %+v, want 2 at 10005", trades[1])
	}
	if trades[0].Buyer != domain.Submission || trades[0].Timestamp != 100 {
		t.Errorf("fill should be ours at the tick timestamp: %+v", trades[0])
	}
	if got := paper.Position(product); got != 5 {
		t.Errorf("Expected position 5, got %d", got)
	}
}

func TestPaperExecution_Sell(t *testing.T) {
	paper := NewPaperExecution(50)
	ctx := context.Background()

	buyState := bookState(100, nil, []domain.Level{{Price: 10, Quantity: -5}})
	if _, err := paper.Execute(ctx, buyState, ordersOf(domain.Order{Symbol: product, Price: 10, Quantity: 5})); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	sellState := bookState(200, []domain.Level{{Price: 12, Quantity: 2}, {Price: 13, Quantity: 10}}, nil)
	trades, err := paper.Execute(ctx, sellState, ordersOf(domain.Order{Symbol: product, Price: 13, Quantity: -5}))
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	if len(trades) != 1 || trades[0].Price != 13 || trades[0].Seller != domain.Submission {
		t.Fatalf("trades = %+v, want one sell of 5 at 13", trades)
	}
	if got := paper.Position(product); got != 0 {
		t.Errorf("Expected flat position, got %d", got)
	}
	if len(paper.GetFills()) != 2 {
		t.Errorf("Expected 2 fills in history, got %d", len(paper.GetFills()))
	}
}

func TestPaperExecution_LimitPriceRespected(t *testing.T) {
	paper := NewPaperExecution(50)
	state := bookState(100, nil, []domain.Level{{Price: 11, Quantity: -5}})

	trades, err := paper.Execute(context.Background(), state, ordersOf(domain.Order{Symbol: product, Price: 10, Quantity: 5}))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("buy below the ask must not fill, got %+v", trades)
	}
}

func TestPaperExecution_PositionLimit(t *testing.T) {
	paper := NewPaperExecution(10)
	state := bookState(100, nil, []domain.Level{{Price: 10, Quantity: -50}})
	state.OrderDepths.Set("KELP", domain.OrderDepth{
		SellOrders: domain.NewPriceLevels(domain.Level{Price: 20, Quantity: -1}),
	})

	orders := ordersOf(
		domain.Order{Symbol: product, Price: 10, Quantity: 6},
		domain.Order{Symbol: product, Price: 10, Quantity: 6},
		domain.Order{Symbol: "KELP", Price: 20, Quantity: 1},
	)
	trades, err := paper.Execute(context.Background(), state, orders)
	if !errors.Is(err, domain.ErrPositionLimit) {
		t.Fatalf("Expected ErrPositionLimit, got %v", err)
	}
	if paper.Position(product) != 0 {
		t.Error("all orders of the breaching symbol should be rejected")
	}
	if len(trades) != 1 || trades[0].Symbol != "KELP" {
		t.Errorf("other symbols should still execute, got %+v", trades)
	}
}

func TestPaperExecution_Prepare(t *testing.T) {
	paper := NewPaperExecution(50)
	ctx := context.Background()

	state := bookState(100, nil, []domain.Level{{Price: 10, Quantity: -5}})
	if _, err := paper.Execute(ctx, state, ordersOf(domain.Order{Symbol: product, Price: 10, Quantity: 5})); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	next := bookState(200, nil, nil)
	next.Position.Set(product, 99)
	paper.Prepare(&next)

	if got := next.PositionOf(product); got != 5 {
		t.Errorf("Prepare position = %d, want 5", got)
	}
	own, ok := next.OwnTrades.Get(product)
	if !ok || len(own) != 1 || own[0].Timestamp != 100 {
		t.Errorf("own trades = %+v, want the previous tick's fill", own)
	}

	// A tick without fills clears the own trades.
	if _, err := paper.Execute(ctx, next, domain.OrdersBySymbol{}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	after := bookState(300, nil, nil)
	paper.Prepare(&after)
	if after.OwnTrades.Len() != 0 {
		t.Errorf("expected no own trades, got %d symbols", after.OwnTrades.Len())
	}
}

func TestPaperExecution_CancelledContext(t *testing.T) {
	paper := NewPaperExecution(50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := paper.Execute(ctx, bookState(1, nil, nil), domain.OrdersBySymbol{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPaperExecution_ImplementsInterface(t *testing.T) {
	var _ domain.Execution = (*PaperExecution)(nil)
}
