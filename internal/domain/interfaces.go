package domain

import (
	"context"
)

// TickSource streams market snapshots into the sequencer.
type TickSource interface {
	Start(ctx context.Context) error
	Stop()
}

// TickJournal persists the outcome of each processed tick together with the
// trader data that will be handed back on the next one.
type TickJournal interface {
	RecordTick(ctx context.Context, rec *TickRecord, fills []FillRecord, traderData string) error
}

// Execution turns emitted orders into fills the way the exchange would.
type Execution interface {
	// Prepare writes the account's positions and last fills into state.
	Prepare(state *TradingState)
	// Execute matches orders against the book in state.
	Execute(ctx context.Context, state TradingState, orders OrdersBySymbol) ([]Trade, error)
}
