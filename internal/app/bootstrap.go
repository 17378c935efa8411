package app

import (
	"fmt"
	"io"
	"log/slog"

	"resin_go/internal/domain"
	"resin_go/internal/engine"
	"resin_go/internal/event"
	"resin_go/internal/execution"
	"resin_go/internal/infra"
	"resin_go/internal/infra/feed"
	"resin_go/internal/infra/storage"
	"resin_go/internal/strategy"
	"resin_go/internal/telemetry"
)

// Overrides are command line settings applied on top of the config file.
type Overrides struct {
	FeedMode   string
	ReplayPath string
}

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	TraderData string

	// NextSeq is the first sequence number of this run, following the journal.
	NextSeq uint64
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB).
func (b *Bootstrap) Initialize(configPath string, ov Overrides) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	if ov.FeedMode != "" {
		cfg.Feed.Mode = ov.FeedMode
	}
	if ov.ReplayPath != "" {
		cfg.Feed.ReplayPath = ov.ReplayPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid command line: %w", err)
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("Bootstrapping resin trader...",
		slog.String("product", cfg.Trader.Product),
		slog.String("feed", cfg.Feed.Mode),
	)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store

	// 4. Restore the trader data left by the previous run
	data, err := store.TraderData()
	if err != nil {
		return fmt.Errorf("restore trader data: %w", err)
	}
	b.TraderData = data

	// 5. Resume numbering after the last journaled tick
	last, err := store.LastSeq()
	if err != nil {
		return fmt.Errorf("read last sequence: %w", err)
	}
	b.NextSeq = last + 1
	slog.Info("Database initialized",
		slog.String("path", cfg.Storage.Path),
		slog.Int("trader_data_len", len(data)),
		slog.Uint64("next_seq", b.NextSeq),
	)

	return nil
}

// Params returns the strategy parameters from the config.
func (b *Bootstrap) Params() strategy.Params {
	return strategy.Params{
		Product:       b.Config.Trader.Product,
		PositionLimit: b.Config.Trader.PositionLimit,
		TakeProfit:    b.Config.Trader.TakeProfit,
		StopLoss:      b.Config.Trader.StopLoss,
	}
}

// NewSequencer wires strategy, telemetry, execution and journal.
// Telemetry lines are written to out.
func (b *Bootstrap) NewSequencer(out io.Writer, opts ...engine.Option) *engine.Sequencer {
	tel := telemetry.NewLogger(out, b.Config.Telemetry.MaxLogLength)
	params := b.Params()

	base := []engine.Option{
		engine.WithTraderData(b.TraderData),
		engine.WithStartSeq(b.NextSeq),
	}
	if b.Storage != nil {
		base = append(base, engine.WithJournal(b.Storage))
	}
	if b.Config.Execution.Paper {
		base = append(base, engine.WithExecution(execution.NewPaperExecution(params.PositionLimit)))
	}

	return engine.NewSequencer(b.Config.Feed.InboxSize,
		strategy.NewTakeProfitStopLoss(params, tel), tel,
		append(base, opts...)...)
}

// NewSource creates the configured snapshot feed.
// seq should start at NextSeq so the feed matches the sequencer.
func (b *Bootstrap) NewSource(inbox chan<- event.Event, seq *uint64) domain.TickSource {
	if b.Config.Feed.Mode == infra.FeedWS {
		return feed.NewWSSource(b.Config.Feed.WSURL, inbox, seq)
	}
	return feed.NewReplaySource(b.Config.Feed.ReplayPath, inbox, seq)
}

// Close releases the storage.
func (b *Bootstrap) Close() {
	if b.Storage == nil {
		return
	}
	if err := b.Storage.Close(); err != nil {
		slog.Warn("Failed to close storage", slog.Any("error", err))
	}
}
