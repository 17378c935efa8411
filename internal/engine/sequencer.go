package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"resin_go/internal/domain"
	"resin_go/internal/event"
	"resin_go/internal/infra"
	"resin_go/internal/strategy"
	"resin_go/internal/telemetry"
)

// Outcome is what one processed tick produced.
type Outcome struct {
	Seq       uint64          `json:"seq"`
	Timestamp int64           `json:"timestamp"`
	Result    strategy.Result `json:"result"`
	Fills     []domain.Trade  `json:"fills"`
	Line      string          `json:"line"`
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithExecution routes emitted orders to exec.
func WithExecution(exec domain.Execution) Option {
	return func(s *Sequencer) { s.exec = exec }
}

// WithJournal persists every tick before the next one is taken.
func WithJournal(j domain.TickJournal) Option {
	return func(s *Sequencer) { s.journal = j }
}

// WithMetrics overrides infra.GlobalMetrics.
func WithMetrics(m *infra.Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

// WithTraderData seeds the trader data handed to the first tick.
func WithTraderData(data string) Option {
	return func(s *Sequencer) { s.traderData = data }
}

// WithStartSeq sets the first sequence number expected, for resuming a journal.
func WithStartSeq(seq uint64) Option {
	return func(s *Sequencer) {
		if seq > 0 {
			s.nextSeq = seq
		}
	}
}

// WithOnResult registers a callback invoked after each tick on the loop goroutine.
func WithOnResult(fn func(Outcome)) Option {
	return func(s *Sequencer) { s.onResult = fn }
}

// Sequencer is the core single-threaded event processor.
type Sequencer struct {
	inbox   chan event.Event
	nextSeq uint64

	strategy  strategy.Strategy
	telemetry *telemetry.Logger
	exec      domain.Execution
	journal   domain.TickJournal
	metrics   *infra.Metrics

	// Opaque state carried from one tick's output to the next tick's input.
	traderData string

	// Boundary: used to notify other systems of tick outcomes
	onResult func(Outcome)

	mu   sync.RWMutex // Used only for external reads
	last Outcome
}

// NewSequencer creates a new sequencer instance.
func NewSequencer(inboxSize int, strat strategy.Strategy, tel *telemetry.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		inbox:     make(chan event.Event, inboxSize),
		nextSeq:   1,
		strategy:  strat,
		telemetry: tel,
		metrics:   infra.GlobalMetrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inbox returns the event channel. Feeds send events here and close it when
// they run dry.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
// It returns when ctx is cancelled or the inbox is closed.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			// Halt after dump.
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev, ok := <-s.inbox:
			if !ok {
				slog.Info("Inbox closed, sequencer stopping", slog.Uint64("processed", s.nextSeq-1))
				return
			}
			s.processEvent(ctx, ev)
		}
	}
}

func (s *Sequencer) processEvent(ctx context.Context, ev event.Event) {
	// 1. Sequence Gap Check (Halt Policy)
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	// 2. Logic Dispatch
	switch e := ev.(type) {
	case *event.TickEvent:
		s.handleTick(ctx, e)
		event.ReleaseTickEvent(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}

	// 3. Increment Sequence
	s.nextSeq++
}

func (s *Sequencer) handleTick(ctx context.Context, e *event.TickEvent) {
	start := time.Now()

	state := e.State
	state.TraderData = s.traderData
	if s.exec != nil {
		s.exec.Prepare(&state)
	}

	var res strategy.Result
	if s.strategy != nil {
		res = s.strategy.Run(state)
	}

	var line []byte
	if s.telemetry != nil {
		var err error
		line, err = s.telemetry.Flush(state, res.Orders, res.Conversions, res.TraderData)
		if err != nil {
			slog.Error("Telemetry line dropped", slog.Uint64("seq", e.Seq), slog.Any("error", err))
			s.metrics.RecordError()
		}
	}

	var fills []domain.Trade
	if s.exec != nil {
		var err error
		fills, err = s.exec.Execute(ctx, state, res.Orders)
		if err != nil {
			slog.Warn("Execution rejected orders", slog.Uint64("seq", e.Seq), slog.Any("error", err))
			s.metrics.RecordError()
		}
	}

	s.traderData = res.TraderData
	line = bytes.TrimSuffix(line, []byte("\n"))

	// WAL: the tick is durable before the next one is taken.
	if s.journal != nil {
		rec := &domain.TickRecord{
			Seq:       e.Seq,
			Timestamp: state.Timestamp,
			Line:      string(line),
			Orders:    res.OrderCount(),
		}
		if err := s.journal.RecordTick(ctx, rec, fillRecords(e.Seq, fills), s.traderData); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	s.metrics.RecordTick(time.Since(start).Nanoseconds(), res.OrderCount())
	s.metrics.RecordSignal(res.Signal.String())
	s.metrics.RecordFills(len(fills))
	s.metrics.RecordLine(len(line))
	s.metrics.RecordPnL(res.Realized.InexactFloat64(), res.Unrealized.InexactFloat64())

	out := Outcome{
		Seq:       e.Seq,
		Timestamp: state.Timestamp,
		Result:    res,
		Fills:     fills,
		Line:      string(line),
	}

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(out)
	}
}

func fillRecords(seq uint64, fills []domain.Trade) []domain.FillRecord {
	if len(fills) == 0 {
		return nil
	}
	recs := make([]domain.FillRecord, 0, len(fills))
	for _, f := range fills {
		qty := f.Quantity
		if f.Seller == domain.Submission {
			qty = -qty
		}
		recs = append(recs, domain.FillRecord{
			Seq:       seq,
			Symbol:    f.Symbol,
			Price:     f.Price,
			Quantity:  qty,
			Timestamp: f.Timestamp,
		})
	}
	return recs
}

// LastOutcome returns the most recent tick outcome (external read).
func (s *Sequencer) LastOutcome() (Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last.Seq != 0
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	s.mu.RLock()
	data := struct {
		NextSeq    uint64  `json:"next_seq"`
		TraderData string  `json:"trader_data"`
		Last       Outcome `json:"last"`
	}{
		NextSeq:    s.nextSeq,
		TraderData: s.traderData,
		Last:       s.last,
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	err = os.WriteFile(filename, b, 0644)
	if err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
