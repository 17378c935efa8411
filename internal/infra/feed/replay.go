package feed

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"resin_go/internal/event"
)

// maxLineSize bounds a single snapshot line.
const maxLineSize = 16 * 1024 * 1024

// ReplaySource replays a JSONL file of snapshots, one per line, and closes
// the inbox when the file is exhausted.
type ReplaySource struct {
	path   string
	inbox  chan<- event.Event
	seq    *uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReplaySource creates a replay source reading path.
func NewReplaySource(path string, inbox chan<- event.Event, seq *uint64) *ReplaySource {
	return &ReplaySource{path: path, inbox: inbox, seq: seq}
}

// Start opens the file and begins streaming in the background.
func (r *ReplaySource) Start(ctx context.Context) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}

	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run(ctx, f)

	slog.Info("Replay feed started", slog.String("path", r.path))
	return nil
}

func (r *ReplaySource) run(ctx context.Context, f *os.File) {
	defer r.wg.Done()
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo, sent := 0, 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		state, err := DecodeSnapshot(line)
		if err != nil {
			slog.Warn("Skipping replay line", slog.Int("line", lineNo), slog.Any("error", err))
			continue
		}

		select {
		case <-ctx.Done():
			return
		case r.inbox <- newTick(r.seq, state):
			sent++
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Replay read failed", slog.Int("line", lineNo), slog.Any("error", err))
	}

	slog.Info("Replay feed exhausted", slog.Int("snapshots", sent))
	close(r.inbox)
}

// Stop cancels the replay and waits for the reader to exit.
func (r *ReplaySource) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
