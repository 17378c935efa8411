package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resin_go/internal/app"
	"resin_go/internal/event"
	"resin_go/internal/infra"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	feedMode := flag.String("feed", "", "snapshot feed: replay or ws (overrides config)")
	input := flag.String("input", "", "replay file (overrides config)")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath, app.Overrides{FeedMode: *feedMode, ReplayPath: *input}); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Metrics endpoint
	if cfg.Metrics.Addr != "" {
		srv := infra.ServeMetrics(cfg.Metrics.Addr, infra.GlobalMetrics)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Warn("Metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	// 4. Sequencer: telemetry lines go to stdout
	event.Warmup()
	seq := bootstrap.NewSequencer(os.Stdout)

	// 5. Snapshot feed
	nextSeq := bootstrap.NextSeq
	source := bootstrap.NewSource(seq.Inbox(), &nextSeq)
	if err := source.Start(ctx); err != nil {
		slog.Error("Failed to start feed", slog.Any("error", err))
		os.Exit(1)
	}
	defer source.Stop()

	slog.InfoContext(ctx, "Trader operational. Press Ctrl+C to exit.")

	// Runs until the feed is exhausted or a shutdown signal arrives.
	seq.Run(ctx)

	snap := infra.GlobalMetrics.Snapshot()
	slog.Info("Shutting down gracefully...",
		slog.Uint64("ticks", snap.TicksProcessed),
		slog.Uint64("orders", snap.OrdersEmitted),
		slog.Uint64("fills", snap.FillsTotal),
	)
}
