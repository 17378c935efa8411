package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"resin_go/internal/domain"
	"resin_go/internal/event"
	"resin_go/internal/infra"
)

const (
	wsMaxRetries  = 10
	wsReadTimeout = 60 * time.Second
)

// WSSource receives snapshots pushed as text messages by a websocket server
// and reconnects with exponential backoff when the connection drops.
// A handshake rejected with a 4xx status closes the inbox instead.
type WSSource struct {
	url     string
	inbox   chan<- event.Event
	seq     *uint64
	metrics *infra.Metrics

	conn      *websocket.Conn
	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWSSource creates a websocket source for url.
func NewWSSource(url string, inbox chan<- event.Event, seq *uint64) *WSSource {
	return &WSSource{
		url:     url,
		inbox:   inbox,
		seq:     seq,
		metrics: infra.GlobalMetrics,
	}
}

// Start begins the connection loop in the background.
func (w *WSSource) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

// connectionLoop handles connection and reconnection with exponential backoff
func (w *WSSource) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Snapshot feed panic recovered", slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Snapshot feed connection loop stopped")
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			if !domain.IsRetriable(err) {
				// The server refused us; retrying cannot help. Stop the sequencer.
				slog.Error("Snapshot feed rejected, giving up", slog.Any("error", err))
				close(w.inbox)
				return
			}
			slog.Warn("Snapshot feed connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > wsMaxRetries {
				slog.Error("Snapshot feed max retries exceeded, resetting counter")
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		// Connection successful, reset retry counter
		retryCount = 0

		w.readLoop(ctx)
	}
}

func (w *WSSource) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, w.url, http.Header{})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return domain.NewFatalNetworkError("handshake",
				fmt.Errorf("%w: status %d", domain.ErrConnectionFailed, resp.StatusCode))
		}
		return domain.NewNetworkError("dial", fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err))
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	w.metrics.IncrementConnections()

	slog.Info("Snapshot feed connected", slog.String("url", w.url))
	return nil
}

// readLoop reads messages from WebSocket
func (w *WSSource) readLoop(ctx context.Context) {
	// Unblock ReadMessage on shutdown.
	stop := context.AfterFunc(ctx, w.closeConnection)
	defer stop()

	for {
		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Snapshot feed read error", slog.Any("error", err))
			}
			w.closeConnection()
			return
		}

		if !w.handleMessage(ctx, message) {
			return
		}
	}
}

// handleMessage decodes a snapshot and hands it to the sequencer.
// It returns false once ctx is done.
func (w *WSSource) handleMessage(ctx context.Context, message []byte) bool {
	state, err := DecodeSnapshot(message)
	if err != nil {
		slog.Debug("Snapshot parse error", slog.Any("error", err))
		w.metrics.RecordError()
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case w.inbox <- newTick(w.seq, state):
		return true
	}
}

// closeConnection safely closes the WebSocket connection
func (w *WSSource) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
		w.metrics.DecrementConnections()
	}
	w.connected = false
}

// Stop closes the WebSocket connection
func (w *WSSource) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
	slog.Info("Snapshot feed disconnected")
}

// IsConnected returns connection status
func (w *WSSource) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}
