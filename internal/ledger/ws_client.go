package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"land-registry-workflow/internal/observability"
)

// WSConfig configures WebSocket event feed behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSFeed implements EventFeed over a registry WebSocket subscription using
// gorilla/websocket. The connection subscribes to record events on connect
// and resubscribes after every reconnect. Events that arrive while the
// consumer is behind are dropped: a dropped notification only delays a
// refresh that the next event triggers anyway.
type WSFeed struct {
	endpoint string
	config   WSConfig
	logger   *log.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	events chan RecordEvent
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewWSFeed connects to the registry WebSocket endpoint and subscribes to
// record events. Pass nil config for defaults.
func NewWSFeed(ctx context.Context, endpoint string, config *WSConfig, logger *log.Logger) (*WSFeed, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	f := &WSFeed{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		events:   make(chan RecordEvent, 64),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// Compile-time interface check.
var _ EventFeed = (*WSFeed)(nil)

// Events returns the notification channel.
func (f *WSFeed) Events() <-chan RecordEvent {
	return f.events
}

// Close shuts the feed down.
func (f *WSFeed) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	close(f.events)
	return nil
}

// connect establishes the WebSocket connection and subscribes.
func (f *WSFeed) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	sub := rpcRequest{
		JSONRPC: "2.0",
		ID:      f.requestID.Add(1),
		Method:  "registry_subscribe",
		Params:  []interface{}{"records"},
	}
	conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	f.connMu.Lock()
	f.conn = conn
	f.connMu.Unlock()
	return nil
}

// wsNotification is an incoming JSON-RPC notification frame.
type wsNotification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// readLoop reads notifications and reconnects on failure.
func (f *WSFeed) readLoop() {
	defer f.wg.Done()

	for {
		select {
		case <-f.done:
			return
		default:
		}

		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}
			f.logger.Printf("[ledger-ws] read error: %v, reconnecting", err)
			if !f.reconnect() {
				return
			}
			continue
		}

		var note wsNotification
		if err := json.Unmarshal(msg, &note); err != nil {
			f.logger.Printf("[ledger-ws] malformed frame: %v", err)
			continue
		}
		if note.Method != "registry_recordEvent" {
			// Subscription confirmations and pong frames land here.
			continue
		}

		var ev RecordEvent
		if err := json.Unmarshal(note.Params, &ev); err != nil {
			f.logger.Printf("[ledger-ws] malformed event: %v", err)
			continue
		}

		select {
		case f.events <- ev:
		default:
			// Consumer is behind; the next event retriggers the same refresh.
			observability.DefaultMetrics.EventsDropped.Inc()
		}
	}
}

// reconnect re-establishes the connection with backoff. Returns false when
// the feed is shutting down.
func (f *WSFeed) reconnect() bool {
	delay := f.config.ReconnectDelay

	for {
		select {
		case <-f.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := f.connect(ctx)
		cancel()
		if err == nil {
			observability.DefaultMetrics.WSReconnects.Inc()
			f.logger.Printf("[ledger-ws] reconnected")
			return true
		}

		f.logger.Printf("[ledger-ws] reconnect failed: %v", err)
		delay *= 2
		if delay > f.config.MaxReconnectDelay {
			delay = f.config.MaxReconnectDelay
		}
	}
}

// pingLoop keeps the connection alive.
func (f *WSFeed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			conn := f.conn
			if conn != nil {
				conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil && !f.closed.Load() {
					f.logger.Printf("[ledger-ws] ping failed: %v", err)
				}
			}
			f.connMu.Unlock()
		}
	}
}
