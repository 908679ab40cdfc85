package datafeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"EdgeRunner/internal/domain/models"
	domrepo "EdgeRunner/internal/domain/repository"
	applogger "EdgeRunner/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements QuoteStream over a trade-feed WebSocket.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

var _ domrepo.QuoteStream = (*Stream)(nil)

// NewStream creates a quote stream for the given symbols.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) *Stream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	if s.l != nil {
		s.l.Info("quote stream connected", applogger.String("url", s.websocketURL))
	}
	return nil
}

// Subscribe subscribes to the configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	conn, ok := s.conn, s.connected
	s.mu.Unlock()
	if conn == nil || !ok {
		return fmt.Errorf("stream not connected")
	}
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
		if s.l != nil {
			s.l.Debug("subscribed", applogger.String("symbol", sym))
		}
	}
	return nil
}

type streamTick struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type streamFrame struct {
	Type string       `json:"type"`
	Data []streamTick `json:"data"`
}

// Read streams quotes and errors. Slow consumers drop ticks rather than
// block the read loop; the pipeline only needs a current price.
func (s *Stream) Read(ctx context.Context) (<-chan models.Quote, <-chan error) {
	quotes := make(chan models.Quote, 1024)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var frame streamFrame
				if err := json.Unmarshal(b, &frame); err != nil {
					// ignore non-tick frames
					continue
				}
				if frame.Type != "trade" {
					continue
				}
				for _, d := range frame.Data {
					q := models.Quote{
						Symbol:    d.S,
						Price:     d.P,
						Timestamp: time.UnixMilli(d.T).UTC(),
					}
					select {
					case quotes <- q:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes and re-establishes the connection and subscriptions.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	if err := sleepCtx(ctx, s.reconnectDelay); err != nil {
		return err
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected reports connection status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
