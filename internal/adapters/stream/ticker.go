package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/satstack/swapkit/internal/core/domain"
	"github.com/satstack/swapkit/internal/logger"
)

const reconnectDelay = 5 * time.Second

// Ticker subscribes to a live price feed over WebSocket and emits PricePoints
// for merging into the current day's bucket. It reconnects on read errors
// until the context is cancelled.
type Ticker struct {
	url    string
	points chan domain.PricePoint
}

// NewTicker creates a ticker for the given WebSocket URL.
func NewTicker(url string) *Ticker {
	return &Ticker{
		url:    url,
		points: make(chan domain.PricePoint, 64),
	}
}

// Points returns the channel of live samples. It is closed when Run returns.
func (t *Ticker) Points() <-chan domain.PricePoint {
	return t.points
}

type tickerMessage struct {
	TimestampMillis int64   `json:"t"`
	Price           float64 `json:"p"`
}

// Run dials the feed and pumps samples until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	defer close(t.points)

	for {
		if err := t.pump(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L().Warn().Err(err).Str("url", t.url).Msg("ticker stream dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (t *Ticker) pump(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial ticker feed: %w", err)
	}
	defer conn.Close()

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading ticker message: %w", err)
		}

		var msg tickerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.L().Debug().Err(err).Msg("skipping malformed ticker message")
			continue
		}
		if msg.Price <= 0 {
			continue
		}
		if msg.TimestampMillis == 0 {
			msg.TimestampMillis = time.Now().UnixMilli()
		}

		point := domain.PricePoint{TimestampMillis: msg.TimestampMillis, Price: msg.Price}
		select {
		case t.points <- point:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Drop the sample if the consumer is behind; live ticks are
			// best-effort on top of the aggregated series.
		}
	}
}
