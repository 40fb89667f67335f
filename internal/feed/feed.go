// Package feed streams underlying trade prices over websocket and keeps a
// rolling per-symbol history for the trend detector.
package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const maxBufferLen = 1000

// PricePoint is one observed trade.
type PricePoint struct {
	Price     decimal.Decimal
	Timestamp time.Time
}

// Feed maintains a websocket subscription to the vendor's trade stream.
type Feed struct {
	wsURL  string
	apiKey string

	conn *websocket.Conn

	mu      sync.RWMutex
	buffers map[string][]PricePoint // symbol -> rolling history, newest last

	onPrice func(symbol string, price decimal.Decimal)

	symbols []string
	running bool
	stopCh  chan struct{}
}

// tradeEvent is the vendor's stream payload for one trade print.
type tradeEvent struct {
	Event  string          `json:"ev"`
	Symbol string          `json:"sym"`
	Price  decimal.Decimal `json:"p"`
}

// NewFeed creates a feed for the given symbols. Call Start to connect.
func NewFeed(wsURL, apiKey string, symbols []string) *Feed {
	return &Feed{
		wsURL:   wsURL,
		apiKey:  apiKey,
		symbols: symbols,
		buffers: make(map[string][]PricePoint),
		stopCh:  make(chan struct{}),
	}
}

// SetPriceCallback sets callback for price updates
func (f *Feed) SetPriceCallback(cb func(symbol string, price decimal.Decimal)) {
	f.onPrice = cb
}

// Start connects and begins streaming, reconnecting on failure.
func (f *Feed) Start() {
	f.running = true
	go f.runLoop()
	log.Info().Strs("symbols", f.symbols).Msg("📡 Price feed started")
}

// Stop closes the stream.
func (f *Feed) Stop() {
	f.running = false
	close(f.stopCh)
	if f.conn != nil {
		f.conn.Close()
	}
}

func (f *Feed) runLoop() {
	for f.running {
		if err := f.connect(); err != nil {
			log.Error().Err(err).Msg("Price feed connect failed, retrying in 5s")
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-f.stopCh:
				return
			}
		}

		f.readLoop()

		select {
		case <-f.stopCh:
			return
		case <-time.After(time.Second):
			// fall through to reconnect
		}
	}
}

func (f *Feed) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.wsURL, err)
	}
	f.conn = conn

	auth := map[string]string{"action": "auth", "params": f.apiKey}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return fmt.Errorf("auth: %w", err)
	}

	topics := make([]string, 0, len(f.symbols))
	for _, s := range f.symbols {
		topics = append(topics, "T."+s)
	}
	sub := map[string]string{"action": "subscribe", "params": strings.Join(topics, ",")}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	log.Debug().Msg("Price feed connected")
	return nil
}

func (f *Feed) readLoop() {
	for {
		_, msg, err := f.conn.ReadMessage()
		if err != nil {
			if f.running {
				log.Warn().Err(err).Msg("Price feed read error, reconnecting")
			}
			return
		}

		var events []tradeEvent
		if err := json.Unmarshal(msg, &events); err != nil {
			continue
		}

		for _, ev := range events {
			if ev.Event != "T" || !ev.Price.IsPositive() {
				continue
			}
			f.record(ev.Symbol, ev.Price)
			if f.onPrice != nil {
				f.onPrice(ev.Symbol, ev.Price)
			}
		}
	}
}

func (f *Feed) record(symbol string, price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()

	buf := append(f.buffers[symbol], PricePoint{Price: price, Timestamp: time.Now()})
	if len(buf) > maxBufferLen {
		buf = buf[len(buf)-maxBufferLen:]
	}
	f.buffers[symbol] = buf
}

// History returns a copy of the rolling price history for a symbol.
func (f *Feed) History(symbol string) []PricePoint {
	f.mu.RLock()
	defer f.mu.RUnlock()

	buf := f.buffers[symbol]
	out := make([]PricePoint, len(buf))
	copy(out, buf)
	return out
}

// Prices returns the rolling history as floats, newest last, for the
// indicator helpers.
func (f *Feed) Prices(symbol string) []float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	buf := f.buffers[symbol]
	out := make([]float64, len(buf))
	for i, p := range buf {
		out[i] = p.Price.InexactFloat64()
	}
	return out
}

// LastPrice returns the most recent price for a symbol, zero when unseen.
func (f *Feed) LastPrice(symbol string) decimal.Decimal {
	f.mu.RLock()
	defer f.mu.RUnlock()

	buf := f.buffers[symbol]
	if len(buf) == 0 {
		return decimal.Zero
	}
	return buf[len(buf)-1].Price
}
