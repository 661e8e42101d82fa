package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"audarb/internal/quote"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const btcMarketsWSURL = "wss://socket.btcmarkets.net/v2"

// btcMarketsSubscribe is the subscribe request BTC Markets' v2 WebSocket
// expects: every market id and channel of interest in one message.
type btcMarketsSubscribe struct {
	MarketIDs   []string `json:"marketIds"`
	Channels    []string `json:"channels"`
	MessageType string   `json:"messageType"`
}

// btcMarketsTick is one "tick" channel message.
type btcMarketsTick struct {
	MarketID      string `json:"marketId"`
	MessageType   string `json:"messageType"`
	BestBid       string `json:"bestBid"`
	BestBidVolume string `json:"bestBidVolume"`
	BestAsk       string `json:"bestAsk"`
	BestAskVolume string `json:"bestAskVolume"`
}

// WSBookAdapter feeds top-of-book updates from BTC Markets' public "tick"
// WebSocket channel into the dispatcher, using a WSReconnectManager for
// the underlying connection's reconnect/keepalive lifecycle.
type WSBookAdapter struct {
	exchangeID string
	pairs      []string
	mgr        *WSReconnectManager
	norm       *SymbolNormalizer
	log        *zap.Logger
}

// NewBTCMarketsAdapter builds a WSBookAdapter subscribed to pairs (in this
// system's canonical "BASE/QUOTE" form) on BTC Markets.
func NewBTCMarketsAdapter(pairs []string, log *zap.Logger) *WSBookAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	mgr := NewWSReconnectManager("btcmarkets", btcMarketsWSURL, DefaultWSReconnectConfig(), log)
	return &WSBookAdapter{
		exchangeID: "btcmarkets",
		pairs:      pairs,
		mgr:        mgr,
		norm:       DefaultSymbolMap(),
		log:        log,
	}
}

func (a *WSBookAdapter) Name() string { return "ws:" + a.exchangeID }

// Run connects to BTC Markets, subscribes to every configured pair's tick
// channel, and feeds decoded top-of-book updates to onBook until ctx is
// cancelled. Reconnection and resubscription on a dropped connection are
// handled transparently by the underlying WSReconnectManager.
func (a *WSBookAdapter) Run(ctx context.Context, onBook OnBook) error {
	marketIDs := make([]string, len(a.pairs))
	for i, p := range a.pairs {
		marketIDs[i] = toBTCMarketsID(p)
	}

	a.mgr.SetOnMessage(func(msg []byte) {
		a.handleMessage(msg, onBook)
	})
	a.mgr.SetOnDisconnect(func(err error) {
		if err != nil {
			a.log.Warn("btcmarkets feed dropped", zap.Error(err))
		}
	})
	a.mgr.AddSubscription(btcMarketsSubscribe{
		MarketIDs:   marketIDs,
		Channels:    []string{"tick"},
		MessageType: "subscribe",
	})

	if err := a.mgr.Connect(); err != nil {
		return fmt.Errorf("btcmarkets: connecting: %w", err)
	}
	defer a.mgr.Close()

	<-ctx.Done()
	return ctx.Err()
}

// handleMessage decodes one inbound tick message and emits a BestBook
// update. Messages that aren't a tick, or that carry an unparsable price,
// are dropped silently — the next tick supersedes them anyway.
func (a *WSBookAdapter) handleMessage(msg []byte, onBook OnBook) {
	var tick btcMarketsTick
	if err := json.Unmarshal(msg, &tick); err != nil || tick.MessageType != "tick" {
		return
	}
	bid, err := decimal.NewFromString(tick.BestBid)
	if err != nil {
		return
	}
	ask, err := decimal.NewFromString(tick.BestAsk)
	if err != nil {
		return
	}
	bidSize, _ := decimal.NewFromString(tick.BestBidVolume)
	askSize, _ := decimal.NewFromString(tick.BestAskVolume)

	pair := a.norm.Unify(fromBTCMarketsID(tick.MarketID))
	onBook(quote.BestBook{
		ExchangeID: a.exchangeID,
		Pair:       pair,
		Quote: quote.Quote{
			Ts:      time.Now(),
			Bid:     bid,
			BidSize: bidSize,
			Ask:     ask,
			AskSize: askSize,
		},
	})
}

func toBTCMarketsID(pair string) string {
	return strings.ReplaceAll(pair, "/", "-")
}

func fromBTCMarketsID(marketID string) string {
	return strings.ReplaceAll(marketID, "-", "/")
}
