package adapter

import (
	"encoding/json"
	"testing"

	"audarb/internal/quote"
)

func TestBTCMarketsAdapterHandleMessageEmitsBestBook(t *testing.T) {
	a := NewBTCMarketsAdapter([]string{"BTC/AUD"}, nil)

	tick := btcMarketsTick{
		MarketID:      "BTC-AUD",
		MessageType:   "tick",
		BestBid:       "93500.00",
		BestBidVolume: "0.5",
		BestAsk:       "93550.00",
		BestAskVolume: "0.75",
	}
	msg, err := json.Marshal(tick)
	if err != nil {
		t.Fatalf("marshal tick: %v", err)
	}

	var got *quote.BestBook
	a.handleMessage(msg, func(b quote.BestBook) { got = &b })

	if got == nil {
		t.Fatal("expected a BestBook update")
	}
	if got.ExchangeID != "btcmarkets" {
		t.Errorf("exchange = %q, want btcmarkets", got.ExchangeID)
	}
	if got.Pair != "BTC/AUD" {
		t.Errorf("pair = %q, want BTC/AUD", got.Pair)
	}
	if got.Quote.Bid.String() != "93500" {
		t.Errorf("bid = %s, want 93500", got.Quote.Bid)
	}
	if got.Quote.Ask.String() != "93550" {
		t.Errorf("ask = %s, want 93550", got.Quote.Ask)
	}
}

func TestBTCMarketsAdapterHandleMessageIgnoresNonTick(t *testing.T) {
	a := NewBTCMarketsAdapter([]string{"BTC/AUD"}, nil)

	var called bool
	a.handleMessage([]byte(`{"messageType":"heartbeat"}`), func(quote.BestBook) { called = true })
	if called {
		t.Fatal("expected non-tick messages to be ignored")
	}

	a.handleMessage([]byte(`not json`), func(quote.BestBook) { called = true })
	if called {
		t.Fatal("expected malformed messages to be ignored")
	}
}

func TestBTCMarketsAdapterUnifiesLegacySymbols(t *testing.T) {
	a := NewBTCMarketsAdapter([]string{"BTC/AUD"}, nil)

	tick := btcMarketsTick{
		MarketID:      "XBT-AUD",
		MessageType:   "tick",
		BestBid:       "93500.00",
		BestBidVolume: "0.5",
		BestAsk:       "93550.00",
		BestAskVolume: "0.75",
	}
	msg, _ := json.Marshal(tick)

	var got *quote.BestBook
	a.handleMessage(msg, func(b quote.BestBook) { got = &b })
	if got == nil {
		t.Fatal("expected a BestBook update")
	}
	if got.Pair != "BTC/AUD" {
		t.Errorf("pair = %q, want BTC/AUD (normalized from XBT/AUD)", got.Pair)
	}
}

func TestToAndFromBTCMarketsID(t *testing.T) {
	if got := toBTCMarketsID("BTC/AUD"); got != "BTC-AUD" {
		t.Errorf("toBTCMarketsID = %q, want BTC-AUD", got)
	}
	if got := fromBTCMarketsID("BTC-AUD"); got != "BTC/AUD" {
		t.Errorf("fromBTCMarketsID = %q, want BTC/AUD", got)
	}
}
