package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mkQuote(ts time.Time) Quote {
	return Quote{
		Ts:      ts,
		Bid:     decimal.NewFromFloat(100),
		BidSize: decimal.NewFromFloat(1),
		Ask:     decimal.NewFromFloat(101),
		AskSize: decimal.NewFromFloat(1),
	}
}

func TestCacheLatestWins(t *testing.T) {
	c := NewCache()
	t0 := time.Now()
	c.Update(BestBook{ExchangeID: "ex1", Pair: "BTC/AUD", Quote: mkQuote(t0)})
	t1 := t0.Add(time.Second)
	q1 := mkQuote(t1)
	q1.Bid = decimal.NewFromFloat(200)
	c.Update(BestBook{ExchangeID: "ex1", Pair: "BTC/AUD", Quote: q1})

	got, ok := c.Get("ex1", "BTC/AUD")
	if !ok {
		t.Fatal("expected entry present")
	}
	if !got.Bid.Equal(decimal.NewFromFloat(200)) {
		t.Fatalf("expected latest quote to win, got bid %s", got.Bid)
	}
}

func TestCacheMissingEntry(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nope", "BTC/AUD"); ok {
		t.Fatal("expected no entry for unseen key")
	}
}

func TestQuoteFreshness(t *testing.T) {
	now := time.Now()
	q := mkQuote(now.Add(-500 * time.Millisecond))
	if q.Fresh(now, 200) {
		t.Fatal("quote aged 500ms should not be fresh at 200ms threshold")
	}
	if !q.Fresh(now, 1000) {
		t.Fatal("quote aged 500ms should be fresh at 1000ms threshold")
	}
}

func TestQuoteValid(t *testing.T) {
	q := mkQuote(time.Now())
	if !q.AskValid() {
		t.Fatal("expected ask side to be valid")
	}
	if !q.BidValid() {
		t.Fatal("expected bid side to be valid")
	}

	noBid := q
	noBid.Bid = decimal.Zero
	if noBid.BidValid() {
		t.Fatal("expected zero bid to be invalid")
	}
	if !noBid.AskValid() {
		t.Fatal("zero bid should not affect ask-side validity")
	}

	noAskSize := q
	noAskSize.AskSize = decimal.Zero
	if noAskSize.AskValid() {
		t.Fatal("expected zero ask size to be invalid")
	}
	if !noAskSize.BidValid() {
		t.Fatal("zero ask size should not affect bid-side validity")
	}
}

func TestForPairAndForExchange(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.Update(BestBook{ExchangeID: "ex1", Pair: "BTC/AUD", Quote: mkQuote(now)})
	c.Update(BestBook{ExchangeID: "ex2", Pair: "BTC/AUD", Quote: mkQuote(now)})
	c.Update(BestBook{ExchangeID: "ex1", Pair: "ETH/AUD", Quote: mkQuote(now)})

	var pairCount int
	c.ForPair("BTC/AUD", func(exchangeID string, q Quote) { pairCount++ })
	if pairCount != 2 {
		t.Fatalf("expected 2 exchanges quoting BTC/AUD, got %d", pairCount)
	}

	var exCount int
	c.ForExchange("ex1", func(pair string, q Quote) { exCount++ })
	if exCount != 2 {
		t.Fatalf("expected 2 pairs on ex1, got %d", exCount)
	}

	if c.Len() != 3 {
		t.Fatalf("expected 3 cache entries, got %d", c.Len())
	}
}
