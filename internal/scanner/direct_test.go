package scanner

import (
	"testing"
	"time"

	"audarb/internal/clock"
	"audarb/internal/fees"
	"audarb/internal/quote"

	"github.com/shopspring/decimal"
)

func dd(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func defaultConfig() Config {
	return Config{
		MaxTradeAUD:           dd("10000"),
		MinProfitBpsAfterFees: dd("0"),
		MinConfidence:         dd("0"),
		StaleMs:               2000,
		SlippageBpsBuffer:     dd("1"),
		TriStartAUD:           dd("1000"),
		RequireAUDQuote:       true,
	}
}

// lowFees charges exA and exB a 10 bps taker fee each, below the 50 bps
// default a fee-table miss falls back to.
func lowFees() *fees.Table {
	t := fees.NewTable()
	t.Taker["exA"] = dd("10")
	t.Taker["exB"] = dd("10")
	return t
}

func q(bid, bidSz, ask, askSz string, ts time.Time) quote.Quote {
	return quote.Quote{
		Ts: ts, Bid: dd(bid), BidSize: dd(bidSz), Ask: dd(ask), AskSize: dd(askSz),
	}
}

func TestDirectScannerFindsCrossExchangeSpread(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: q("100000", "1", "100050", "1", now)})
	cache.Update(quote.BestBook{ExchangeID: "exB", Pair: "BTC/AUD", Quote: q("100500", "1", "100550", "1", now)})

	feeTable := lowFees()
	s := NewDirectScanner(cache, feeTable, defaultConfig(), clock.Fixed{At: now})

	opps := s.Scan("BTC/AUD")
	var found bool
	for _, o := range opps {
		if o.BuyExchange == "exA" && o.SellExchange == "exB" {
			found = true
			if !o.BuyPrice.Equal(dd("100050")) {
				t.Errorf("BuyPrice = %s, want 100050", o.BuyPrice)
			}
			if !o.SellPrice.Equal(dd("100500")) {
				t.Errorf("SellPrice = %s, want 100500", o.SellPrice)
			}
		}
	}
	if !found {
		t.Fatal("expected opportunity buying exA, selling exB")
	}
}

func TestDirectScannerSkipsStaleQuote(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: q("100000", "1", "100050", "1", now.Add(-5*time.Second))})
	cache.Update(quote.BestBook{ExchangeID: "exB", Pair: "BTC/AUD", Quote: q("100500", "1", "100550", "1", now)})

	s := NewDirectScanner(cache, fees.NewTable(), defaultConfig(), clock.Fixed{At: now})
	opps := s.Scan("BTC/AUD")
	if len(opps) != 0 {
		t.Fatalf("expected no opportunities with one stale quote, got %d", len(opps))
	}
}

func TestDirectScannerSkipsNonAUDPairWhenRequired(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/USDT", Quote: q("60000", "1", "60050", "1", now)})
	cache.Update(quote.BestBook{ExchangeID: "exB", Pair: "BTC/USDT", Quote: q("60500", "1", "60550", "1", now)})

	s := NewDirectScanner(cache, fees.NewTable(), defaultConfig(), clock.Fixed{At: now})
	opps := s.Scan("BTC/USDT")
	if len(opps) != 0 {
		t.Fatalf("expected non-AUD pair to be skipped, got %d opportunities", len(opps))
	}
}

func TestDirectScannerSkipsSingleExchange(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: q("100000", "1", "100050", "1", now)})

	s := NewDirectScanner(cache, fees.NewTable(), defaultConfig(), clock.Fixed{At: now})
	if opps := s.Scan("BTC/AUD"); len(opps) != 0 {
		t.Fatalf("expected no opportunities with a single quoter, got %d", len(opps))
	}
}

func TestDirectScannerQtyCappedByMaxTradeAUD(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: q("100000", "10", "100000", "10", now)})
	cache.Update(quote.BestBook{ExchangeID: "exB", Pair: "BTC/AUD", Quote: q("101000", "10", "101000", "10", now)})

	cfg := defaultConfig()
	cfg.MaxTradeAUD = dd("1000") // 0.01 BTC cap at ask=100000
	s := NewDirectScanner(cache, lowFees(), cfg, clock.Fixed{At: now})
	opps := s.Scan("BTC/AUD")
	if len(opps) == 0 {
		t.Fatal("expected at least one opportunity")
	}
	for _, o := range opps {
		if o.BuyExchange == "exA" {
			want := dd("0.01")
			if !o.Qty.Equal(want) {
				t.Errorf("Qty = %s, want %s (capped by max_trade_aud/ask)", o.Qty, want)
			}
		}
	}
}

func TestDirectScannerUsesLiveSideOfAOneSidedQuote(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	// exA has a live ask but no bid depth right now; it should still be
	// usable as the buy side even though it can't serve as a sell side.
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: q("0", "0", "100050", "1", now)})
	cache.Update(quote.BestBook{ExchangeID: "exB", Pair: "BTC/AUD", Quote: q("100500", "1", "100550", "1", now)})

	s := NewDirectScanner(cache, lowFees(), defaultConfig(), clock.Fixed{At: now})
	opps := s.Scan("BTC/AUD")

	var found bool
	for _, o := range opps {
		if o.BuyExchange == "exA" && o.SellExchange == "exB" {
			found = true
		}
		if o.SellExchange == "exA" {
			t.Errorf("exA has no bid depth and should never be the sell side, got opportunity %+v", o)
		}
	}
	if !found {
		t.Fatal("expected exA's live ask to still produce a buy-exA/sell-exB opportunity")
	}
}

func TestDirectScannerFiltersBelowMinProfitBps(t *testing.T) {
	now := time.Now()
	cache := quote.NewCache()
	cache.Update(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: q("100000", "1", "100010", "1", now)})
	cache.Update(quote.BestBook{ExchangeID: "exB", Pair: "BTC/AUD", Quote: q("100012", "1", "100020", "1", now)})

	cfg := defaultConfig()
	cfg.MinProfitBpsAfterFees = dd("1000") // unreachable threshold
	s := NewDirectScanner(cache, fees.NewTable(), cfg, clock.Fixed{At: now})
	if opps := s.Scan("BTC/AUD"); len(opps) != 0 {
		t.Fatalf("expected no opportunities above an unreachable min profit threshold, got %d", len(opps))
	}
}
