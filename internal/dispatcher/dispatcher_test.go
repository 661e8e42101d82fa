package dispatcher

import (
	"testing"
	"time"

	"audarb/internal/clock"
	"audarb/internal/fees"
	"audarb/internal/quote"
	"audarb/internal/scanner"

	"github.com/shopspring/decimal"
)

type recordingSink struct {
	tob    []quote.BestBook
	direct []scanner.Opportunity
	tri    []scanner.TriOpportunity
}

func (r *recordingSink) PublishTOB(b quote.BestBook)         { r.tob = append(r.tob, b) }
func (r *recordingSink) PublishDirect(o scanner.Opportunity) { r.direct = append(r.direct, o) }
func (r *recordingSink) PublishTri(o scanner.TriOpportunity) { r.tri = append(r.tri, o) }

func cfg() scanner.Config {
	return scanner.Config{
		MaxTradeAUD:           decimal.NewFromInt(10000),
		MinProfitBpsAfterFees: decimal.Zero,
		MinConfidence:         decimal.Zero,
		StaleMs:               2000,
		SlippageBpsBuffer:     decimal.NewFromInt(1),
		TriStartAUD:           decimal.NewFromInt(1000),
		RequireAUDQuote:       true,
	}
}

func TestDispatcherSequencesCacheThenScan(t *testing.T) {
	now := time.Now()
	clk := clock.Fixed{At: now}
	cache := quote.NewCache()
	feeTable := fees.NewTable()
	// 10 bps per side instead of the 50 bps miss default, so the 45 bps
	// spread below clears fees and slippage.
	feeTable.Taker["exA"] = decimal.NewFromInt(10)
	feeTable.Taker["exB"] = decimal.NewFromInt(10)
	direct := scanner.NewDirectScanner(cache, feeTable, cfg(), clk)
	tri := scanner.NewTriangularScanner(cache, feeTable, cfg(), clk)
	sink := &recordingSink{}
	d := New(cache, direct, tri, sink, nil)

	d.OnBook(quote.BestBook{ExchangeID: "exA", Pair: "BTC/AUD", Quote: quote.Quote{
		Ts: now, Bid: decimal.NewFromInt(100000), BidSize: decimal.NewFromInt(1),
		Ask: decimal.NewFromInt(100050), AskSize: decimal.NewFromInt(1),
	}})
	if got, ok := cache.Get("exA", "BTC/AUD"); !ok || got.Bid.IntPart() != 100000 {
		t.Fatal("expected cache updated before scan runs")
	}

	d.OnBook(quote.BestBook{ExchangeID: "exB", Pair: "BTC/AUD", Quote: quote.Quote{
		Ts: now, Bid: decimal.NewFromInt(100500), BidSize: decimal.NewFromInt(1),
		Ask: decimal.NewFromInt(100550), AskSize: decimal.NewFromInt(1),
	}})

	if len(sink.direct) == 0 {
		t.Fatal("expected direct opportunity emitted to sink")
	}
	if len(d.RecentDirect(10)) == 0 {
		t.Fatal("expected recent-direct buffer populated")
	}
}

func TestRecentBufferCapsAtCapacity(t *testing.T) {
	d := New(quote.NewCache(), nil, nil, &recordingSink{}, nil)
	for i := 0; i < recentCapacity+10; i++ {
		d.remember(scanner.Opportunity{Pair: "BTC/AUD"})
	}
	if got := len(d.RecentDirect(0)); got != recentCapacity {
		t.Fatalf("recent buffer length = %d, want capped at %d", got, recentCapacity)
	}
}
