package adapter

import (
	"context"
	"math/rand"
	"time"

	"audarb/internal/quote"

	"github.com/shopspring/decimal"
)

// SimFeed generates synthetic top-of-book quotes for a fixed set of
// exchanges and pairs, with no network dependency. It exists so the
// system can be demonstrated end to end — dashboard, CSV output,
// dispatcher — without live exchange credentials.
type SimFeed struct {
	name      string
	exchanges []string
	pairs     []string
	tickEvery time.Duration
	rng       *rand.Rand

	mid map[string]decimal.Decimal // pair -> synthetic mid price
}

// NewSimFeed builds a synthetic feed quoting every pair on every exchange,
// ticking at tickEvery. seed makes the generated price path reproducible
// across runs.
func NewSimFeed(exchanges, pairs []string, tickEvery time.Duration, seed int64) *SimFeed {
	mid := make(map[string]decimal.Decimal, len(pairs))
	for _, p := range pairs {
		mid[p] = startingMid(p)
	}
	return &SimFeed{
		name:      "sim",
		exchanges: exchanges,
		pairs:     pairs,
		tickEvery: tickEvery,
		rng:       rand.New(rand.NewSource(seed)),
		mid:       mid,
	}
}

func (s *SimFeed) Name() string { return s.name }

// Run ticks every s.tickEvery, jittering each pair's mid price by a small
// percentage and quoting an independent bid/ask spread per exchange, so
// the direct and triangular scanners both have something to find.
func (s *SimFeed) Run(ctx context.Context, onBook OnBook) error {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(onBook)
		}
	}
}

func (s *SimFeed) tick(onBook OnBook) {
	now := time.Now()
	for _, pair := range s.pairs {
		mid := s.jitterMid(pair)
		for i, ex := range s.exchanges {
			// Stagger each exchange's quote slightly off the synthetic mid
			// so cross-exchange spreads (and therefore arbitrage) appear.
			skew := decimal.NewFromFloat(1.0 + 0.0008*float64(i%3-1))
			exMid := mid.Mul(skew)
			spread := exMid.Mul(decimal.NewFromFloat(0.0006))
			bid := exMid.Sub(spread)
			ask := exMid.Add(spread)

			onBook(quote.BestBook{
				ExchangeID: ex,
				Pair:       pair,
				Quote: quote.Quote{
					Ts:      now,
					Bid:     bid.Round(8),
					BidSize: decimal.NewFromFloat(0.5 + s.rng.Float64()*2),
					Ask:     ask.Round(8),
					AskSize: decimal.NewFromFloat(0.5 + s.rng.Float64()*2),
				},
			})
		}
	}
}

func (s *SimFeed) jitterMid(pair string) decimal.Decimal {
	cur := s.mid[pair]
	delta := 1.0 + (s.rng.Float64()-0.5)*0.002
	next := cur.Mul(decimal.NewFromFloat(delta))
	s.mid[pair] = next
	return next
}

func startingMid(pair string) decimal.Decimal {
	switch pair {
	case "BTC/AUD":
		return decimal.NewFromInt(100000)
	case "ETH/AUD":
		return decimal.NewFromInt(5000)
	case "ETH/BTC":
		return decimal.NewFromFloat(0.05)
	default:
		return decimal.NewFromInt(100)
	}
}
