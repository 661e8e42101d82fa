package scanner

import (
	"sort"
	"strings"
	"time"

	"audarb/internal/clock"
	"audarb/internal/fees"
	"audarb/internal/money"
	"audarb/internal/quote"

	"github.com/shopspring/decimal"
)

const audCurrency = "AUD"

// TriangularScanner detects single-exchange triangular arbitrage: starting
// from AUD, through two intermediate currencies X and Y, back to AUD.
type TriangularScanner struct {
	cache *quote.Cache
	fees  *fees.Table
	cfg   Config
	clk   clock.Clock
}

// NewTriangularScanner builds a scanner bound to the given cache, fee
// table, and config. clk defaults to clock.Real{} when nil.
func NewTriangularScanner(cache *quote.Cache, feeTable *fees.Table, cfg Config, clk clock.Clock) *TriangularScanner {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TriangularScanner{cache: cache, fees: feeTable, cfg: cfg, clk: clk}
}

// Scan returns every qualifying triangular opportunity on exchangeID, for
// currency cycles enumerated over the sorted set of currencies the
// exchange quotes, so two runs over identical cache state produce
// identically ordered output.
func (s *TriangularScanner) Scan(exchangeID string) []TriOpportunity {
	now := s.clk.Now()
	edges, currencies := s.buildEdges(exchangeID, now)
	if _, ok := currencies[audCurrency]; !ok {
		// No AUD-quoted pair on this exchange this tick; nothing to root a
		// cycle at.
		return nil
	}

	var sorted []string
	for c := range currencies {
		if c == audCurrency {
			continue
		}
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)

	var out []TriOpportunity
	for _, x := range sorted {
		for _, y := range sorted {
			if x == y {
				continue
			}
			opp, ok := s.evaluateCycle(exchangeID, now, edges, x, y)
			if ok {
				out = append(out, opp)
			}
		}
	}
	return out
}

// buildEdges constructs the directed currency graph for exchangeID from
// fresh quotes: each pair "BASE/QUOTE" contributes a QUOTE->BASE edge
// (spend quote currency, buy base at ask) when the ask side is usable,
// and a BASE->QUOTE edge (sell base at bid, receive quote currency) when
// the bid side is usable. The two sides are gated independently, so a
// pair with a live ask but a zero-size bid (or vice versa) still
// contributes the edge it can.
func (s *TriangularScanner) buildEdges(exchangeID string, now time.Time) (map[[2]string]Edge, map[string]struct{}) {
	edges := make(map[[2]string]Edge)
	currencies := make(map[string]struct{})

	s.cache.ForExchange(exchangeID, func(pair string, q quote.Quote) {
		base, quoteCcy, ok := splitPair(pair)
		if !ok || !q.Fresh(now, s.cfg.StaleMs) {
			return
		}

		takerBps := s.fees.TakerBps(exchangeID)
		feeK := decimal.NewFromInt(10000).Sub(takerBps).Sub(s.cfg.SlippageBpsBuffer).Div(decimal.NewFromInt(10000))

		if q.AskValid() {
			currencies[base] = struct{}{}
			currencies[quoteCcy] = struct{}{}
			ageS := now.Sub(q.Ts).Seconds()
			edges[[2]string{quoteCcy, base}] = Edge{
				From: quoteCcy, To: base, Pair: pair, Side: "buy",
				Rate:  feeK.Div(q.Ask),
				MaxIn: q.AskSize.Mul(q.Ask),
				Price: q.Ask, AgeS: ageS,
			}
		}
		if q.BidValid() {
			currencies[base] = struct{}{}
			currencies[quoteCcy] = struct{}{}
			ageS := now.Sub(q.Ts).Seconds()
			edges[[2]string{base, quoteCcy}] = Edge{
				From: base, To: quoteCcy, Pair: pair, Side: "sell",
				Rate:  feeK.Mul(q.Bid),
				MaxIn: q.BidSize,
				Price: q.Bid, AgeS: ageS,
			}
		}
	})
	return edges, currencies
}

// splitPair parses "BASE/QUOTE" into its two currency codes.
func splitPair(pair string) (base, quoteCcy string, ok bool) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// apply converts amountIn units of edge.From into edge.To, capped at
// edge.MaxIn units of input. Returns the converted amount and whether the
// cap bound the conversion.
func apply(amountIn decimal.Decimal, edge Edge) (decimal.Decimal, bool) {
	usable := money.Min(amountIn, edge.MaxIn)
	capped := usable.LessThan(amountIn)
	return usable.Mul(edge.Rate), capped
}

// edgeDepthScore scores how much headroom a leg's actual usable amount has
// against its capacity: full confidence below half capacity, decaying
// linearly to 0 at full capacity.
func edgeDepthScore(amountIn decimal.Decimal, edge Edge) decimal.Decimal {
	if edge.MaxIn.Sign() <= 0 {
		return decimal.Zero
	}
	ratio := amountIn.Div(edge.MaxIn)
	half := decimal.NewFromFloat(0.5)
	if ratio.LessThanOrEqual(half) {
		return decimal.NewFromInt(1)
	}
	over := ratio.Sub(half).Mul(decimal.NewFromInt(2))
	return money.Clamp01(decimal.NewFromInt(1).Sub(over))
}

func (s *TriangularScanner) evaluateCycle(exchangeID string, now time.Time, edges map[[2]string]Edge, x, y string) (TriOpportunity, bool) {
	e1, ok := edges[[2]string{audCurrency, x}]
	if !ok {
		return TriOpportunity{}, false
	}
	e2, ok := edges[[2]string{x, y}]
	if !ok {
		return TriOpportunity{}, false
	}
	e3, ok := edges[[2]string{y, audCurrency}]
	if !ok {
		return TriOpportunity{}, false
	}

	startAUD := s.cfg.TriStartAUD
	amount1, _ := apply(startAUD, e1)
	if amount1.Sign() <= 0 {
		return TriOpportunity{}, false
	}
	amount2, _ := apply(amount1, e2)
	if amount2.Sign() <= 0 {
		return TriOpportunity{}, false
	}
	amount3, _ := apply(amount2, e3)
	if amount3.Sign() <= 0 {
		return TriOpportunity{}, false
	}

	netBps := money.Bps(amount3.Sub(startAUD).Div(startAUD))
	if netBps.LessThan(s.cfg.MinProfitBpsAfterFees) {
		return TriOpportunity{}, false
	}

	d1 := edgeDepthScore(startAUD, e1)
	d2 := edgeDepthScore(amount1, e2)
	d3 := edgeDepthScore(amount2, e3)
	three := decimal.NewFromInt(3)
	confDepth := d1.Add(d2).Add(d3).Div(three)

	maxAgeMs := maxAgeMsOf(e1.AgeS, e2.AgeS, e3.AgeS) * 1000
	confTime := triTimeScore(maxAgeMs)

	confidence := combinedConfidence(confDepth, confTime)
	if confidence.LessThan(s.cfg.MinConfidence) {
		return TriOpportunity{}, false
	}

	return TriOpportunity{
		Ts:         now,
		Exchange:   exchangeID,
		Path:       []string{audCurrency, x, y, audCurrency},
		StartAUD:   startAUD,
		EndAUD:     amount3,
		NetBps:     netBps,
		ProfitAUD:  amount3.Sub(startAUD),
		Confidence: confidence,
		LatencyMs:  int64(maxAgeMs),
		Legs: []Leg{
			{Pair: e1.Pair, Side: e1.Side, Price: e1.Price, MaxIn: e1.MaxIn, AgeS: round3(e1.AgeS)},
			{Pair: e2.Pair, Side: e2.Side, Price: e2.Price, MaxIn: e2.MaxIn, AgeS: round3(e2.AgeS)},
			{Pair: e3.Pair, Side: e3.Side, Price: e3.Price, MaxIn: e3.MaxIn, AgeS: round3(e3.AgeS)},
		},
	}, true
}

// triTimeScore scores freshness on the 200ms/800ms schedule original_source
// uses for triangular cycles: it reaches 0 at 1000ms of age, stricter than
// the direct scanner's timeScore, which reaches 0 at 1200ms, since a
// triangular cycle spans three independently-aged quotes.
func triTimeScore(ageMs float64) decimal.Decimal {
	if ageMs <= 200 {
		return decimal.NewFromInt(1)
	}
	raw := 1.0 - (ageMs-200)/800.0
	if raw < 0 {
		raw = 0
	}
	return decimal.NewFromFloat(raw)
}

func maxAgeMsOf(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func round3(x float64) float64 {
	return float64(int64(x*1000+0.5)) / 1000
}
