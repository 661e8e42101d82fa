package scanner

import (
	"time"

	"audarb/internal/clock"
	"audarb/internal/fees"
	"audarb/internal/money"
	"audarb/internal/quote"

	"github.com/shopspring/decimal"
)

// DirectScanner detects cross-exchange arbitrage on a single pair: buy at
// one exchange's fresh ask, sell at another exchange's fresh bid, for
// every (ask-exchange, bid-exchange) pairing with ask-exchange !=
// bid-exchange. Every qualifying pairing is emitted;
// there is no "best only" de-duplication.
type DirectScanner struct {
	cache *quote.Cache
	fees  *fees.Table
	cfg   Config
	clk   clock.Clock
}

// NewDirectScanner builds a scanner bound to the given cache, fee table,
// and config. clk defaults to clock.Real{} when nil.
func NewDirectScanner(cache *quote.Cache, feeTable *fees.Table, cfg Config, clk clock.Clock) *DirectScanner {
	if clk == nil {
		clk = clock.Real{}
	}
	return &DirectScanner{cache: cache, fees: feeTable, cfg: cfg, clk: clk}
}

// sideQuote pairs an exchange id with a quote usable on one side (ask or
// bid), used while building the candidate lists Scan iterates.
type sideQuote struct {
	exchangeID string
	q          quote.Quote
}

// Scan returns every qualifying direct opportunity for pair, in the order
// discovered (ask-exchange outer loop, bid-exchange inner loop). Ask and
// bid candidates are collected separately, each gated on freshness and on
// that side's own validity (AskValid/BidValid), so an exchange quoting a live ask but a zero-size bid (or vice versa)
// still contributes the side it does have. Returns nil, never an error,
// on a pair with no usable (ask, bid) pairing across distinct exchanges
// or a non-AUD-quoted pair when Config.RequireAUDQuote is set.
func (s *DirectScanner) Scan(pair string) []Opportunity {
	if s.cfg.RequireAUDQuote && !isAUDQuoted(pair) {
		return nil
	}
	now := s.clk.Now()

	var asks, bids []sideQuote
	s.cache.ForPair(pair, func(exchangeID string, q quote.Quote) {
		if !q.Fresh(now, s.cfg.StaleMs) {
			return
		}
		if q.AskValid() {
			asks = append(asks, sideQuote{exchangeID: exchangeID, q: q})
		}
		if q.BidValid() {
			bids = append(bids, sideQuote{exchangeID: exchangeID, q: q})
		}
	})
	if len(asks) == 0 || len(bids) == 0 {
		return nil
	}

	var out []Opportunity
	for _, a := range asks { // a is the buy side (we hit its ask)
		for _, b := range bids { // b is the sell side (we hit its bid)
			if a.exchangeID == b.exchangeID {
				continue
			}
			opp, ok := s.evaluate(pair, now, a, b)
			if ok {
				out = append(out, opp)
			}
		}
	}
	return out
}

func (s *DirectScanner) evaluate(pair string, now time.Time, a, b sideQuote) (Opportunity, bool) {
	ask := a.q
	bid := b.q

	takerBuy := s.fees.TakerBps(a.exchangeID)
	takerSell := s.fees.TakerBps(b.exchangeID)
	netBps := money.NetBps(bid.Bid, ask.Ask, takerBuy, takerSell, s.cfg.SlippageBpsBuffer)
	if netBps.LessThan(s.cfg.MinProfitBpsAfterFees) {
		return Opportunity{}, false
	}

	var audCapQty decimal.Decimal
	if ask.Ask.Sign() > 0 {
		audCapQty = money.QuantizeLot(s.cfg.MaxTradeAUD.Div(ask.Ask))
	}
	qty := money.Min(ask.AskSize, bid.BidSize, audCapQty)
	if qty.Sign() <= 0 {
		return Opportunity{}, false
	}

	ageS := maxAgeSeconds(now, ask.Ts, bid.Ts)
	depth := depthScore(qty, bid.BidSize, ask.AskSize)
	timeSc := timeScore(ageS)
	confidence := combinedConfidence(depth, timeSc)
	if confidence.LessThan(s.cfg.MinConfidence) {
		return Opportunity{}, false
	}

	rawBps := money.Bps(bid.Bid.Sub(ask.Ask).Div(ask.Ask))
	profit := bid.Bid.Sub(ask.Ask).Mul(qty)

	return Opportunity{
		Ts:           now,
		Pair:         pair,
		BuyExchange:  a.exchangeID,
		SellExchange: b.exchangeID,
		BuyPrice:     ask.Ask,
		SellPrice:    bid.Bid,
		Qty:          qty,
		RawBps:       rawBps,
		NetBps:       netBps,
		ProfitQuote:  profit,
		Confidence:   confidence,
		LatencyMs:    int64(ageS * 1000),
	}, true
}

// maxAgeSeconds returns the larger of the two quotes' ages, in seconds.
func maxAgeSeconds(now, aTs, bTs time.Time) float64 {
	aAge := now.Sub(aTs).Seconds()
	bAge := now.Sub(bTs).Seconds()
	if aAge > bAge {
		return aAge
	}
	return bAge
}
