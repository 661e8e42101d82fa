// Package scanner implements the direct and triangular arbitrage scans.
// Both scanners are total functions of (cache, fee table, config, now):
// degenerate input produces an empty result, never an error, matching the
// "no exceptions cross the scanner boundary" rule the rest of the system
// relies on.
package scanner

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity is a detected direct (cross-exchange) arbitrage: buy on
// BuyExchange at BuyPrice, sell on SellExchange at SellPrice.
type Opportunity struct {
	Ts          time.Time
	Pair        string
	BuyExchange string
	SellExchange string
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
	Qty         decimal.Decimal
	RawBps      decimal.Decimal
	NetBps      decimal.Decimal
	// ProfitQuote is the expected profit denominated in the pair's quote
	// currency. Direct scanning is restricted to AUD-quoted pairs (see
	// Config.RequireAUDQuote), so in practice this is always AUD; the CSV
	// sink still writes it under the historical "profit_aud" header.
	ProfitQuote decimal.Decimal
	Confidence  decimal.Decimal
	LatencyMs   int64
}

// Leg is one edge of a triangular cycle, recorded for audit/display.
type Leg struct {
	Pair   string
	Side   string // "buy" or "sell"
	Price  decimal.Decimal
	MaxIn  decimal.Decimal
	AgeS   float64
}

// TriOpportunity is a detected single-exchange triangular arbitrage,
// rooted at AUD, through exactly two intermediate currencies.
type TriOpportunity struct {
	Ts         time.Time
	Exchange   string
	Path       []string // ["AUD", X, Y, "AUD"]
	StartAUD   decimal.Decimal
	EndAUD     decimal.Decimal
	NetBps     decimal.Decimal
	ProfitAUD  decimal.Decimal
	Confidence decimal.Decimal
	LatencyMs  int64
	Legs       []Leg
}

// Edge is a directed, fee-adjusted conversion step in a currency graph:
// converting 1 unit of From yields Rate units of To, capped at MaxIn units
// of From per tick.
type Edge struct {
	From, To string
	Pair     string
	Side     string // "buy" (quote->base via ask) or "sell" (base->quote via bid)
	Rate     decimal.Decimal
	MaxIn    decimal.Decimal
	Price    decimal.Decimal
	AgeS     float64
}

// Config bundles the tunables both scanners read from RuntimeConfig.
type Config struct {
	MaxTradeAUD            decimal.Decimal
	MinProfitBpsAfterFees  decimal.Decimal
	MinConfidence          decimal.Decimal
	StaleMs                int64
	SlippageBpsBuffer      decimal.Decimal
	TriStartAUD            decimal.Decimal
	// RequireAUDQuote restricts the direct scanner to pairs quoted in AUD
	// (pair strings ending "/AUD"), resolving spec's open question about
	// max_trade_aud/ask assuming an AUD-denominated ask price.
	RequireAUDQuote bool
}
