// Package money provides the decimal arithmetic the detection core runs on.
//
// Every price, size, and profit figure in this system is a
// github.com/shopspring/decimal.Decimal. Binary floats never enter price
// math: a float64 conversion is only acceptable at the very edge, when
// serializing a value for a metric or a UI label that never feeds back into
// a calculation.
package money

import (
	"github.com/shopspring/decimal"
)

// bpsScale is the basis-points multiplier: 1.0 == 10,000 bps.
var bpsScale = decimal.NewFromInt(10000)

// lotStep is the quantization step applied to traded quantities: 1e-8,
// matching the satoshi-scale precision spot crypto venues quote sizes in.
var lotStep = decimal.New(1, -8)

// Bps converts a fractional rate (e.g. 0.0012) into basis points (12).
func Bps(x decimal.Decimal) decimal.Decimal {
	return x.Mul(bpsScale)
}

// QuantizeDown truncates x down to the nearest multiple of step, rounding
// toward zero for positive x. This mirrors ROUND_DOWN quantization: a
// detector must never report a tradeable quantity larger than what the
// venue will actually accept.
func QuantizeDown(x decimal.Decimal, step decimal.Decimal) decimal.Decimal {
	if step.IsZero() {
		return x
	}
	units := x.Div(step).Truncate(0)
	return units.Mul(step)
}

// QuantizeLot truncates x down to the standard 1e-8 lot step.
func QuantizeLot(x decimal.Decimal) decimal.Decimal {
	return QuantizeDown(x, lotStep)
}

// NetBps computes the fee- and slippage-adjusted net spread, in basis
// points, of buying at ask and selling at bid.
//
//	net_bps = bps((bid - ask) / ask) - taker_buy_bps - taker_sell_bps - slip_bps
func NetBps(bid, ask, takerBuyBps, takerSellBps, slipBps decimal.Decimal) decimal.Decimal {
	if ask.IsZero() {
		return decimal.Zero
	}
	raw := Bps(bid.Sub(ask).Div(ask))
	return raw.Sub(takerBuyBps).Sub(takerSellBps).Sub(slipBps)
}

// Clamp01 restricts x to the closed interval [0, 1].
func Clamp01(x decimal.Decimal) decimal.Decimal {
	if x.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if x.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return x
}

// Min returns the smallest of the given decimals. Panics if called with no
// arguments; every call site passes at least two.
func Min(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	m := first
	for _, d := range rest {
		if d.LessThan(m) {
			m = d
		}
	}
	return m
}
