package scanner

import (
	"strings"

	"audarb/internal/money"

	"github.com/shopspring/decimal"
)

// depthScore scores how comfortably qty fits within the smaller of the two
// sides' available size: min(bidSize, askSize) / qty, clamped to [0, 1].
// It is 1.0 while qty is at or under the tighter side and falls to
// size/qty once qty exceeds it.
func depthScore(qty, bidSize, askSize decimal.Decimal) decimal.Decimal {
	denom := money.Min(bidSize, askSize)
	if qty.Sign() <= 0 {
		// Unreachable in practice: every call site only reaches here after
		// confirming qty > 0. Kept as a guard rather than removed, since a
		// future change to the qty > 0 precondition upstream should not
		// resurface as a divide-by-zero here.
		qty = decimal.New(1, -9)
	}
	depth := denom.Div(qty)
	return money.Clamp01(depth)
}

// timeScore scores freshness: full confidence up to 200ms of age, then
// decaying linearly to 0 at 1.2 seconds of age.
func timeScore(ageS float64) decimal.Decimal {
	if ageS <= 0.2 {
		return decimal.NewFromInt(1)
	}
	raw := 1.0 - (ageS - 0.2)
	if raw < 0 {
		raw = 0
	}
	return decimal.NewFromFloat(raw)
}

// combinedConfidence averages a depth score and a time score.
func combinedConfidence(depth, timeSc decimal.Decimal) decimal.Decimal {
	half := decimal.NewFromFloat(0.5)
	return depth.Mul(half).Add(timeSc.Mul(half))
}

// isAUDQuoted reports whether pair is quoted in AUD, e.g. "BTC/AUD".
func isAUDQuoted(pair string) bool {
	return strings.HasSuffix(pair, "/AUD")
}
