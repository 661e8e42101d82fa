package adapter

import "strings"

// SymbolNormalizer rewrites a venue's native symbol spelling into this
// system's canonical "BASE/QUOTE" form before a quote reaches the core.
type SymbolNormalizer struct {
	aliases map[string]string
}

// DefaultSymbolMap carries the handful of legacy ticker aliases exchanges
// still quote under (Kraken's XBT for BTC, XDG for DOGE) into their
// canonical forms.
func DefaultSymbolMap() *SymbolNormalizer {
	return &SymbolNormalizer{aliases: map[string]string{
		"XBT/AUD": "BTC/AUD",
		"XDG/AUD": "DOGE/AUD",
		"XBT":     "BTC",
		"XDG":     "DOGE",
	}}
}

// Unify upper-cases sym, turns "-" separators into "/", and rewrites the
// result through the alias table, passing it through unchanged if it
// names no known alias. So "xbt-aud" and "XBT/AUD" both resolve to
// "BTC/AUD"; a symbol with no separator, such as "XBTAUD", is not split
// and comes back unchanged.
func (m *SymbolNormalizer) Unify(sym string) string {
	normalized := strings.ToUpper(strings.ReplaceAll(sym, "-", "/"))
	if mapped, ok := m.aliases[normalized]; ok {
		return mapped
	}
	return normalized
}
