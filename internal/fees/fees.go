// Package fees holds the per-exchange taker (and, for completeness,
// maker) fee schedule the scanners discount opportunities by.
package fees

import (
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// defaultTakerBps is applied whenever an exchange has no entry in the
// table. Treating a miss as "expensive" rather than "free" keeps a
// misconfigured fee table from manufacturing opportunities that do not
// exist.
var defaultTakerBps = decimal.NewFromInt(50)

// Table is a taker/maker fee schedule keyed by exchange id. Only taker
// fees are consulted by the scanners; maker fees are parsed and retained
// for completeness with the source fee schedule format but unused, since
// every fill this system models is a taker fill.
type Table struct {
	Taker map[string]decimal.Decimal
	Maker map[string]decimal.Decimal
}

// rawSchedule mirrors the on-disk YAML shape: two maps of exchange id to
// an integer basis-points figure.
type rawSchedule struct {
	TakerBps map[string]int `yaml:"taker_bps"`
	MakerBps map[string]int `yaml:"maker_bps"`
}

// NewTable builds an empty fee table; every lookup falls back to the
// default.
func NewTable() *Table {
	return &Table{Taker: map[string]decimal.Decimal{}, Maker: map[string]decimal.Decimal{}}
}

// ParseYAML loads a fee table from YAML shaped like:
//
//	taker_bps:
//	  binance: 10
//	  kraken: 26
//	maker_bps:
//	  binance: 10
//	  kraken: 16
func ParseYAML(data []byte) (*Table, error) {
	var raw rawSchedule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	t := NewTable()
	for ex, bps := range raw.TakerBps {
		t.Taker[ex] = decimal.NewFromInt(int64(bps))
	}
	for ex, bps := range raw.MakerBps {
		t.Maker[ex] = decimal.NewFromInt(int64(bps))
	}
	return t, nil
}

// TakerBps returns the taker fee, in basis points, for exchangeID. A
// missing entry returns the safe default rather than an error.
func (t *Table) TakerBps(exchangeID string) decimal.Decimal {
	if t == nil {
		return defaultTakerBps
	}
	if bps, ok := t.Taker[exchangeID]; ok {
		return bps
	}
	return defaultTakerBps
}
