package fees

import "testing"

func TestTakerBpsDefaultOnMiss(t *testing.T) {
	table := NewTable()
	got := table.TakerBps("unknown-exchange")
	if !got.Equal(defaultTakerBps) {
		t.Fatalf("TakerBps on miss = %s, want default %s", got, defaultTakerBps)
	}
}

func TestParseYAML(t *testing.T) {
	yamlDoc := []byte(`
taker_bps:
  binance: 10
  kraken: 26
maker_bps:
  binance: 10
  kraken: 16
`)
	table, err := ParseYAML(yamlDoc)
	if err != nil {
		t.Fatalf("ParseYAML error: %v", err)
	}
	if got := table.TakerBps("kraken"); got.IntPart() != 26 {
		t.Fatalf("TakerBps(kraken) = %s, want 26", got)
	}
	if got := table.TakerBps("binance"); got.IntPart() != 10 {
		t.Fatalf("TakerBps(binance) = %s, want 10", got)
	}
	if got := table.TakerBps("missing"); !got.Equal(defaultTakerBps) {
		t.Fatalf("TakerBps(missing) = %s, want default", got)
	}
}

func TestNilTableReturnsDefault(t *testing.T) {
	var table *Table
	if got := table.TakerBps("anything"); !got.Equal(defaultTakerBps) {
		t.Fatalf("nil table TakerBps = %s, want default", got)
	}
}
