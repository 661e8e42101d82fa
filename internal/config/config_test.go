package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Runtime.MaxTradeAUD.IntPart() != 2000 {
		t.Errorf("default max_trade_aud = %s, want 2000", cfg.Runtime.MaxTradeAUD)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("default server.port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Rest.Enabled {
		t.Error("expected rest adapter disabled by default")
	}
	if cfg.Rest.ExchangeID != "kraken" {
		t.Errorf("default rest.exchange_id = %q, want kraken", cfg.Rest.ExchangeID)
	}
	if cfg.WS.Enabled {
		t.Error("expected ws adapter disabled by default")
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yml")
	doc := []byte(`
runtime:
  max_trade_aud: "5000"
  min_profit_bps_after_fees: "8"
  min_confidence: "0.4"
  stale_ms: 900
  slippage_bps_buffer: "3"
  tri_start_aud: "2000"
server:
  port: 9191
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Runtime.MaxTradeAUD.IntPart() != 5000 {
		t.Errorf("max_trade_aud = %s, want 5000", cfg.Runtime.MaxTradeAUD)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("server.port = %d, want 9191", cfg.Server.Port)
	}
}

func TestLoadRejectsNonPositiveMaxTradeAUD(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yml")
	doc := []byte("runtime:\n  max_trade_aud: \"0\"\n")
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for non-positive max_trade_aud")
	}
}
