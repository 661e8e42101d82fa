// Package config loads the detector's runtime tunables and host settings
// through viper, layering a YAML file under environment variable
// overrides (AUDARB_* prefix), the way the rest of the example fleet's
// config-loading repos do it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"audarb/internal/scanner"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the full host configuration: the scanners' RuntimeConfig plus
// everything needed to wire adapters, the sink, and the dashboard.
type Config struct {
	Runtime RuntimeConfig
	Server  ServerConfig
	Logging LoggingConfig
	Sim     SimConfig
	Rest    RestConfig
	WS      WSConfig
}

// RuntimeConfig mirrors the scanners' tunables, read as decimal-valued
// strings so no binary float ever enters the config layer.
type RuntimeConfig struct {
	MaxTradeAUD           decimal.Decimal
	MinProfitBpsAfterFees decimal.Decimal
	MinConfidence         decimal.Decimal
	StaleMs               int64
	SlippageBpsBuffer     decimal.Decimal
	RestPollMs            int64
	CSVFlushEvery         int
	TriStartAUD           decimal.Decimal
	DashboardHost         string
	DashboardPort         int
}

// ToScannerConfig projects RuntimeConfig onto the narrower scanner.Config
// the detection core actually needs.
func (r RuntimeConfig) ToScannerConfig() scanner.Config {
	return scanner.Config{
		MaxTradeAUD:           r.MaxTradeAUD,
		MinProfitBpsAfterFees: r.MinProfitBpsAfterFees,
		MinConfidence:         r.MinConfidence,
		StaleMs:               r.StaleMs,
		SlippageBpsBuffer:     r.SlippageBpsBuffer,
		TriStartAUD:           r.TriStartAUD,
		RequireAUDQuote:       true,
	}
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Host     string
	Port     int
	CSVDir   string
	FeesFile string

	// BasicAuthUser/BasicAuthPasswordHash protect /debug/pprof. An empty
	// BasicAuthPasswordHash disables the check.
	BasicAuthUser         string
	BasicAuthPasswordHash string
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string
	Format string
}

// SimConfig configures the synthetic market-data feed. It runs whenever
// Enabled is set (the default), alongside any real adapters that are also
// enabled.
type SimConfig struct {
	Enabled     bool
	TickEvery   time.Duration
	Exchanges   []string
	Pairs       []string
}

// RestConfig configures the REST-polled market-data adapter.
type RestConfig struct {
	Enabled           bool
	ExchangeID        string
	Pairs             []string
	PollEvery         time.Duration
	RequestsPerSecond float64
}

// WSConfig configures the WebSocket market-data adapter.
type WSConfig struct {
	Enabled bool
	Pairs   []string
}

// Load reads configuration from an optional YAML file at path (ignored if
// empty or missing) layered under AUDARB_*-prefixed environment variables,
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AUDARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Runtime: RuntimeConfig{
			StaleMs:       v.GetInt64("runtime.stale_ms"),
			RestPollMs:    v.GetInt64("runtime.rest_poll_ms"),
			CSVFlushEvery: v.GetInt("runtime.csv_flush_every"),
			DashboardHost: v.GetString("runtime.dashboard_host"),
			DashboardPort: v.GetInt("runtime.dashboard_port"),
		},
		Server: ServerConfig{
			Host:                  v.GetString("server.host"),
			Port:                  v.GetInt("server.port"),
			CSVDir:                v.GetString("server.csv_dir"),
			FeesFile:              v.GetString("server.fees_file"),
			BasicAuthUser:         v.GetString("server.basic_auth_user"),
			BasicAuthPasswordHash: v.GetString("server.basic_auth_password_hash"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Sim: SimConfig{
			Enabled:   v.GetBool("sim.enabled"),
			TickEvery: v.GetDuration("sim.tick_every"),
			Exchanges: v.GetStringSlice("sim.exchanges"),
			Pairs:     v.GetStringSlice("sim.pairs"),
		},
		Rest: RestConfig{
			Enabled:           v.GetBool("rest.enabled"),
			ExchangeID:        v.GetString("rest.exchange_id"),
			Pairs:             v.GetStringSlice("rest.pairs"),
			PollEvery:         v.GetDuration("rest.poll_every"),
			RequestsPerSecond: v.GetFloat64("rest.requests_per_second"),
		},
		WS: WSConfig{
			Enabled: v.GetBool("ws.enabled"),
			Pairs:   v.GetStringSlice("ws.pairs"),
		},
	}

	var err error
	if cfg.Runtime.MaxTradeAUD, err = parseDecimal(v, "runtime.max_trade_aud"); err != nil {
		return nil, err
	}
	if cfg.Runtime.MinProfitBpsAfterFees, err = parseDecimal(v, "runtime.min_profit_bps_after_fees"); err != nil {
		return nil, err
	}
	if cfg.Runtime.MinConfidence, err = parseDecimal(v, "runtime.min_confidence"); err != nil {
		return nil, err
	}
	if cfg.Runtime.SlippageBpsBuffer, err = parseDecimal(v, "runtime.slippage_bps_buffer"); err != nil {
		return nil, err
	}
	if cfg.Runtime.TriStartAUD, err = parseDecimal(v, "runtime.tri_start_aud"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	s := v.GetString(key)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s=%q as decimal: %w", key, s, err)
	}
	return d, nil
}

func (c *Config) validate() error {
	if c.Runtime.MaxTradeAUD.Sign() <= 0 {
		return fmt.Errorf("runtime.max_trade_aud must be positive")
	}
	if c.Runtime.StaleMs <= 0 {
		return fmt.Errorf("runtime.stale_ms must be positive")
	}
	if c.Runtime.TriStartAUD.Sign() <= 0 {
		return fmt.Errorf("runtime.tri_start_aud must be positive")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("runtime.max_trade_aud", "2000")
	v.SetDefault("runtime.min_profit_bps_after_fees", "5")
	v.SetDefault("runtime.min_confidence", "0.3")
	v.SetDefault("runtime.stale_ms", 1500)
	v.SetDefault("runtime.slippage_bps_buffer", "2")
	v.SetDefault("runtime.rest_poll_ms", 1000)
	v.SetDefault("runtime.csv_flush_every", 1)
	v.SetDefault("runtime.tri_start_aud", "1000")
	v.SetDefault("runtime.dashboard_host", "0.0.0.0")
	v.SetDefault("runtime.dashboard_port", 8090)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.csv_dir", "./data")
	v.SetDefault("server.fees_file", "")
	v.SetDefault("server.basic_auth_user", "admin")
	v.SetDefault("server.basic_auth_password_hash", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("sim.enabled", true)
	v.SetDefault("sim.tick_every", "250ms")
	v.SetDefault("sim.exchanges", []string{"simex1", "simex2", "simex3"})
	v.SetDefault("sim.pairs", []string{"BTC/AUD", "ETH/AUD", "ETH/BTC"})

	v.SetDefault("rest.enabled", false)
	v.SetDefault("rest.exchange_id", "kraken")
	v.SetDefault("rest.pairs", []string{"BTC/AUD", "ETH/AUD"})
	v.SetDefault("rest.poll_every", "1s")
	v.SetDefault("rest.requests_per_second", 1.0)

	v.SetDefault("ws.enabled", false)
	v.SetDefault("ws.pairs", []string{"BTC/AUD", "ETH/AUD"})
}
