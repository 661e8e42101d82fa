package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"audarb/internal/adapter"
	"audarb/internal/api"
	"audarb/internal/clock"
	"audarb/internal/config"
	"audarb/internal/dispatcher"
	"audarb/internal/fees"
	"audarb/internal/quote"
	"audarb/internal/scanner"
	"audarb/internal/sink"
	"audarb/pkg/logging"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional; env vars override)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	feeTable := fees.NewTable()
	if cfg.Server.FeesFile != "" {
		data, err := os.ReadFile(cfg.Server.FeesFile)
		if err != nil {
			log.Fatal("reading fees file", zap.Error(err))
		}
		feeTable, err = fees.ParseYAML(data)
		if err != nil {
			log.Fatal("parsing fees file", zap.Error(err))
		}
	}

	cache := quote.NewCache()
	scanCfg := cfg.Runtime.ToScannerConfig()
	clk := clock.Real{}
	directScanner := scanner.NewDirectScanner(cache, feeTable, scanCfg, clk)
	triScanner := scanner.NewTriangularScanner(cache, feeTable, scanCfg, clk)

	csvWriter, err := sink.NewCSVWriter(cfg.Server.CSVDir, cfg.Runtime.CSVFlushEvery, log)
	if err != nil {
		log.Fatal("opening csv sink", zap.Error(err))
	}
	broadcaster := sink.NewBroadcaster(log)
	publisher := sink.New(csvWriter, broadcaster)

	disp := dispatcher.New(cache, directScanner, triScanner, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Adapters run concurrently; this lock makes their OnBook calls run one
	// at a time, since the dispatcher and its quote cache are unlocked.
	var onBookMu sync.Mutex
	forward := func(b quote.BestBook) {
		onBookMu.Lock()
		defer onBookMu.Unlock()
		disp.OnBook(b)
	}

	adapters := buildAdapters(cfg, log)
	var wg sync.WaitGroup
	for _, a := range adapters {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Run(ctx, forward); err != nil && ctx.Err() == nil {
				log.Error("adapter stopped", zap.String("adapter", a.Name()), zap.Error(err))
			}
		}()
	}

	router := api.SetupRoutes(&api.Dependencies{
		Dispatcher:            disp,
		Broadcaster:           broadcaster,
		Log:                   log,
		BasicAuthUser:         cfg.Server.BasicAuthUser,
		BasicAuthPasswordHash: cfg.Server.BasicAuthPasswordHash,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("dashboard listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("dashboard server failed", zap.Error(err))
		}
	}()

	quitCh := make(chan os.Signal, 1)
	signal.Notify(quitCh, syscall.SIGINT, syscall.SIGTERM)
	<-quitCh

	log.Info("shutting down")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("dashboard shutdown", zap.Error(err))
	}

	adapter.CloseGlobalClient()
	broadcaster.Close()
	publisher.Close()
	log.Info("shutdown complete")
}

// buildAdapters wires every configured market-data feed: the synthetic
// feed for local testing, a REST poller against a real venue, and a
// WebSocket feed against a real venue, any combination of which may be
// enabled at once.
func buildAdapters(cfg *config.Config, log *zap.Logger) []adapter.Adapter {
	var adapters []adapter.Adapter

	if cfg.Sim.Enabled {
		tickEvery := cfg.Sim.TickEvery
		if tickEvery <= 0 {
			tickEvery = 250 * time.Millisecond
		}
		adapters = append(adapters, adapter.NewSimFeed(cfg.Sim.Exchanges, cfg.Sim.Pairs, tickEvery, 42))
	}

	if cfg.Rest.Enabled {
		pollEvery := cfg.Rest.PollEvery
		if pollEvery <= 0 {
			pollEvery = time.Second
		}
		var fetch adapter.Fetcher
		switch cfg.Rest.ExchangeID {
		case "kraken":
			fetch = adapter.NewKrakenFetcher(adapter.GetGlobalHTTPClient())
		default:
			log.Warn("rest.exchange_id has no wired Fetcher, polling will fail", zap.String("exchange", cfg.Rest.ExchangeID))
			fetch = adapter.ErrNotImplemented(cfg.Rest.ExchangeID)
		}
		adapters = append(adapters, adapter.NewRESTPoller(cfg.Rest.ExchangeID, cfg.Rest.Pairs, pollEvery, fetch, cfg.Rest.RequestsPerSecond, log))
	}

	if cfg.WS.Enabled {
		adapters = append(adapters, adapter.NewBTCMarketsAdapter(cfg.WS.Pairs, log))
	}

	return adapters
}
