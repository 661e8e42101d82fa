package adapter

import (
	"context"
	"fmt"
	"time"

	"audarb/internal/quote"
	"audarb/pkg/ratelimit"
	"audarb/pkg/retry"

	"go.uber.org/zap"
)

// Fetcher fetches one top-of-book snapshot for a single pair from a venue.
// Adapters for real exchanges implement this against that venue's REST
// API; Fetch itself should not retry — RESTPoller handles that.
type Fetcher func(ctx context.Context, pair string) (quote.Quote, error)

// RESTPoller polls Fetch for every configured pair every interval,
// rate-limited and retried with backoff, translating each successful
// fetch into a BestBook update.
type RESTPoller struct {
	name       string
	exchangeID string
	pairs      []string
	interval   time.Duration
	fetch      Fetcher
	limiter    *ratelimit.RateLimiter
	retryCfg   retry.Config
	log        *zap.Logger
}

// NewRESTPoller builds a poller for exchangeID, fetching every pair in
// pairs every interval. requestsPerSecond bounds how fast pair polls start
// across all pairs combined; retries of a failed fetch within one poll are
// paced by the retry backoff, not by this limit.
func NewRESTPoller(exchangeID string, pairs []string, interval time.Duration, fetch Fetcher, requestsPerSecond float64, log *zap.Logger) *RESTPoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &RESTPoller{
		name:       "rest:" + exchangeID,
		exchangeID: exchangeID,
		pairs:      pairs,
		interval:   interval,
		fetch:      fetch,
		limiter:    ratelimit.NewRateLimiter(requestsPerSecond, requestsPerSecond),
		retryCfg:   retry.NetworkConfig(),
		log:        log,
	}
}

func (p *RESTPoller) Name() string { return p.name }

// Run polls every pair once per interval until ctx is cancelled. A fetch
// failure for one pair, even after retry, is logged and the poller moves
// on to the next pair rather than aborting the whole feed.
func (p *RESTPoller) Run(ctx context.Context, onBook OnBook) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, pair := range p.pairs {
				p.pollOne(ctx, pair, onBook)
			}
		}
	}
}

func (p *RESTPoller) pollOne(ctx context.Context, pair string, onBook OnBook) {
	if err := p.limiter.Wait(ctx); err != nil {
		return
	}
	var q quote.Quote
	err := retry.Do(ctx, func() error {
		var fetchErr error
		q, fetchErr = p.fetch(ctx, pair)
		return fetchErr
	}, p.retryCfg)
	if err != nil {
		p.log.Warn("rest poll failed", zap.String("exchange", p.exchangeID), zap.String("pair", pair), zap.Error(err))
		return
	}
	onBook(quote.BestBook{ExchangeID: p.exchangeID, Pair: pair, Quote: q})
}

// ErrNotImplemented is a placeholder Fetcher for adapters not yet wired to
// a real venue.
func ErrNotImplemented(exchangeID string) Fetcher {
	return func(ctx context.Context, pair string) (quote.Quote, error) {
		return quote.Quote{}, fmt.Errorf("%s: no REST fetcher configured for %s", exchangeID, pair)
	}
}
