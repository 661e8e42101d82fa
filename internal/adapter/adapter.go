// Package adapter supplies market data to the detection core. Every
// adapter's job ends at producing quote.BestBook values; none of them
// place orders, hold balances, or manage positions — that scope belongs
// to a different kind of system than this one.
package adapter

import (
	"context"

	"audarb/internal/quote"
)

// OnBook is called once per top-of-book update an adapter observes.
type OnBook func(quote.BestBook)

// Adapter is the interface every market-data source implements, whether
// backed by a live exchange WebSocket, a REST poller, or a synthetic feed.
type Adapter interface {
	// Name identifies the adapter for logging and metrics.
	Name() string
	// Run feeds BestBook updates to onBook until ctx is cancelled or an
	// unrecoverable error occurs. A transient failure (a dropped
	// connection, a single bad HTTP response) must be retried internally,
	// not returned — only a permanent failure (bad config, auth failure)
	// should return an error.
	Run(ctx context.Context, onBook OnBook) error
}
