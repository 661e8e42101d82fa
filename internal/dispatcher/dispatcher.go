// Package dispatcher sequences the cache update, direct scan, and
// triangular scan that follow every inbound quote, and pushes whatever the
// scanners emit to the sink in the order detected.
package dispatcher

import (
	"sync"
	"time"

	"audarb/internal/metrics"
	"audarb/internal/quote"
	"audarb/internal/scanner"

	"go.uber.org/zap"
)

// Sink receives every top-of-book update and emitted opportunity.
// internal/sink.Sink implements this; tests can supply a recording stub.
type Sink interface {
	PublishTOB(quote.BestBook)
	PublishDirect(scanner.Opportunity)
	PublishTri(scanner.TriOpportunity)
}

const recentCapacity = 500

// Dispatcher owns the quote cache and is the sole caller of both
// scanners. It is not safe for concurrent use: cmd/detector routes every
// adapter's updates through one mutex, so only one OnBook call runs at a
// time (see the concurrency model the package-level doc in internal/quote
// describes).
type Dispatcher struct {
	cache   *quote.Cache
	direct  *scanner.DirectScanner
	tri     *scanner.TriangularScanner
	sink    Sink
	log     *zap.Logger

	mu          sync.Mutex
	recentDirect []scanner.Opportunity
	recentTri    []scanner.TriOpportunity
}

// New builds a Dispatcher. direct and tri must share cache's instance.
func New(cache *quote.Cache, direct *scanner.DirectScanner, tri *scanner.TriangularScanner, sink Sink, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{cache: cache, direct: direct, tri: tri, sink: sink, log: log}
}

// OnBook is the system's single inbound entry point: update the cache,
// scan the updated pair for direct opportunities, scan the updated
// exchange for triangular opportunities, and push every result to the
// sink — all synchronously, all before returning.
func (d *Dispatcher) OnBook(book quote.BestBook) {
	d.cache.Update(book)
	d.sink.PublishTOB(book)
	metrics.RecordQuote(book.ExchangeID)
	metrics.SetCacheSize(d.cache.Len())

	start := time.Now()
	directOpps := d.direct.Scan(book.Pair)
	metrics.RecordScan("direct", float64(time.Since(start).Microseconds())/1000)
	for _, opp := range directOpps {
		d.remember(opp)
		d.sink.PublishDirect(opp)
		metrics.RecordOpportunity("direct")
	}

	start = time.Now()
	triOpps := d.tri.Scan(book.ExchangeID)
	metrics.RecordScan("triangular", float64(time.Since(start).Microseconds())/1000)
	for _, opp := range triOpps {
		d.rememberTri(opp)
		d.sink.PublishTri(opp)
		metrics.RecordOpportunity("triangular")
	}
}

func (d *Dispatcher) remember(o scanner.Opportunity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recentDirect = prepend(d.recentDirect, o, recentCapacity)
}

func (d *Dispatcher) rememberTri(o scanner.TriOpportunity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recentTri = prependTri(d.recentTri, o, recentCapacity)
}

// RecentDirect returns up to n of the most recently emitted direct
// opportunities, most-recent-first. Backs the dashboard's
// /opportunities/latest endpoint.
func (d *Dispatcher) RecentDirect(n int) []scanner.Opportunity {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > len(d.recentDirect) || n <= 0 {
		n = len(d.recentDirect)
	}
	out := make([]scanner.Opportunity, n)
	copy(out, d.recentDirect[:n])
	return out
}

// RecentTri returns up to n of the most recently emitted triangular
// opportunities, most-recent-first.
func (d *Dispatcher) RecentTri(n int) []scanner.TriOpportunity {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > len(d.recentTri) || n <= 0 {
		n = len(d.recentTri)
	}
	out := make([]scanner.TriOpportunity, n)
	copy(out, d.recentTri[:n])
	return out
}

// CacheSize exposes the quote cache's entry count, which the dashboard's
// /health endpoint reports.
func (d *Dispatcher) CacheSize() int {
	return d.cache.Len()
}

func prepend(list []scanner.Opportunity, item scanner.Opportunity, cap int) []scanner.Opportunity {
	list = append(list, scanner.Opportunity{})
	copy(list[1:], list)
	list[0] = item
	if len(list) > cap {
		list = list[:cap]
	}
	return list
}

func prependTri(list []scanner.TriOpportunity, item scanner.TriOpportunity, cap int) []scanner.TriOpportunity {
	list = append(list, scanner.TriOpportunity{})
	copy(list[1:], list)
	list[0] = item
	if len(list) > cap {
		list = list[:cap]
	}
	return list
}
