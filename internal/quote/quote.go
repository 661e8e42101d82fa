// Package quote holds the top-of-book data model and the single-writer
// cache the detection core reads from. The cache is deliberately unlocked:
// the dispatcher is its only writer and it is never touched concurrently
// (see internal/dispatcher), so a sync.RWMutex here would only cost
// cycles for a race that cannot occur.
package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a top-of-book snapshot for one (exchange, pair).
type Quote struct {
	Ts      time.Time
	Bid     decimal.Decimal
	BidSize decimal.Decimal
	Ask     decimal.Decimal
	AskSize decimal.Decimal
}

// Age returns how long ago the quote was observed, relative to now.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.Ts)
}

// Fresh reports whether the quote's age is within staleMs milliseconds of
// now.
func (q Quote) Fresh(now time.Time, staleMs int64) bool {
	if q.Ts.IsZero() {
		return false
	}
	return q.Age(now) <= time.Duration(staleMs)*time.Millisecond
}

// AskValid reports whether the quote's ask side carries a live, sized
// offer. A quote with a zero ask size (no liquidity on that side right
// now) still has a usable bid side, so scanners gate each side
// independently rather than discarding the whole quote.
func (q Quote) AskValid() bool {
	return q.Ask.Sign() > 0 && q.AskSize.Sign() > 0
}

// BidValid reports whether the quote's bid side carries a live, sized
// offer. See AskValid.
func (q Quote) BidValid() bool {
	return q.Bid.Sign() > 0 && q.BidSize.Sign() > 0
}

// Key identifies a cache slot.
type Key struct {
	ExchangeID string
	Pair       string
}

// BestBook is one inbound top-of-book update.
type BestBook struct {
	ExchangeID string
	Pair       string
	Quote      Quote
}

// Cache is the latest-wins quote store. ExchangeID/pair entries not yet
// observed simply do not exist; there is no history and no interpolation.
type Cache struct {
	entries map[Key]Quote
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]Quote)}
}

// Update overwrites the cache slot for book.ExchangeID/book.Pair with
// book.Quote, regardless of the previous entry's timestamp. The dispatcher
// is expected to call this exactly once per inbound BestBook, before
// running any scanner.
func (c *Cache) Update(book BestBook) {
	c.entries[Key{ExchangeID: book.ExchangeID, Pair: book.Pair}] = book.Quote
}

// Get returns the cached quote for (exchangeID, pair) and whether one
// exists.
func (c *Cache) Get(exchangeID, pair string) (Quote, bool) {
	q, ok := c.entries[Key{ExchangeID: exchangeID, Pair: pair}]
	return q, ok
}

// ForPair calls fn for every (exchangeID, quote) cached under pair.
func (c *Cache) ForPair(pair string, fn func(exchangeID string, q Quote)) {
	for k, q := range c.entries {
		if k.Pair == pair {
			fn(k.ExchangeID, q)
		}
	}
}

// ForExchange calls fn for every (pair, quote) cached under exchangeID.
func (c *Cache) ForExchange(exchangeID string, fn func(pair string, q Quote)) {
	for k, q := range c.entries {
		if k.ExchangeID == exchangeID {
			fn(k.Pair, q)
		}
	}
}

// Len returns the number of cached entries, used by internal/metrics for
// the cache-size gauge.
func (c *Cache) Len() int {
	return len(c.entries)
}
