// Package sink persists and fans out the opportunities the scanners emit.
// Every write here is best-effort: a failure is logged and swallowed, never
// propagated back to the dispatcher.
package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"audarb/internal/metrics"
	"audarb/internal/quote"
	"audarb/internal/scanner"

	"go.uber.org/zap"
)

const (
	tobFile = "tob_snapshots.csv"
	oppFile = "opportunities.csv"
	triFile = "tri_opportunities.csv"
)

var (
	tobHeader = []string{"ts_iso", "ts", "exchange", "pair", "bid", "bid_sz", "ask", "ask_sz"}
	oppHeader = []string{"ts_iso", "ts", "kind", "pair", "buy_ex", "sell_ex", "buy_price", "sell_price", "qty", "raw_bps", "net_bps", "profit_aud", "confidence", "latency_ms"}
	triHeader = []string{"ts_iso", "ts", "kind", "exchange", "path", "start_aud", "end_aud", "net_bps", "profit_aud", "confidence", "latency_ms", "legs_json"}
)

// csvFile wraps one append-only CSV file with a buffered, periodically
// flushed writer.
type csvFile struct {
	mu         sync.Mutex
	f          *os.File
	w          *csv.Writer
	flushEvery int
	sinceFlush int
}

func openCSVFile(dir, name string, header []string) (*csvFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating csv dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	needsHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needsHeader = false
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if needsHeader {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header to %s: %w", path, err)
		}
		w.Flush()
	}
	return &csvFile{f: f, w: w, flushEvery: 1}, nil
}

func (c *csvFile) writeRow(row []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.sinceFlush++
	if c.sinceFlush >= c.flushEvery {
		c.w.Flush()
		c.sinceFlush = 0
		return c.w.Error()
	}
	return nil
}

func (c *csvFile) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	c.f.Close()
}

// CSVWriter persists every top-of-book update and every emitted
// opportunity to three append-only CSV files, matching the schema the
// original Python implementation's csv sink used.
type CSVWriter struct {
	tob *csvFile
	opp *csvFile
	tri *csvFile
	log *zap.Logger
}

// NewCSVWriter opens (or creates) the three CSV files under dir.
// flushEvery controls how many rows accumulate before each file is
// flushed to disk; 1 flushes every row, matching append-only durability.
func NewCSVWriter(dir string, flushEvery int, log *zap.Logger) (*CSVWriter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if flushEvery < 1 {
		flushEvery = 1
	}
	tob, err := openCSVFile(dir, tobFile, tobHeader)
	if err != nil {
		return nil, err
	}
	opp, err := openCSVFile(dir, oppFile, oppHeader)
	if err != nil {
		return nil, err
	}
	tri, err := openCSVFile(dir, triFile, triHeader)
	if err != nil {
		return nil, err
	}
	tob.flushEvery, opp.flushEvery, tri.flushEvery = flushEvery, flushEvery, flushEvery
	return &CSVWriter{tob: tob, opp: opp, tri: tri, log: log}, nil
}

// WriteTOB appends one top-of-book snapshot row.
func (w *CSVWriter) WriteTOB(book quote.BestBook) {
	ts := book.Quote.Ts
	row := []string{
		isoTime(ts), unixFractional(ts), book.ExchangeID, book.Pair,
		book.Quote.Bid.String(), book.Quote.BidSize.String(),
		book.Quote.Ask.String(), book.Quote.AskSize.String(),
	}
	if err := w.tob.writeRow(row); err != nil {
		w.log.Error("csv write failed", zap.String("file", tobFile), zap.Error(err))
		metrics.RecordSinkWriteFailure(tobFile)
	}
}

// WriteOpportunity appends one direct-arbitrage opportunity row.
func (w *CSVWriter) WriteOpportunity(o scanner.Opportunity) {
	ts := o.Ts
	row := []string{
		isoTime(ts), unixFractional(ts), "cex", o.Pair,
		o.BuyExchange, o.SellExchange,
		o.BuyPrice.String(), o.SellPrice.String(), o.Qty.String(),
		o.RawBps.String(), o.NetBps.String(), o.ProfitQuote.String(),
		o.Confidence.String(), fmt.Sprintf("%d", o.LatencyMs),
	}
	if err := w.opp.writeRow(row); err != nil {
		w.log.Error("csv write failed", zap.String("file", oppFile), zap.Error(err))
		metrics.RecordSinkWriteFailure(oppFile)
	}
}

// WriteTriOpportunity appends one triangular-arbitrage opportunity row.
func (w *CSVWriter) WriteTriOpportunity(o scanner.TriOpportunity) {
	ts := o.Ts
	legsJSON, err := json.Marshal(legsForCSV(o.Legs))
	if err != nil {
		w.log.Error("marshaling legs", zap.Error(err))
		legsJSON = []byte("[]")
	}
	row := []string{
		isoTime(ts), unixFractional(ts), "tri", o.Exchange,
		strings.Join(o.Path, "->"),
		o.StartAUD.String(), o.EndAUD.String(), o.NetBps.String(), o.ProfitAUD.String(),
		o.Confidence.String(), fmt.Sprintf("%d", o.LatencyMs),
		string(legsJSON),
	}
	if werr := w.tri.writeRow(row); werr != nil {
		w.log.Error("csv write failed", zap.String("file", triFile), zap.Error(werr))
		metrics.RecordSinkWriteFailure(triFile)
	}
}

// Close flushes and closes all three files.
func (w *CSVWriter) Close() {
	w.tob.close()
	w.opp.close()
	w.tri.close()
}

type legJSON struct {
	Pair  string `json:"pair"`
	Side  string `json:"side"`
	Price string `json:"price"`
	MaxIn string `json:"max_in"`
	AgeS  float64 `json:"age_s"`
}

func legsForCSV(legs []scanner.Leg) []legJSON {
	out := make([]legJSON, len(legs))
	for i, l := range legs {
		out[i] = legJSON{Pair: l.Pair, Side: l.Side, Price: l.Price.String(), MaxIn: l.MaxIn.String(), AgeS: l.AgeS}
	}
	return out
}

func isoTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

// unixFractional formats ts as fractional unix seconds with microsecond
// precision, matching the original Python sink's f"{ts:.6f}".
func unixFractional(ts time.Time) string {
	return fmt.Sprintf("%.6f", float64(ts.UnixNano())/1e9)
}
