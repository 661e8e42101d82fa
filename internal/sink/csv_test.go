package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"audarb/internal/quote"
	"audarb/internal/scanner"

	"github.com/shopspring/decimal"
)

func readAllRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestCSVWriterWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()

	w1, err := NewCSVWriter(dir, 1, nil)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	w1.WriteTOB(quote.BestBook{
		ExchangeID: "exA", Pair: "BTC/AUD",
		Quote: quote.Quote{Ts: time.Now(), Bid: decimal.NewFromInt(100), BidSize: decimal.NewFromInt(1), Ask: decimal.NewFromInt(101), AskSize: decimal.NewFromInt(1)},
	})
	w1.Close()

	// Reopen: a second writer appending to the same file must not rewrite
	// the header.
	w2, err := NewCSVWriter(dir, 1, nil)
	if err != nil {
		t.Fatalf("NewCSVWriter (reopen): %v", err)
	}
	w2.WriteTOB(quote.BestBook{
		ExchangeID: "exB", Pair: "BTC/AUD",
		Quote: quote.Quote{Ts: time.Now(), Bid: decimal.NewFromInt(102), BidSize: decimal.NewFromInt(1), Ask: decimal.NewFromInt(103), AskSize: decimal.NewFromInt(1)},
	})
	w2.Close()

	rows := readAllRows(t, filepath.Join(dir, tobFile))
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (1 header + 2 data)", len(rows))
	}
	if rows[0][2] != "exchange" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][2] != "exA" || rows[2][2] != "exB" {
		t.Fatalf("unexpected exchange column values: %v / %v", rows[1], rows[2])
	}
}

func TestCSVWriterOpportunityRow(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, 1, nil)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	defer w.Close()

	w.WriteOpportunity(scanner.Opportunity{
		Ts: time.Now(), Pair: "BTC/AUD", BuyExchange: "exA", SellExchange: "exB",
		BuyPrice: decimal.NewFromInt(100), SellPrice: decimal.NewFromInt(105), Qty: decimal.NewFromInt(1),
		RawBps: decimal.NewFromInt(500), NetBps: decimal.NewFromInt(450),
		ProfitQuote: decimal.NewFromInt(45), Confidence: decimal.NewFromFloat(0.9), LatencyMs: 5,
	})

	rows := readAllRows(t, filepath.Join(dir, oppFile))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (1 header + 1 data)", len(rows))
	}
	if rows[0][11] != "profit_aud" {
		t.Fatalf("expected profit_aud header column, got %v", rows[0])
	}
	if rows[1][11] != "45" {
		t.Fatalf("expected profit_aud value 45, got %q", rows[1][11])
	}
}

func TestCSVWriterTriOpportunityRow(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, 1, nil)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	defer w.Close()

	w.WriteTriOpportunity(scanner.TriOpportunity{
		Ts: time.Now(), Exchange: "exA", Path: []string{"AUD", "BTC", "ETH", "AUD"},
		StartAUD: decimal.NewFromInt(1000), EndAUD: decimal.NewFromInt(1010),
		NetBps: decimal.NewFromInt(100), ProfitAUD: decimal.NewFromInt(10),
		Confidence: decimal.NewFromFloat(0.8), LatencyMs: 3,
		Legs: []scanner.Leg{
			{Pair: "BTC/AUD", Side: "buy", Price: decimal.NewFromInt(100000), MaxIn: decimal.NewFromInt(1000), AgeS: 0.1},
		},
	})

	rows := readAllRows(t, filepath.Join(dir, triFile))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][4] != "AUD->BTC->ETH->AUD" {
		t.Fatalf("expected joined path, got %q", rows[1][4])
	}
	if rows[1][11] == "" || rows[1][11] == "[]" {
		t.Fatalf("expected non-empty legs_json, got %q", rows[1][11])
	}
}

func TestCSVWriterFlushEveryBatchesWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, 5, nil)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	for i := 0; i < 3; i++ {
		w.WriteTOB(quote.BestBook{
			ExchangeID: "exA", Pair: "BTC/AUD",
			Quote: quote.Quote{Ts: time.Now(), Bid: decimal.NewFromInt(100), BidSize: decimal.NewFromInt(1), Ask: decimal.NewFromInt(101), AskSize: decimal.NewFromInt(1)},
		})
	}

	// Before the 5th row and an explicit flush, the OS-level file may not
	// yet reflect all rows; Close forces a final flush so the data is
	// always durable on shutdown.
	w.Close()

	rows := readAllRows(t, filepath.Join(dir, tobFile))
	if len(rows) != 4 {
		t.Fatalf("got %d rows after close, want 4 (1 header + 3 data)", len(rows))
	}
}
