package sink

import (
	"audarb/internal/quote"
	"audarb/internal/scanner"
)

// Sink composes persistence and live fan-out for everything the
// dispatcher produces. It is built once at startup with both writers
// wired in and never rebound — the dispatcher always calls through the
// same two interfaces, so there is nothing to swap at runtime.
type Sink struct {
	csv         *CSVWriter
	broadcaster *Broadcaster
}

// New builds a Sink from an already-constructed CSVWriter and
// Broadcaster. Either may be nil to disable that half of the sink
// (useful in tests that only care about one side).
func New(csv *CSVWriter, broadcaster *Broadcaster) *Sink {
	return &Sink{csv: csv, broadcaster: broadcaster}
}

// PublishTOB persists a top-of-book snapshot. Snapshots are not
// broadcast to the dashboard — only opportunities are, per spec.
func (s *Sink) PublishTOB(book quote.BestBook) {
	if s.csv != nil {
		s.csv.WriteTOB(book)
	}
}

// PublishDirect persists and broadcasts a direct-arbitrage opportunity.
func (s *Sink) PublishDirect(o scanner.Opportunity) {
	if s.csv != nil {
		s.csv.WriteOpportunity(o)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastDirect(o)
	}
}

// PublishTri persists and broadcasts a triangular-arbitrage opportunity.
func (s *Sink) PublishTri(o scanner.TriOpportunity) {
	if s.csv != nil {
		s.csv.WriteTriOpportunity(o)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastTri(o)
	}
}

// Close shuts down the CSV writer; the broadcaster is closed separately
// since it also owns live HTTP connections the dashboard server manages.
func (s *Sink) Close() {
	if s.csv != nil {
		s.csv.Close()
	}
}
