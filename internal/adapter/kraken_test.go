package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// krakenFetcherAgainst builds a Fetcher identical to NewKrakenFetcher but
// pointed at a test server instead of the real Kraken API, by rewriting
// every outbound request's host to the test server's.
func krakenFetcherAgainst(t *testing.T, server *httptest.Server) Fetcher {
	t.Helper()
	client := NewHTTPClient(DefaultHTTPClientConfig())
	client.client.Transport = rewriteHostTransport{base: http.DefaultTransport, target: server.URL}
	return NewKrakenFetcher(client)
}

type rewriteHostTransport struct {
	base   http.RoundTripper
	target string
}

func (rt rewriteHostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := http.NewRequest(req.Method, rt.target+req.URL.RequestURI(), req.Body)
	if err != nil {
		return nil, err
	}
	target = target.WithContext(req.Context())
	return rt.base.RoundTrip(target)
}

func TestKrakenFetcherParsesTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "XBTAUD") {
			t.Errorf("expected request for XBTAUD, got query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":[],"result":{"XXBTZAUD":{"a":["93605.10000","1","1.000"],"b":["93600.00000","3","3.500"]}}}`))
	}))
	defer server.Close()

	fetch := krakenFetcherAgainst(t, server)
	q, err := fetch(context.Background(), "BTC/AUD")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !q.Ask.Equal(decimal.RequireFromString("93605.10000")) {
		t.Errorf("ask = %s, want 93605.10000", q.Ask)
	}
	if !q.AskSize.Equal(decimal.RequireFromString("1.000")) {
		t.Errorf("ask size = %s, want 1.000", q.AskSize)
	}
	if !q.Bid.Equal(decimal.RequireFromString("93600.00000")) {
		t.Errorf("bid = %s, want 93600.00000", q.Bid)
	}
	if !q.BidSize.Equal(decimal.RequireFromString("3.500")) {
		t.Errorf("bid size = %s, want 3.500", q.BidSize)
	}
	if q.Ts.IsZero() {
		t.Error("expected a non-zero timestamp")
	}
}

func TestKrakenFetcherRejectsUnmappedPair(t *testing.T) {
	fetch := NewKrakenFetcher(nil)
	if _, err := fetch(context.Background(), "SOL/AUD"); err == nil {
		t.Fatal("expected error for a pair with no altname mapping")
	}
}

func TestKrakenFetcherPropagatesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":["EQuery:Unknown asset pair"],"result":{}}`))
	}))
	defer server.Close()

	fetch := krakenFetcherAgainst(t, server)
	if _, err := fetch(context.Background(), "BTC/AUD"); err == nil {
		t.Fatal("expected an error from a Kraken error response")
	}
}
