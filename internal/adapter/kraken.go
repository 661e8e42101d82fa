package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"audarb/internal/quote"

	"github.com/shopspring/decimal"
)

const krakenTickerURL = "https://api.kraken.com/0/public/Ticker"

// krakenPairAltnames maps this system's canonical "BASE/QUOTE" pairs to
// the altname Kraken's public Ticker endpoint accepts as its "pair"
// query parameter.
var krakenPairAltnames = map[string]string{
	"BTC/AUD":  "XBTAUD",
	"ETH/AUD":  "ETHAUD",
	"DOGE/AUD": "XDGAUD",
}

// krakenTickerResponse mirrors the subset of Kraken's Ticker response
// this fetcher consumes: a top-level error list and a result map keyed
// by Kraken's own (asset-class-prefixed) pair name.
type krakenTickerResponse struct {
	Error  []string                        `json:"error"`
	Result map[string]krakenTickerPairInfo `json:"result"`
}

// krakenTickerPairInfo holds one pair's ask/bid arrays: [price, whole lot
// volume, lot volume]. The lot volume (index 2) carries more precision
// than the whole-lot figure, so that's what this fetcher reads for size.
type krakenTickerPairInfo struct {
	Ask []string `json:"a"`
	Bid []string `json:"b"`
}

// NewKrakenFetcher returns a Fetcher that polls Kraken's public REST
// Ticker endpoint for one pair per call, for use as a RESTPoller's
// Fetcher behind the "kraken" exchange id. client defaults to
// GetGlobalHTTPClient() when nil.
func NewKrakenFetcher(client *HTTPClient) Fetcher {
	if client == nil {
		client = GetGlobalHTTPClient()
	}
	norm := DefaultSymbolMap()

	return func(ctx context.Context, pair string) (quote.Quote, error) {
		altname, ok := krakenPairAltnames[norm.Unify(pair)]
		if !ok {
			return quote.Quote{}, fmt.Errorf("kraken: no altname mapping for pair %s", pair)
		}

		reqURL := krakenTickerURL + "?pair=" + url.QueryEscape(altname)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return quote.Quote{}, fmt.Errorf("kraken: building request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return quote.Quote{}, fmt.Errorf("kraken: request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return quote.Quote{}, fmt.Errorf("kraken: unexpected status %d", resp.StatusCode)
		}

		var body krakenTickerResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return quote.Quote{}, fmt.Errorf("kraken: decoding response: %w", err)
		}
		if len(body.Error) > 0 {
			return quote.Quote{}, fmt.Errorf("kraken: api error: %s", strings.Join(body.Error, "; "))
		}

		for _, info := range body.Result {
			return parseKrakenTicker(info)
		}
		return quote.Quote{}, fmt.Errorf("kraken: empty result for pair %s", pair)
	}
}

func parseKrakenTicker(info krakenTickerPairInfo) (quote.Quote, error) {
	if len(info.Ask) < 3 || len(info.Bid) < 3 {
		return quote.Quote{}, fmt.Errorf("kraken: malformed ticker payload")
	}
	ask, err := decimal.NewFromString(info.Ask[0])
	if err != nil {
		return quote.Quote{}, fmt.Errorf("kraken: parsing ask price: %w", err)
	}
	askSize, err := decimal.NewFromString(info.Ask[2])
	if err != nil {
		return quote.Quote{}, fmt.Errorf("kraken: parsing ask size: %w", err)
	}
	bid, err := decimal.NewFromString(info.Bid[0])
	if err != nil {
		return quote.Quote{}, fmt.Errorf("kraken: parsing bid price: %w", err)
	}
	bidSize, err := decimal.NewFromString(info.Bid[2])
	if err != nil {
		return quote.Quote{}, fmt.Errorf("kraken: parsing bid size: %w", err)
	}

	return quote.Quote{
		Ts:      time.Now(),
		Bid:     bid,
		BidSize: bidSize,
		Ask:     ask,
		AskSize: askSize,
	}, nil
}
