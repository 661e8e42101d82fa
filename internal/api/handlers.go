package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"audarb/internal/dispatcher"
)

const defaultLatestLimit = 50

func parseLimit(r *http.Request) int {
	q := r.URL.Query().Get("limit")
	if q == "" {
		return defaultLatestLimit
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return defaultLatestLimit
	}
	return n
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// latestDirectHandler serves the most recently emitted direct-arbitrage
// opportunities, most-recent-first.
func latestDirectHandler(d *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.RecentDirect(parseLimit(r)))
	}
}

// latestTriHandler serves the most recently emitted triangular-arbitrage
// opportunities, most-recent-first.
func latestTriHandler(d *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.RecentTri(parseLimit(r)))
	}
}

// healthHandler reports liveness and the current quote cache size, so a
// health check can distinguish "up but receiving no quotes" from "up and
// healthy".
func healthHandler(d *dispatcher.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, struct {
			Status    string `json:"status"`
			CacheSize int    `json:"cache_size"`
		}{Status: "ok", CacheSize: d.CacheSize()})
	}
}
