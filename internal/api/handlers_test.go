package api

import (
	"net/http/httptest"
	"testing"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"no query", "/opportunities/latest", defaultLatestLimit},
		{"valid limit", "/opportunities/latest?limit=10", 10},
		{"zero is invalid", "/opportunities/latest?limit=0", defaultLatestLimit},
		{"negative is invalid", "/opportunities/latest?limit=-5", defaultLatestLimit},
		{"non-numeric is invalid", "/opportunities/latest?limit=abc", defaultLatestLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := parseLimit(r); got != tt.want {
				t.Errorf("parseLimit(%q) = %d, want %d", tt.url, got, tt.want)
			}
		})
	}
}
