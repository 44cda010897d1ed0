package currency

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fixedRates() map[string]float64 {
	return map[string]float64{
		"USD": 150,
		"HKD": 19,
		"SGD": 110,
		"EUR": 160,
		"GBP": 190,
	}
}

func TestNormalizeIdentity(t *testing.T) {
	n := NewNormalizer("JPY", fixedRates(), "", time.Hour)

	// The identity case is exact, no rounding.
	got, err := n.Normalize(248000.4, "JPY")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != 248000.4 {
		t.Errorf("Normalize = %v, want 248000.4", got)
	}
}

func TestNormalizeFallbackRates(t *testing.T) {
	n := NewNormalizer("JPY", fixedRates(), "", time.Hour)

	tests := []struct {
		amount float64
		from   string
		want   float64
	}{
		{2345.67, "SGD", 258024}, // 258023.7 rounds up
		{2712.30, "USD", 406845},
		{18500, "HKD", 351500},
		{2712.30, "usd", 406845}, // case-insensitive
	}
	for _, tt := range tests {
		got, err := n.Normalize(tt.amount, tt.from)
		if err != nil {
			t.Fatalf("Normalize(%v, %s): %v", tt.amount, tt.from, err)
		}
		if got != tt.want {
			t.Errorf("Normalize(%v, %s) = %v, want %v", tt.amount, tt.from, got, tt.want)
		}
	}
}

func TestNormalizeUnknownCurrency(t *testing.T) {
	n := NewNormalizer("JPY", fixedRates(), "", time.Hour)

	_, err := n.Normalize(100, "CHF")
	if !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("err = %v, want ErrRateUnavailable", err)
	}
}

func TestNormalizeLiveRate(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/USD" {
			t.Errorf("path = %q, want /USD", r.URL.Path)
		}
		fmt.Fprint(w, `{"rates":{"JPY":147.25}}`)
	}))
	defer srv.Close()

	n := NewNormalizer("JPY", fixedRates(), srv.URL, time.Hour)

	got, err := n.Normalize(100, "USD")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != 14725 {
		t.Errorf("Normalize = %v, want 14725 (live rate)", got)
	}

	// Second conversion inside the TTL must hit the cache, not the API.
	if _, err := n.Normalize(50, "USD"); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if hits != 1 {
		t.Errorf("API hits = %d, want 1", hits)
	}
}

func TestNormalizeCacheExpiry(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"rates":{"JPY":150}}`)
	}))
	defer srv.Close()

	n := NewNormalizer("JPY", fixedRates(), srv.URL, time.Hour)
	current := time.Now()
	n.now = func() time.Time { return current }

	if _, err := n.Normalize(100, "USD"); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	current = current.Add(2 * time.Hour)
	if _, err := n.Normalize(100, "USD"); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if hits != 2 {
		t.Errorf("API hits = %d, want 2 after TTL expiry", hits)
	}
}

func TestNormalizeLiveFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNormalizer("JPY", fixedRates(), srv.URL, time.Hour)

	got, err := n.Normalize(2345.67, "SGD")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != 258024 {
		t.Errorf("Normalize = %v, want fixed-table 258024", got)
	}
}
