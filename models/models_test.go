package models

import (
	"testing"
	"time"
)

func TestSlugifyKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gold Maple Leaf 1oz", "gold-maple-leaf-1oz"},
		{"  Vienna Philharmonic 1/2 oz  ", "vienna-philharmonic-1-2-oz"},
		{"Britannia (2025)", "britannia-2025"},
		{"---", ""},
		{"already-a-key", "already-a-key"},
	}
	for _, tt := range tests {
		if got := SlugifyKey(tt.in); got != tt.want {
			t.Errorf("SlugifyKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActiveObservations(t *testing.T) {
	now := time.Now()
	p := &Product{
		Key: "k",
		SiteURLs: map[string]string{
			"alpha": "https://alpha.test/coin",
			"bravo": "https://bravo.test/coin",
		},
		SitePrices: map[string]PriceObservation{
			"alpha": {Price: 250000, Status: StatusSuccess, Timestamp: now},
			"bravo": {Status: StatusFailed, Timestamp: now},
			// Stale observation for a removed URL stays stored but inactive.
			"gone": {Price: 240000, Status: StatusSuccess, Timestamp: now},
		},
	}

	active := p.ActiveObservations()
	if len(active) != 1 {
		t.Fatalf("active = %v, want only alpha", active)
	}
	if obs, ok := active["alpha"]; !ok || obs.Price != 250000 {
		t.Errorf("alpha = %+v", obs)
	}
}

func TestHasURLs(t *testing.T) {
	if (&Product{}).HasURLs() {
		t.Error("empty product reports URLs")
	}
	p := &Product{SiteURLs: map[string]string{"alpha": "https://alpha.test"}}
	if !p.HasURLs() {
		t.Error("product with a URL reports none")
	}
}
