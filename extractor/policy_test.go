package extractor

import (
	"regexp"
	"testing"

	"coinwatch/fetcher"
)

func testPolicy(tie TieBreak) Policy {
	return Policy{
		Currency: "USD",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`),
		},
		Ranges: map[Hint]RangeRule{
			HintOneOunce: {Range: Range{Min: 2600, Max: 2900}, TieBreak: tie},
		},
		DefaultRange: RangeRule{Range: Range{Min: 500, Max: 3000}, TieBreak: tie},
		Backend:      fetcher.BackendStatic,
	}
}

func TestSelectPriceFiltersRange(t *testing.T) {
	p := testPolicy(PreferFirst)

	tests := []struct {
		name  string
		text  string
		hint  Hint
		want  float64
		found bool
	}{
		{
			name:  "shipping noise below range discarded",
			text:  "Shipping $9.99 Price $2,750.00 Insurance $45.00",
			hint:  HintOneOunce,
			want:  2750,
			found: true,
		},
		{
			name:  "only out-of-range matches yields nothing",
			text:  "Was $5,000.00 now just $120.00",
			hint:  HintOneOunce,
			found: false,
		},
		{
			name:  "unknown hint uses default range",
			text:  "Price $720.50",
			hint:  HintUnknown,
			want:  720.5,
			found: true,
		},
		{
			name:  "no matches at all",
			text:  "Out of stock",
			hint:  HintOneOunce,
			found: false,
		},
		{
			name:  "boundary values are excluded",
			text:  "$2600.00 and $2900.00",
			hint:  HintOneOunce,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.SelectPrice(tt.text, tt.hint)
			if ok != tt.found {
				t.Fatalf("SelectPrice found = %v, want %v", ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("SelectPrice = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectPriceTieBreak(t *testing.T) {
	text := "Member price $2,650.00 List price $2,850.00 Promo $2,700.00"

	first := testPolicy(PreferFirst)
	if got, ok := first.SelectPrice(text, HintOneOunce); !ok || got != 2650 {
		t.Errorf("PreferFirst = %v (found=%v), want 2650", got, ok)
	}

	highest := testPolicy(PreferHighest)
	if got, ok := highest.SelectPrice(text, HintOneOunce); !ok || got != 2850 {
		t.Errorf("PreferHighest = %v (found=%v), want 2850", got, ok)
	}
}

func TestSelectPricePatternPriority(t *testing.T) {
	p := Policy{
		Currency: "JPY",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`販売価格[:：]\s*([\d,]+)円`),
			regexp.MustCompile(`([\d,]+)円`),
		},
		DefaultRange: RangeRule{Range: Range{Min: 1000, Max: 100000000}, TieBreak: PreferFirst},
	}

	// The labeled price wins even though a bare 円 amount appears first.
	text := "会員価格 199,000円 販売価格：248,000円(税込)"
	got, ok := p.SelectPrice(text, HintUnknown)
	if !ok || got != 248000 {
		t.Errorf("SelectPrice = %v (found=%v), want 248000", got, ok)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		found bool
	}{
		{"2,750.00", 2750, true},
		{"248,000", 248000, true},
		{" 19.5 ", 19.5, true},
		{"", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseAmount(tt.in)
		if ok != tt.found || got != tt.want {
			t.Errorf("parseAmount(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.found)
		}
	}
}

func TestHintFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want Hint
	}{
		{"https://www.apmex.com/product/12345/2025-1-oz-gold-maple-leaf", HintOneOunce},
		{"https://www.apmex.com/product/9876/2025-1-2-oz-gold-maple-leaf", HintHalfOunce},
		{"https://www.apmex.com/product/5432/2025-1-4-oz-gold-maple-leaf", HintQuarterOunce},
		{"https://example.com/half-ounce-gold-coin", HintHalfOunce},
		{"https://example.com/quarter-ounce-gold-coin", HintQuarterOunce},
		{"https://www.bullionstar.com/buy/product/gold-maple-1oz-2025", HintOneOunce},
		{"https://ybx.jp/?pid=123456", HintUnknown},
	}
	for _, tt := range tests {
		if got := HintFromURL(tt.url); got != tt.want {
			t.Errorf("HintFromURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
