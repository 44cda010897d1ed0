package extractor

import "testing"

func TestStructuredPriceMeta(t *testing.T) {
	html := `<html><head>
		<meta property="product:price:amount" content="2,712.30">
		<meta property="product:price:currency" content="usd">
	</head></html>`

	price, currency, ok := StructuredPrice(html)
	if !ok {
		t.Fatal("StructuredPrice found nothing")
	}
	if price != 2712.30 {
		t.Errorf("price = %v, want 2712.30", price)
	}
	if currency != "USD" {
		t.Errorf("currency = %q, want USD", currency)
	}
}

func TestStructuredPriceJSONLD(t *testing.T) {
	tests := []struct {
		name         string
		html         string
		wantPrice    float64
		wantCurrency string
	}{
		{
			name: "offers object with string price",
			html: `<script type="application/ld+json">
				{"@type":"Product","offers":{"price":"4350.11","priceCurrency":"SGD"}}
			</script>`,
			wantPrice:    4350.11,
			wantCurrency: "SGD",
		},
		{
			name: "offers array with numeric price",
			html: `<script type="application/ld+json">
				{"@type":"Product","offers":[{"price":2745.99,"priceCurrency":"USD"}]}
			</script>`,
			wantPrice:    2745.99,
			wantCurrency: "USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, currency, ok := StructuredPrice("<html><head>" + tt.html + "</head></html>")
			if !ok {
				t.Fatal("StructuredPrice found nothing")
			}
			if price != tt.wantPrice || currency != tt.wantCurrency {
				t.Errorf("got %v %s, want %v %s", price, currency, tt.wantPrice, tt.wantCurrency)
			}
		})
	}
}

func TestStructuredPriceMetaBeatsJSONLD(t *testing.T) {
	html := `<html><head>
		<meta property="og:price:amount" content="100.00">
		<script type="application/ld+json">{"offers":{"price":"200.00"}}</script>
	</head></html>`

	price, _, ok := StructuredPrice(html)
	if !ok || price != 100 {
		t.Errorf("got %v (found=%v), want meta price 100", price, ok)
	}
}

func TestStructuredPriceAbsent(t *testing.T) {
	if _, _, ok := StructuredPrice("<html><body><p>$2,712.30</p></body></html>"); ok {
		t.Error("StructuredPrice matched free text, want no match")
	}
}
