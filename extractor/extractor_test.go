package extractor

import (
	"testing"
	"time"

	"coinwatch/fetcher"
)

func TestRegistryForURL(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.bullionstar.com/buy/product/gold-maple-1oz", "bullionstar.com"},
		{"https://www.apmex.com/product/12345/coin", "apmex.com"},
		{"https://www.lpm.hk/en/products/gold", "lpm.hk"},
		{"https://ybx.jp/?pid=183175961", "ybx.jp"},
		{"https://shop.example.org/coin", "generic"},
		{"not a url", "generic"},
	}
	for _, tt := range tests {
		if got := r.ForURL(tt.url).Site(); got != tt.want {
			t.Errorf("ForURL(%q).Site() = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestBullionStarExtract(t *testing.T) {
	e := NewBullionStar()

	page := &fetcher.PageContent{
		URL:  "https://www.bullionstar.com/buy/product/gold-maple-1oz",
		Text: "Canadian Gold Maple 1 oz\nSell to us: SGD 4,120.00\nPrice: SGD 4,350.11\nShipping SGD 25.00",
		HTML: "<html><body><h1>Canadian Gold Maple 1 oz</h1></body></html>",
	}

	got := e.Extract(page, HintOneOunce)
	if got == nil {
		t.Fatal("Extract returned nil")
	}
	// 1oz prefers the highest in-range figure; shipping is out of range.
	if got.Price != 4350.11 {
		t.Errorf("Price = %v, want 4350.11", got.Price)
	}
	if got.Currency != "SGD" {
		t.Errorf("Currency = %q, want SGD", got.Currency)
	}
	if got.ProductName != "Canadian Gold Maple 1 oz" {
		t.Errorf("ProductName = %q", got.ProductName)
	}
}

func TestBullionStarBareDollarIsSGD(t *testing.T) {
	e := NewBullionStar()

	page := &fetcher.PageContent{
		Text: "1/2 oz Gold Coin $ 2,210.45",
		HTML: "<html></html>",
	}
	got := e.Extract(page, HintHalfOunce)
	if got == nil {
		t.Fatal("Extract returned nil")
	}
	if got.Price != 2210.45 || got.Currency != "SGD" {
		t.Errorf("got %v %s, want 2210.45 SGD", got.Price, got.Currency)
	}
}

func TestAPMEXExtract(t *testing.T) {
	e := NewAPMEX()

	if e.Policy().Settle < 8*time.Second {
		t.Errorf("Settle = %v, want at least 8s", e.Policy().Settle)
	}

	page := &fetcher.PageContent{
		Text: "2025 1 oz Gold Maple\nAs low as $2,712.30\nCheck/Wire $2,745.99\nShipping $12.95",
		HTML: "<html></html>",
	}
	got := e.Extract(page, HintOneOunce)
	if got == nil {
		t.Fatal("Extract returned nil")
	}
	if got.Price != 2745.99 {
		t.Errorf("Price = %v, want 2745.99 (highest in range)", got.Price)
	}
	if got.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", got.Currency)
	}
}

func TestYBXExtract(t *testing.T) {
	e := NewYBX()

	page := &fetcher.PageContent{
		Text: "メイプルリーフ金貨 1オンス 販売価格：248,000円(税込)",
		HTML: `<html><head><title>メイプルリーフ金貨 1オンス | YBX</title></head>` +
			`<body><h1 class="product_detail_title">MENU</h1></body></html>`,
	}
	got := e.Extract(page, HintOneOunce)
	if got == nil {
		t.Fatal("Extract returned nil")
	}
	if got.Price != 248000 {
		t.Errorf("Price = %v, want 248000", got.Price)
	}
	if got.Currency != "JPY" {
		t.Errorf("Currency = %q, want JPY", got.Currency)
	}
	// "MENU" heading must be rejected in favor of the cleaned page title.
	if got.ProductName != "メイプルリーフ金貨 1オンス" {
		t.Errorf("ProductName = %q", got.ProductName)
	}
}

func TestYBXNameFromTable(t *testing.T) {
	e := NewYBX()

	html := `<html><body>
		<h2>MENU</h2>
		<table><tr><td>ウィーン金貨ハーモニー 1/2オンス 2024年銘</td><td>248,000円</td></tr></table>
	</body></html>`
	name := e.extractJapaneseName(html)
	if name != "ウィーン金貨ハーモニー 1/2オンス 2024年銘" {
		t.Errorf("extractJapaneseName = %q", name)
	}
}

func TestGenericExtract(t *testing.T) {
	e := NewGeneric()

	jpyPage := &fetcher.PageContent{
		Text: "本日の価格 ￥ 258,000",
		HTML: "<html></html>",
	}
	got := e.Extract(jpyPage, HintUnknown)
	if got == nil || got.Price != 258000 || got.Currency != "JPY" {
		t.Fatalf("jpy page: got %+v, want 258000 JPY", got)
	}

	usdPage := &fetcher.PageContent{
		Text: "Gold coin price: $2,712.30",
		HTML: "<html></html>",
	}
	got = e.Extract(usdPage, HintUnknown)
	if got == nil || got.Price != 2712.30 || got.Currency != "USD" {
		t.Fatalf("usd page: got %+v, want 2712.30 USD", got)
	}

	if got := e.Extract(&fetcher.PageContent{Text: "sold out", HTML: "<html></html>"}, HintUnknown); got != nil {
		t.Errorf("empty page: got %+v, want nil", got)
	}
}
