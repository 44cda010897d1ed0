package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructuredPrice looks for a machine-readable price on the page: price meta
// tags first, then JSON-LD product data. When present these are strictly
// more reliable than free-text regex extraction, so extractors prefer them.
// The returned currency may be empty when the page doesn't declare one.
func StructuredPrice(html string) (float64, string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, "", false
	}

	metaSelectors := []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
		`meta[itemprop="price"]`,
	}
	for _, selector := range metaSelectors {
		content, ok := doc.Find(selector).First().Attr("content")
		if !ok {
			continue
		}
		price, ok := parseAmount(content)
		if !ok {
			continue
		}
		currency := metaCurrency(doc)
		return price, currency, true
	}

	var found float64
	var foundCurrency string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		price, currency, ok := ldJSONPrice(s.Text())
		if ok {
			found, foundCurrency = price, currency
			return false
		}
		return true
	})
	if found > 0 {
		return found, foundCurrency, true
	}

	return 0, "", false
}

func metaCurrency(doc *goquery.Document) string {
	selectors := []string{
		`meta[property="product:price:currency"]`,
		`meta[property="og:price:currency"]`,
		`meta[itemprop="priceCurrency"]`,
	}
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			return strings.ToUpper(strings.TrimSpace(content))
		}
	}
	return ""
}

// ldJSONPrice digs offers.price out of a JSON-LD blob. Offers appear both as
// a single object and as an array; both shapes occur in the wild.
func ldJSONPrice(raw string) (float64, string, bool) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return 0, "", false
	}

	offers, ok := data["offers"]
	if !ok {
		return 0, "", false
	}

	switch v := offers.(type) {
	case map[string]interface{}:
		return offerPrice(v)
	case []interface{}:
		for _, item := range v {
			if offer, ok := item.(map[string]interface{}); ok {
				if price, currency, ok := offerPrice(offer); ok {
					return price, currency, true
				}
			}
		}
	}
	return 0, "", false
}

func offerPrice(offer map[string]interface{}) (float64, string, bool) {
	currency := ""
	if c, ok := offer["priceCurrency"].(string); ok {
		currency = strings.ToUpper(c)
	}

	switch p := offer["price"].(type) {
	case float64:
		if p > 0 {
			return p, currency, true
		}
	case string:
		if price, ok := parseAmount(p); ok {
			return price, currency, true
		}
	}
	return 0, "", false
}
