package extractor

import (
	"regexp"
	"strings"

	"coinwatch/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// YBX extracts from ybx.jp, a Japanese coin shop quoting in JPY. Its pages
// are served in EUC-JP; the static fetcher decodes them before this
// extractor sees any text. Price labels look like "販売価格：248,000円(税込)".
type YBX struct {
	policy Policy
}

// NewYBX builds the ybx.jp extractor.
func NewYBX() *YBX {
	return &YBX{
		policy: Policy{
			Currency: "JPY",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`販売価格[:：]\s*([\d,]+)円`),
				regexp.MustCompile(`価格[:：]\s*([\d,]+)円`),
				regexp.MustCompile(`([\d,]+)円`),
			},
			DefaultRange: RangeRule{Range: Range{Min: 1000, Max: 100000000}, TieBreak: PreferFirst},

			Backend: fetcher.BackendStatic,
			Wait:    fetcher.WaitDOMReady,
		},
	}
}

func (y *YBX) Site() string {
	return "ybx.jp"
}

func (y *YBX) Policy() Policy {
	return y.policy
}

func (y *YBX) Extract(page *fetcher.PageContent, hint Hint) *Candidate {
	candidate := policyExtract(y.policy, page, hint)
	if candidate == nil {
		return nil
	}

	candidate.ProductName = y.extractJapaneseName(page.HTML)
	candidate.ImageURL = extractImage(page.HTML,
		"#main-product-image img", `img[src*="_o1.png"]`, `img[src*="_th.png"]`)
	return candidate
}

// extractJapaneseName walks the name sources in reliability order. The shop
// template puts "MENU" in most heading slots, so that value is rejected.
func (y *YBX) extractJapaneseName(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if name := strings.TrimSpace(doc.Find(".product_detail_title, .item-title, .product-title").First().Text()); usableName(name) {
		return name
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if name := strings.TrimSpace(content); usableName(name) {
			return name
		}
	}

	// Product tables carry the full coin description in one cell.
	name := ""
	doc.Find("table td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if !containsCoinTerm(text) {
			return true
		}
		if len(text) > 10 && len(text) < 200 && !strings.Contains(text, "円") {
			name = text
			return false
		}
		return true
	})
	if usableName(name) {
		return name
	}

	title := strings.TrimSpace(doc.Find("title").Text())
	title = regexp.MustCompile(`\s*[\|｜\-－].*$`).ReplaceAllString(title, "")
	title = regexp.MustCompile(`YBX.*$`).ReplaceAllString(title, "")
	if name := strings.TrimSpace(title); usableName(name) {
		return name
	}

	return ""
}

func usableName(name string) bool {
	return name != "" && name != "MENU"
}

func containsCoinTerm(text string) bool {
	for _, term := range []string{"金貨", "銀貨", "プラチナ", "メイプル", "ウィーン", "ブリタニア"} {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
