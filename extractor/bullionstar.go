package extractor

import (
	"regexp"

	"coinwatch/fetcher"

	log "github.com/sirupsen/logrus"
)

// BullionStar extracts from bullionstar.com product pages. Prices render in
// the shop's display currency; the catalog URLs used here show SGD, and a
// bare dollar sign on this site means SGD, not USD.
type BullionStar struct {
	policy Policy
}

// NewBullionStar builds the bullionstar.com extractor.
func NewBullionStar() *BullionStar {
	return &BullionStar{
		policy: Policy{
			Currency: "SGD",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`SGD\s*([\d,]+\.?\d*)`),
				regexp.MustCompile(`S\$\s*([\d,]+\.?\d*)`),
				regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`),
			},
			Ranges: map[Hint]RangeRule{
				HintOneOunce:     {Range: Range{Min: 3500, Max: 6000}, TieBreak: PreferHighest},
				HintHalfOunce:    {Range: Range{Min: 2000, Max: 3500}, TieBreak: PreferFirst},
				HintQuarterOunce: {Range: Range{Min: 1000, Max: 1800}, TieBreak: PreferFirst},
			},
			DefaultRange: RangeRule{Range: Range{Min: 100, Max: 100000}, TieBreak: PreferFirst},

			Backend:          fetcher.BackendBrowser,
			Wait:             fetcher.WaitNetworkIdle,
			PreferStructured: true,
		},
	}
}

func (b *BullionStar) Site() string {
	return "bullionstar.com"
}

func (b *BullionStar) Policy() Policy {
	return b.policy
}

func (b *BullionStar) Extract(page *fetcher.PageContent, hint Hint) *Candidate {
	candidate := policyExtract(b.policy, page, hint)
	if candidate == nil {
		log.WithFields(log.Fields{"site": b.Site(), "hint": hint.String()}).Debug("No price matched")
		return nil
	}

	candidate.ProductName = extractName(page.HTML,
		"h1", ".product-name", ".product-title", ".page-title")
	candidate.ImageURL = extractImage(page.HTML,
		`img[src*="300_300"]`, ".product-image img", `img[src*="/files/"]`)
	return candidate
}

// policyExtract is the shared extraction shape: structured price when the
// policy prefers one and the page carries it, otherwise regex over rendered
// text, falling back to raw HTML when only markup is available.
func policyExtract(p Policy, page *fetcher.PageContent, hint Hint) *Candidate {
	if p.PreferStructured {
		if price, currency, ok := StructuredPrice(page.HTML); ok {
			if currency == "" {
				currency = p.Currency
			}
			return &Candidate{Price: price, Currency: currency}
		}
	}

	if page.Text != "" {
		if price, ok := p.SelectPrice(page.Text, hint); ok {
			return &Candidate{Price: price, Currency: p.Currency}
		}
	}
	if price, ok := p.SelectPrice(page.HTML, hint); ok {
		return &Candidate{Price: price, Currency: p.Currency}
	}
	return nil
}
