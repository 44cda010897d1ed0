package extractor

import (
	"regexp"

	"coinwatch/fetcher"
)

// Generic is the fallback extractor for sites without a dedicated policy.
// It sniffs currency from the symbols around the match: yen markers mean
// JPY; a bare "$" is assumed to be USD. That assumption is ambiguous by
// nature (many currencies are dollar-denominated) and sites where it is
// wrong get their own extractor with a per-site resolution instead.
type Generic struct {
	jpy Policy
	usd Policy
}

// NewGeneric builds the fallback extractor.
func NewGeneric() *Generic {
	defaultRule := RangeRule{Range: Range{Min: 1000, Max: 100000000}, TieBreak: PreferFirst}
	return &Generic{
		jpy: Policy{
			Currency: "JPY",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?:¥|￥)\s*([\d,]+(?:\.\d{2})?)`),
				regexp.MustCompile(`([\d,]+)円`),
				regexp.MustCompile(`JPY\s*([\d,]+)`),
			},
			DefaultRange: defaultRule,
			Backend:      fetcher.BackendBrowser,
			Wait:         fetcher.WaitNetworkIdle,
		},
		usd: Policy{
			Currency: "USD",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`),
			},
			DefaultRange: RangeRule{Range: Range{Min: 10, Max: 1000000}, TieBreak: PreferFirst},
			Backend:      fetcher.BackendBrowser,
			Wait:         fetcher.WaitNetworkIdle,
		},
	}
}

func (g *Generic) Site() string {
	return "generic"
}

func (g *Generic) Policy() Policy {
	return g.jpy
}

func (g *Generic) Extract(page *fetcher.PageContent, hint Hint) *Candidate {
	if candidate := policyExtract(g.jpy, page, hint); candidate != nil {
		g.fillMeta(candidate, page)
		return candidate
	}
	if candidate := policyExtract(g.usd, page, hint); candidate != nil {
		g.fillMeta(candidate, page)
		return candidate
	}
	return nil
}

func (g *Generic) fillMeta(candidate *Candidate, page *fetcher.PageContent) {
	candidate.ProductName = extractName(page.HTML, "h1", ".product-name", ".product-title", "title")
	candidate.ImageURL = extractImage(page.HTML, ".product-image img", ".main-image img")
}
