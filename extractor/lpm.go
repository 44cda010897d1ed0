package extractor

import (
	"regexp"

	"coinwatch/fetcher"
)

// LPM extracts from lpm.hk, a Hong Kong dealer quoting in HKD.
type LPM struct {
	policy Policy
}

// NewLPM builds the lpm.hk extractor.
func NewLPM() *LPM {
	return &LPM{
		policy: Policy{
			Currency: "HKD",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`HK\$\s*([\d,]+(?:\.\d{2})?)`),
				regexp.MustCompile(`HKD\s*([\d,]+(?:\.\d{2})?)`),
			},
			Ranges: map[Hint]RangeRule{
				HintOneOunce:     {Range: Range{Min: 15000, Max: 25000}, TieBreak: PreferFirst},
				HintHalfOunce:    {Range: Range{Min: 7500, Max: 13000}, TieBreak: PreferFirst},
				HintQuarterOunce: {Range: Range{Min: 3800, Max: 6500}, TieBreak: PreferFirst},
			},
			DefaultRange: RangeRule{Range: Range{Min: 100, Max: 1000000}, TieBreak: PreferFirst},

			Backend:          fetcher.BackendBrowser,
			Wait:             fetcher.WaitNetworkIdle,
			PreferStructured: true,
		},
	}
}

func (l *LPM) Site() string {
	return "lpm.hk"
}

func (l *LPM) Policy() Policy {
	return l.policy
}

func (l *LPM) Extract(page *fetcher.PageContent, hint Hint) *Candidate {
	candidate := policyExtract(l.policy, page, hint)
	if candidate == nil {
		return nil
	}

	candidate.ProductName = extractName(page.HTML,
		"h1", ".product-title", ".item-name", ".product-name")
	candidate.ImageURL = extractImage(page.HTML,
		".product-image img", ".main-image img", ".item-image img")
	return candidate
}
