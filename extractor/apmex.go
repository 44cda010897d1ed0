package extractor

import (
	"regexp"
	"time"

	"coinwatch/fetcher"
)

// APMEX extracts from apmex.com product pages, quoted in USD. The price
// populates several seconds after navigation, so the policy carries a
// mandatory settle delay; shortening it causes systematic extraction
// failure, not just slower pages.
type APMEX struct {
	policy Policy
}

// NewAPMEX builds the apmex.com extractor.
func NewAPMEX() *APMEX {
	return &APMEX{
		policy: Policy{
			Currency: "USD",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`\$([\d,]+\.\d{2})`),
			},
			Ranges: map[Hint]RangeRule{
				// Single-ounce listings quote the primary price higher
				// than incidental mentions, hence the max tie-break.
				HintOneOunce:     {Range: Range{Min: 2600, Max: 2900}, TieBreak: PreferHighest},
				HintHalfOunce:    {Range: Range{Min: 1300, Max: 1450}, TieBreak: PreferFirst},
				HintQuarterOunce: {Range: Range{Min: 650, Max: 750}, TieBreak: PreferFirst},
			},
			DefaultRange: RangeRule{Range: Range{Min: 500, Max: 3000}, TieBreak: PreferFirst},

			Backend:          fetcher.BackendBrowser,
			Wait:             fetcher.WaitDOMReady,
			Settle:           8 * time.Second,
			PreferStructured: true,
		},
	}
}

func (a *APMEX) Site() string {
	return "apmex.com"
}

func (a *APMEX) Policy() Policy {
	return a.policy
}

func (a *APMEX) Extract(page *fetcher.PageContent, hint Hint) *Candidate {
	candidate := policyExtract(a.policy, page, hint)
	if candidate == nil {
		return nil
	}

	candidate.ProductName = extractName(page.HTML,
		"h1", ".product-title", ".product-name")
	candidate.ImageURL = extractImage(page.HTML,
		".product-image img", ".main-image img")
	return candidate
}
