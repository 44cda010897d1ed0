package extractor

import "strings"

// Hint classifies a product by weight class, inferred from its URL. It
// selects the plausible price window used to reject spurious matches.
type Hint int

const (
	HintUnknown Hint = iota
	HintOneOunce
	HintHalfOunce
	HintQuarterOunce
)

// String returns the hint's name for attempt logs.
func (h Hint) String() string {
	switch h {
	case HintOneOunce:
		return "1oz"
	case HintHalfOunce:
		return "1/2oz"
	case HintQuarterOunce:
		return "1/4oz"
	default:
		return "unknown"
	}
}

// HintFromURL derives the product-type hint from URL substrings. The checks
// are ordered fractional-first because "1-2-oz" also contains "oz".
func HintFromURL(url string) Hint {
	u := strings.ToLower(url)

	switch {
	case strings.Contains(u, "/1-2-oz-"),
		strings.Contains(u, "-1-2-oz-"),
		strings.Contains(u, "1-2-oz"),
		strings.Contains(u, "half-ounce"):
		return HintHalfOunce
	case strings.Contains(u, "/1-4-oz-"),
		strings.Contains(u, "-1-4-oz-"),
		strings.Contains(u, "1-4-oz"),
		strings.Contains(u, "quarter-ounce"):
		return HintQuarterOunce
	case strings.Contains(u, "/1-oz-"),
		strings.Contains(u, "-1-oz-"),
		strings.Contains(u, "-1oz"),
		strings.Contains(u, "1oz-"),
		strings.Contains(u, "one-ounce"):
		return HintOneOunce
	default:
		return HintUnknown
	}
}
