package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"coinwatch/fetcher"
)

// TieBreak picks among multiple in-range price candidates. Both policies are
// deliberate per-site heuristics: some pages list the primary price first,
// others quote it higher than incidental mentions.
type TieBreak int

const (
	// PreferFirst takes the first in-range candidate in document order.
	PreferFirst TieBreak = iota
	// PreferHighest takes the maximum in-range candidate.
	PreferHighest
)

// Range is a plausible price window in the site's native currency.
// Candidates outside it are discarded even if they are the only ones found.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether price falls strictly inside the window.
func (r Range) Contains(price float64) bool {
	return price > r.Min && price < r.Max
}

// RangeRule bundles a plausible range with its tie-break policy.
type RangeRule struct {
	Range    Range
	TieBreak TieBreak
}

// Policy is the declarative per-site extraction table: which currency
// patterns to scan for, which plausible range applies per product-type hint,
// and how the page must be fetched.
type Policy struct {
	Currency string
	// Patterns are tried in priority order; each must capture the numeric
	// amount in group 1.
	Patterns     []*regexp.Regexp
	Ranges       map[Hint]RangeRule
	DefaultRange RangeRule

	Backend          string
	Wait             fetcher.WaitStrategy
	Settle           time.Duration
	PreferStructured bool
}

// Rule resolves the range rule for a hint, defaulting to the wide fallback
// when the hint is indeterminate or unmapped.
func (p Policy) Rule(hint Hint) RangeRule {
	if rule, ok := p.Ranges[hint]; ok {
		return rule
	}
	return p.DefaultRange
}

// SelectPrice collects every numeric match of the policy's patterns in text,
// filters them to the hint's plausible range and applies the tie-break.
// Pages frequently contain unrelated numbers (shipping, SKUs, promos), so
// all matches are gathered, never just the first.
func (p Policy) SelectPrice(text string, hint Hint) (float64, bool) {
	rule := p.Rule(hint)

	var candidates []float64
	for _, pattern := range p.Patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			price, ok := parseAmount(match[1])
			if !ok {
				continue
			}
			if rule.Range.Contains(price) {
				candidates = append(candidates, price)
			}
		}
		if len(candidates) > 0 && rule.TieBreak == PreferFirst {
			// Higher-priority patterns win outright for first-match sites.
			break
		}
	}

	if len(candidates) == 0 {
		return 0, false
	}

	switch rule.TieBreak {
	case PreferHighest:
		highest := candidates[0]
		for _, c := range candidates[1:] {
			if c > highest {
				highest = c
			}
		}
		return highest, true
	default:
		return candidates[0], true
	}
}

// parseAmount converts a matched "1,234.56" style group into a float.
func parseAmount(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
