package plangen

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultBudgetUSD is assumed when the request carries no parseable
// budget. Generators must stay deterministic, so the default is fixed.
const DefaultBudgetUSD = 25000

var budgetTokenRe = regexp.MustCompile(`(?i)\$?\s*(\d+(?:[.,]\d+)?)\s*(k|m)?`)

// ParseBudgetUSD extracts a midpoint dollar figure from free-text budget
// strings: "$10,000", "10k", "10k-25k", "under 50k". Unparseable input
// yields the default.
func ParseBudgetUSD(budget string) float64 {
	matches := budgetTokenRe.FindAllStringSubmatch(budget, -1)
	var values []float64
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			v *= 1_000
		case "m":
			v *= 1_000_000
		}
		// Bare small numbers like "10-25" are shorthand for thousands.
		if v < 1000 {
			v *= 1000
		}
		values = append(values, v)
	}
	switch len(values) {
	case 0:
		return DefaultBudgetUSD
	case 1:
		return values[0]
	default:
		return (values[0] + values[1]) / 2
	}
}
