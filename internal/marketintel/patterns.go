package marketintel

import (
	"regexp"
	"strings"
)

// NamedPattern is one lexical rule for mining competitor names out of
// free-text search snippets. Group 1 must capture the candidate name.
type NamedPattern struct {
	Name string
	re   *regexp.Regexp
}

var CompetitorPatterns = []NamedPattern{
	// "Acme Technologies Inc", "Brew Labs", "Northside Coffee Co"
	{
		Name: "company_suffix",
		re:   regexp.MustCompile(`\b([A-Z][A-Za-z0-9&'\-]+(?:\s+[A-Z][A-Za-z0-9&'\-]+){0,2})[,]?\s+(?:Inc|LLC|Ltd|Corp|Co|Company|Technologies|Labs|Systems|Solutions|Group)\b`),
	},
	// "leading providers such as Acme", "leading brands like Blue Bottle".
	// Case-insensitivity covers the lead-in phrase only; the capture
	// group stays case-sensitive so it stops at the first lowercase word.
	{
		Name: "leading_phrase",
		re:   regexp.MustCompile(`(?i:leading\s+(?:\w+\s+){0,2}?(?:provider|company|platform|brand|player|chain)s?\s+(?:like|such as|including))\s+([A-Z][A-Za-z0-9&'\-]+(?:\s+[A-Z][A-Za-z0-9&'\-]+){0,2})`),
	},
	// "Acme raised $12M", "Brew Labs secured $4 million"
	{
		Name: "funding_mention",
		re:   regexp.MustCompile(`\b([A-Z][A-Za-z0-9&'\-]+(?:\s+[A-Z][A-Za-z0-9&'\-]+){0,2})\s+(?:raised|secured|closed|landed)\s+\$\d`),
	},
}

// Words that the suffix pattern keeps matching without naming a company.
var genericNameTokens = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "this": {}, "these": {}, "top": {},
	"best": {}, "new": {}, "local": {}, "global": {}, "leading": {},
	"market": {}, "industry": {}, "business": {}, "startup": {},
	"company": {}, "companies": {}, "report": {}, "research": {},
	"analysis": {}, "guide": {}, "news": {},
}

// ExtractNames runs every pattern over the text and returns candidate
// names in discovery order, filtered of generic terms and of the business
// type itself. Deduplication happens case-insensitively.
func ExtractNames(text, businessType string) []string {
	seen := map[string]struct{}{}
	btLower := strings.ToLower(strings.TrimSpace(businessType))
	var out []string
	for _, p := range CompetitorPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			name := cleanCandidate(m[1])
			if name == "" {
				continue
			}
			lower := strings.ToLower(name)
			if lower == btLower {
				continue
			}
			if _, dup := seen[lower]; dup {
				continue
			}
			seen[lower] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func cleanCandidate(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	name = strings.Trim(name, ",.;:'\"")
	if len(name) < 3 || len(name) > 60 {
		return ""
	}
	words := strings.Fields(name)
	generic := 0
	for _, w := range words {
		if _, ok := genericNameTokens[strings.ToLower(w)]; ok {
			generic++
		}
	}
	if generic == len(words) {
		return ""
	}
	// Drop a leading generic word ("The Acme Co" -> "Acme Co").
	if _, ok := genericNameTokens[strings.ToLower(words[0])]; ok && len(words) > 1 {
		name = strings.Join(words[1:], " ")
	}
	return name
}
