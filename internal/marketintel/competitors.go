package marketintel

import (
	"fmt"
	"strings"

	"github.com/planforge/planforge/internal/websearch"
)

// MaxCompetitors caps the collection returned to the caller.
const MaxCompetitors = 8

type CompetitorAggregator struct{}

func NewCompetitorAggregator() *CompetitorAggregator {
	return &CompetitorAggregator{}
}

// Build merges location-sourced competitors (from a provider snapshot,
// already structured) with names mined out of search snippets. Names are
// deduplicated case-insensitively and the result is capped at
// MaxCompetitors. Every returned record is complete: attributes that
// could not be extracted are filled from the industry profile.
func (a *CompetitorAggregator) Build(businessType string, located []Competitor, searchResults []websearch.Result) []Competitor {
	profile := ProfileFor(businessType)
	out := make([]Competitor, 0, MaxCompetitors)
	seen := map[string]struct{}{}

	for _, c := range located {
		name := strings.Join(strings.Fields(c.Name), " ")
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		c.Name = name
		out = append(out, completeRecord(c, businessType, profile))
		if len(out) >= MaxCompetitors {
			return out
		}
	}

	var sb strings.Builder
	for _, r := range searchResults {
		sb.WriteString(r.Title)
		sb.WriteString(". ")
		sb.WriteString(r.Snippet)
		sb.WriteString(". ")
	}
	for _, name := range ExtractNames(sb.String(), businessType) {
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, completeRecord(Competitor{Name: name}, businessType, profile))
		if len(out) >= MaxCompetitors {
			break
		}
	}
	return out
}

// completeRecord guarantees a renderable competitor: no nil slices, no
// empty pricing, a description even when nothing was extracted.
func completeRecord(c Competitor, businessType string, profile IndustryProfile) Competitor {
	if strings.TrimSpace(c.Description) == "" {
		c.Description = fmt.Sprintf("%s operating in the %s space", c.Name, strings.TrimSpace(businessType))
	}
	if c.Pricing.Model == "" {
		c.Pricing.Model = profile.PricingModel
	}
	if c.Pricing.Range == "" {
		c.Pricing.Range = profile.PricingRange
	}
	if len(c.Strengths) == 0 {
		c.Strengths = []string{"Established market presence", "Existing customer base"}
	}
	if len(c.Weaknesses) == 0 {
		c.Weaknesses = []string{"Slower to adapt to niche demands"}
	}
	if len(c.Features) == 0 {
		c.Features = []string{"Core " + profile.Key + " offering"}
	}
	if len(c.Differentiators) == 0 {
		c.Differentiators = []string{"Brand recognition"}
	}
	return c
}
