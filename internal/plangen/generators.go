package plangen

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/planforge/planforge/internal/marketintel"
)

// The deterministic generators are pure functions of (businessType,
// budget, timeline). No network, no randomness that affects structure.

const (
	monthlyRevenueGrowth  = 1.3
	year2QuarterlyGrowth  = 1.25
	year3QuarterlyGrowth  = 1.15
	initialRevenueFraction = 0.10
	baseCostFraction       = 0.12
	costSlopeFraction      = 0.02
)

// GenerateRisks returns the risk register sorted ascending by priority,
// starting at 1 for the most urgent.
func GenerateRisks(businessType string, budgetUSD float64) []Risk {
	profile := marketintel.ProfileFor(businessType)

	risks := []Risk{
		{
			Category:    "Market",
			Description: "Demand for the offering is unproven with paying customers",
			Probability: LevelMedium,
			Impact:      LevelHigh,
			Mitigation:  "Run a paid pilot with 10-20 target customers before scaling spend",
			Timeline:    "Months 1-3",
		},
		{
			Category:    "Competitive",
			Description: "Incumbents respond with pricing or feature pressure",
			Probability: LevelMedium,
			Impact:      LevelMedium,
			Mitigation:  "Anchor positioning on a segment incumbents underserve",
			Timeline:    "Months 3-12",
		},
		{
			Category:    "Operational",
			Description: profile.ChurnRiskNote,
			Probability: LevelMedium,
			Impact:      LevelMedium,
			Mitigation:  "Instrument retention early and review weekly",
			Timeline:    "Ongoing",
		},
		{
			Category:    "Regulatory",
			Description: "Licensing or compliance obligations delay launch",
			Probability: LevelLow,
			Impact:      LevelMedium,
			Mitigation:  "Confirm permits and filings before committing launch dates",
			Timeline:    "Months 1-2",
		},
	}

	financialProbability := LevelMedium
	if budgetUSD < 10000 {
		financialProbability = LevelHigh
	}
	risks = append(risks, Risk{
		Category:    "Financial",
		Description: fmt.Sprintf("Runway of roughly %s may be exhausted before break-even", marketintel.FormatUSD(budgetUSD)),
		Probability: financialProbability,
		Impact:      LevelHigh,
		Mitigation:  "Hold 20% of budget in reserve; gate spend on validated milestones",
		Timeline:    "Months 1-6",
	})

	sort.SliceStable(risks, func(i, j int) bool {
		return riskScore(risks[i]) > riskScore(risks[j])
	})
	for i := range risks {
		risks[i].Priority = i + 1
	}
	return risks
}

func riskScore(r Risk) int {
	return levelWeight(r.Probability)*2 + levelWeight(r.Impact)*3
}

func levelWeight(l Level) int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	default:
		return 1
	}
}

// GenerateFinancials builds the fixed growth model: month-over-month
// revenue compounding at a constant multiplier from an initial fraction
// of budget, linearly increasing monthly costs, and year-2/3 quarterly
// figures scaled off the month-12 baseline.
func GenerateFinancials(businessType string, budgetUSD float64) FinancialSection {
	profile := marketintel.ProfileFor(businessType)
	assumptions := []string{
		fmt.Sprintf("Initial monthly revenue at %.0f%% of budget", initialRevenueFraction*100),
		fmt.Sprintf("Revenue compounds %.0f%% month-over-month in year 1", (monthlyRevenueGrowth-1)*100),
		fmt.Sprintf("Average revenue per customer of $%.0f (%s profile)", profile.RevenuePerCustomer, profile.Key),
		"Costs grow linearly with scale, not with revenue",
	}

	section := FinancialSection{Assumptions: assumptions}

	initialRevenue := budgetUSD * initialRevenueFraction
	baseCost := budgetUSD * baseCostFraction
	costSlope := budgetUSD * costSlopeFraction

	var month12Revenue, month12Costs float64
	for m := 1; m <= 12; m++ {
		revenue := round2(initialRevenue * math.Pow(monthlyRevenueGrowth, float64(m-1)))
		costs := round2(baseCost + costSlope*float64(m-1))
		customers := int(math.Ceil(revenue / profile.RevenuePerCustomer))
		section.Year1Monthly = append(section.Year1Monthly, NewProjection(
			fmt.Sprintf("Month %d", m), revenue, costs, customers, nil))
		month12Revenue, month12Costs = revenue, costs
	}

	quarterRevenue := month12Revenue * 3
	quarterCosts := month12Costs * 3
	for q := 1; q <= 4; q++ {
		quarterRevenue = round2(quarterRevenue * year2QuarterlyGrowth)
		quarterCosts = round2(quarterCosts * 1.08)
		customers := int(math.Ceil(quarterRevenue / 3 / profile.RevenuePerCustomer))
		section.Year2Quarterly = append(section.Year2Quarterly, NewProjection(
			fmt.Sprintf("Year 2 Q%d", q), quarterRevenue, quarterCosts, customers, nil))
	}
	for q := 1; q <= 4; q++ {
		quarterRevenue = round2(quarterRevenue * year3QuarterlyGrowth)
		quarterCosts = round2(quarterCosts * 1.06)
		customers := int(math.Ceil(quarterRevenue / 3 / profile.RevenuePerCustomer))
		section.Year3Quarterly = append(section.Year3Quarterly, NewProjection(
			fmt.Sprintf("Year 3 Q%d", q), quarterRevenue, quarterCosts, customers, nil))
	}
	return section
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateMarketing produces a channel mix with budget splits derived
// from the industry profile.
func GenerateMarketing(businessType string, budgetUSD float64) MarketingSection {
	profile := marketintel.ProfileFor(businessType)

	var channels []MarketingChannel
	switch profile.Key {
	case "saas", "mobile_app":
		channels = []MarketingChannel{
			{Channel: "Content and SEO", BudgetShare: "30%", ExpectedCAC: "$40-$120", FirstCampaign: "Comparison and how-to articles for the top three buyer searches"},
			{Channel: "Paid search", BudgetShare: "25%", ExpectedCAC: "$80-$250", FirstCampaign: "High-intent keyword pilot capped at $50/day"},
			{Channel: "Product-led referrals", BudgetShare: "20%", ExpectedCAC: "$10-$40", FirstCampaign: "In-product invite loop with a mutual credit"},
			{Channel: "Partnerships", BudgetShare: "25%", ExpectedCAC: "$30-$90", FirstCampaign: "Co-marketing with two complementary tools"},
		}
	case "food_beverage", "retail":
		channels = []MarketingChannel{
			{Channel: "Local social", BudgetShare: "35%", ExpectedCAC: "$3-$10", FirstCampaign: "Geo-targeted opening promotion within 5 miles"},
			{Channel: "Community events", BudgetShare: "25%", ExpectedCAC: "$5-$15", FirstCampaign: "Pop-up at the nearest weekend market"},
			{Channel: "Loyalty program", BudgetShare: "20%", ExpectedCAC: "$2-$6", FirstCampaign: "Punch-card equivalent with a free item at 10 visits"},
			{Channel: "Local press and maps", BudgetShare: "20%", ExpectedCAC: "$4-$12", FirstCampaign: "Launch listing and review push on map services"},
		}
	default:
		channels = []MarketingChannel{
			{Channel: "Content and SEO", BudgetShare: "30%", ExpectedCAC: "$30-$100", FirstCampaign: "Authority articles answering the top buyer questions"},
			{Channel: "Outbound and referrals", BudgetShare: "30%", ExpectedCAC: "$50-$150", FirstCampaign: "Warm-introduction push through existing network"},
			{Channel: "Paid social", BudgetShare: "20%", ExpectedCAC: "$40-$120", FirstCampaign: "Audience test across two creatives, $30/day cap"},
			{Channel: "Partnerships", BudgetShare: "20%", ExpectedCAC: "$25-$80", FirstCampaign: "Referral agreement with two adjacent providers"},
		}
	}

	monthly := budgetUSD * 0.15 / 6
	return MarketingSection{
		Positioning: fmt.Sprintf("Position against incumbents on the underserved segment; lead with %s economics", profile.PricingModel),
		Channels:    channels,
		BudgetNote:  fmt.Sprintf("Roughly %s/month across channels for the first six months", marketintel.FormatUSD(monthly)),
	}
}

// GenerateRoadmap produces the milestone DAG. Dependency IDs always
// reference generated milestones; ValidateRoadmap enforces that as an
// invariant rather than a convention.
func GenerateRoadmap(businessType, timeline string) []Milestone {
	weeks := timelineWeeks(timeline)
	scale := func(w int) int {
		scaled := w * weeks / 36
		if scaled < 1 {
			return 1
		}
		return scaled
	}

	return []Milestone{
		{
			ID: "m1", Title: "Validate demand", Phase: "Discovery",
			DurationWeeks: scale(4),
			Deliverables:  []string{"20 customer interviews", "Signed letters of intent or preorders"},
		},
		{
			ID: "m2", Title: "Entity and compliance setup", Phase: "Foundation",
			DurationWeeks: scale(3),
			Deliverables:  []string{"Registered entity", "Licenses and insurance in place"},
			DependsOn:     []string{"m1"},
		},
		{
			ID: "m3", Title: "Build minimum offering", Phase: "Build",
			DurationWeeks: scale(10),
			Deliverables:  []string{"Sellable v1", "Pricing page or menu finalized"},
			DependsOn:     []string{"m1"},
		},
		{
			ID: "m4", Title: "Soft launch", Phase: "Launch",
			DurationWeeks: scale(4),
			Deliverables:  []string{"First 25 paying customers", "Feedback loop running"},
			DependsOn:     []string{"m2", "m3"},
		},
		{
			ID: "m5", Title: "Scale what works", Phase: "Growth",
			DurationWeeks: scale(15),
			Deliverables:  []string{"Repeatable acquisition channel", "Break-even month in sight"},
			DependsOn:     []string{"m4"},
		},
	}
}

// ValidateRoadmap checks that every dependency references a milestone
// that exists and that no milestone depends on itself.
func ValidateRoadmap(milestones []Milestone) error {
	ids := map[string]struct{}{}
	for _, m := range milestones {
		ids[m.ID] = struct{}{}
	}
	for _, m := range milestones {
		for _, dep := range m.DependsOn {
			if dep == m.ID {
				return fmt.Errorf("milestone %s depends on itself", m.ID)
			}
			if _, ok := ids[dep]; !ok {
				return fmt.Errorf("milestone %s depends on unknown id %s", m.ID, dep)
			}
		}
	}
	return nil
}

func timelineWeeks(timeline string) int {
	t := strings.ToLower(timeline)
	switch {
	case strings.Contains(t, "3 month"), strings.Contains(t, "quarter"):
		return 12
	case strings.Contains(t, "6 month"):
		return 26
	case strings.Contains(t, "18 month"):
		return 78
	case strings.Contains(t, "2 year"), strings.Contains(t, "24 month"):
		return 104
	case strings.Contains(t, "year"), strings.Contains(t, "12 month"):
		return 52
	default:
		return 36
	}
}
