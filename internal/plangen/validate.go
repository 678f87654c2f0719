package plangen

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/planforge/planforge/internal/marketintel"
)

// minSectionChars is the uniform under-population threshold: any section
// whose narrative is shorter than this, or whose collection is empty,
// counts as incomplete.
const minSectionChars = 50

// RequiredSections lists the ten sections every returned document must
// carry, in presentation order.
var RequiredSections = []string{
	"executiveSummary",
	"marketAnalysis",
	"competitiveAnalysis",
	"riskAnalysis",
	"financialProjections",
	"marketingStrategy",
	"operations",
	"roadmap",
	"funding",
	"legal",
}

// Validator is the sole writer allowed to finalize a PlanDocument. It
// backfills incomplete sections from already-computed aggregator data
// (never the LLM), enforces arithmetic and ordering invariants, scores
// the document, and stamps it. Running it twice over a complete document
// changes nothing.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

func (v *Validator) Finalize(doc *PlanDocument, agg Aggregates) {
	v.backfill(doc, agg)
	v.enforceInvariants(doc)

	complete := 0
	for _, name := range RequiredSections {
		if sectionComplete(doc, name) {
			complete++
		}
	}
	doc.ComprehensivenessScore = int(math.Round(10 * float64(complete) / float64(len(RequiredSections))))

	if len(doc.Sources) == 0 {
		doc.Sources = defaultSources(agg)
	}
	doc.LastUpdated = v.now().UTC().Format("2006-01-02")
}

func (v *Validator) backfill(doc *PlanDocument, agg Aggregates) {
	if shortText(doc.ExecutiveSummary) {
		doc.ExecutiveSummary = synthesizeExecutiveSummary(agg)
	}
	if shortText(doc.MarketAnalysis.Narrative) {
		doc.MarketAnalysis.Narrative = synthesizeMarketNarrative(agg)
	}
	if emptyMarketData(doc.MarketAnalysis) {
		doc.MarketAnalysis.Data = agg.Market
	}
	if len(doc.CompetitiveAnalysis.Competitors) == 0 {
		doc.CompetitiveAnalysis.Competitors = agg.Competitors
	}
	if shortText(doc.CompetitiveAnalysis.Narrative) && len(doc.CompetitiveAnalysis.Competitors) > 0 {
		doc.CompetitiveAnalysis.Narrative = synthesizeCompetitiveNarrative(doc.CompetitiveAnalysis.Competitors)
	}
	if len(doc.RiskAnalysis) == 0 {
		doc.RiskAnalysis = agg.Risks
	}
	if len(doc.FinancialProjections.Year1Monthly) == 0 {
		doc.FinancialProjections = agg.Financials
	}
	if len(doc.MarketingStrategy.Channels) == 0 {
		doc.MarketingStrategy = agg.Marketing
	}
	if shortText(doc.Operations.Summary) {
		doc.Operations.Summary = synthesizeOperationsSummary(agg)
	}
	if len(doc.Roadmap) == 0 || ValidateRoadmap(doc.Roadmap) != nil {
		doc.Roadmap = agg.Roadmap
	}
	if shortText(doc.Funding.Summary) {
		doc.Funding = synthesizeFunding(agg)
	}
	if shortText(doc.Legal.Summary) && len(doc.Legal.Requirements) == 0 {
		doc.Legal = synthesizeLegal(agg)
	}
}

// enforceInvariants holds regardless of where section content came from:
// profit is always revenue minus costs, risks are always sorted ascending
// by priority, and the competitor cap applies to model output too.
func (v *Validator) enforceInvariants(doc *PlanDocument) {
	reprofit := func(entries []FinancialProjection) {
		for i := range entries {
			entries[i].Profit = entries[i].Revenue - entries[i].Costs
			if entries[i].Customers < 0 {
				entries[i].Customers = 0
			}
		}
	}
	reprofit(doc.FinancialProjections.Year1Monthly)
	reprofit(doc.FinancialProjections.Year2Quarterly)
	reprofit(doc.FinancialProjections.Year3Quarterly)

	sort.SliceStable(doc.RiskAnalysis, func(i, j int) bool {
		return doc.RiskAnalysis[i].Priority < doc.RiskAnalysis[j].Priority
	})

	if len(doc.CompetitiveAnalysis.Competitors) > marketintel.MaxCompetitors {
		doc.CompetitiveAnalysis.Competitors = doc.CompetitiveAnalysis.Competitors[:marketintel.MaxCompetitors]
	}
}

func sectionComplete(doc *PlanDocument, name string) bool {
	switch name {
	case "executiveSummary":
		return !shortText(doc.ExecutiveSummary)
	case "marketAnalysis":
		return !shortText(doc.MarketAnalysis.Narrative) && !emptyMarketData(doc.MarketAnalysis)
	case "competitiveAnalysis":
		return len(doc.CompetitiveAnalysis.Competitors) > 0
	case "riskAnalysis":
		return len(doc.RiskAnalysis) > 0
	case "financialProjections":
		return len(doc.FinancialProjections.Year1Monthly) > 0
	case "marketingStrategy":
		return len(doc.MarketingStrategy.Channels) > 0
	case "operations":
		return !shortText(doc.Operations.Summary)
	case "roadmap":
		return len(doc.Roadmap) > 0
	case "funding":
		return !shortText(doc.Funding.Summary)
	case "legal":
		return !shortText(doc.Legal.Summary) || len(doc.Legal.Requirements) > 0
	default:
		return false
	}
}

func shortText(s string) bool {
	return len(strings.TrimSpace(s)) < minSectionChars
}

func emptyMarketData(s MarketAnalysisSection) bool {
	return s.Data.Size.TAM == "" && s.Data.Size.SAM == "" && len(s.Data.Sources) == 0
}

func defaultSources(agg Aggregates) []string {
	sources := append([]string{}, agg.Market.Sources...)
	if len(agg.SearchDigest) > 0 {
		sources = append(sources, "web search results")
	}
	if !agg.Facts.Empty() {
		sources = append(sources, "verified facts database")
	}
	if len(sources) == 0 {
		sources = []string{"industry profile estimate"}
	}
	return sources
}

func synthesizeExecutiveSummary(agg Aggregates) string {
	return fmt.Sprintf(
		"%s addresses a %s total market growing at %.1f%% annually, with %s demand. "+
			"With a starting budget of %s, the plan targets a soft launch within the first roadmap phases, "+
			"reaching %d competitors' territory through differentiated positioning. "+
			"Financial projections show month-12 revenue of %s with a path to profitability driven by %s economics.",
		strings.TrimSpace(agg.Request.Idea),
		agg.Market.Size.TAM,
		agg.Market.Size.CAGR,
		strings.ToLower(string(agg.Market.Trends.Demand)),
		marketintel.FormatUSD(ParseBudgetUSD(agg.Request.Budget)),
		len(agg.Competitors),
		month12Revenue(agg.Financials),
		agg.BusinessType,
	)
}

func synthesizeMarketNarrative(agg Aggregates) string {
	m := agg.Market
	return fmt.Sprintf(
		"The total addressable market is estimated at %s, with a serviceable segment of %s and an obtainable share of %s. "+
			"The market is growing at %.1f%% CAGR and demand is currently %s. Key drivers include %s. Primary threats: %s.",
		m.Size.TAM, m.Size.SAM, m.Size.SOM, m.Size.CAGR,
		strings.ToLower(string(m.Trends.Demand)),
		strings.Join(m.Trends.KeyDrivers, ", "),
		strings.Join(m.Trends.Threats, ", "),
	)
}

func synthesizeCompetitiveNarrative(competitors []marketintel.Competitor) string {
	names := make([]string, 0, len(competitors))
	for _, c := range competitors {
		names = append(names, c.Name)
	}
	return fmt.Sprintf(
		"The competitive field includes %s. Most compete on established brand presence; "+
			"the opportunity lies in the segments their standard offerings underserve.",
		strings.Join(names, ", "),
	)
}

func synthesizeOperationsSummary(agg Aggregates) string {
	return fmt.Sprintf(
		"Operations center on a lean founding team running the %s model: start owner-operated, "+
			"document the core delivery process during the first roadmap phase, and hire against validated demand only. "+
			"Weekly review of unit economics keeps cost growth linear while revenue compounds.",
		agg.BusinessType,
	)
}

func synthesizeFunding(agg Aggregates) FundingSection {
	budget := agg.Request.Budget
	if strings.TrimSpace(budget) == "" {
		budget = "the stated budget"
	}
	return FundingSection{
		Summary: fmt.Sprintf(
			"Initial funding of %s covers setup, a minimum sellable offering, and six months of marketing. "+
				"A reserve of roughly 20%% is held against the highest-priority risks before any scale-up spend.",
			budget,
		),
		AmountAsk:  budget,
		UseOfFunds: []string{"Product or build-out", "Six months of marketing", "Licenses and insurance", "Operating reserve"},
	}
}

func synthesizeLegal(agg Aggregates) LegalSection {
	section := LegalSection{
		Summary: "Form a limited liability entity before taking payments, confirm local licensing, and put customer " +
			"terms in place at launch. Requirements below marked verified come from our structured database.",
		Structure: "LLC (single-member to start)",
	}
	for _, req := range agg.Facts.LegalRequirements {
		section.Requirements = append(section.Requirements, VerifiedItem{Content: req, Verified: true})
	}
	if len(section.Requirements) == 0 {
		section.Requirements = []VerifiedItem{
			{Content: "Confirm local business licensing requirements", Verified: false},
		}
	}
	return section
}

func month12Revenue(f FinancialSection) string {
	if len(f.Year1Monthly) < 12 {
		return "an unprojected amount"
	}
	return fmt.Sprintf("$%.0f", f.Year1Monthly[11].Revenue)
}
