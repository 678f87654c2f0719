package plangen

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/planforge/planforge/internal/factstore"
	"github.com/planforge/planforge/internal/marketintel"
)

func fixedValidator() *Validator {
	return &Validator{now: func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}}
}

func testAggregates() Aggregates {
	req := PlanRequest{
		Idea:     "A subscription software tool for dog groomers",
		Location: "Austin, TX",
		Budget:   "$30,000",
	}
	return Aggregates{
		Request:      req,
		BusinessType: "saas",
		Market:       marketintel.HeuristicMarketData("saas", nil),
		Competitors: []marketintel.Competitor{
			{Name: "GroomPro", Description: "Incumbent scheduling suite"},
		},
		Risks:      GenerateRisks("saas", 30000),
		Financials: GenerateFinancials("saas", 30000),
		Marketing:  GenerateMarketing("saas", 30000),
		Roadmap:    GenerateRoadmap("saas", "1 year"),
		Facts: factstore.VerifiedFacts{
			LegalRequirements: []string{"Collect and remit state sales tax on subscriptions"},
			Tools:             []string{"Stripe Billing"},
		},
	}
}

func TestFinalizeBackfillsEmptyDocument(t *testing.T) {
	agg := testAggregates()
	doc := &PlanDocument{}
	fixedValidator().Finalize(doc, agg)

	if strings.TrimSpace(doc.ExecutiveSummary) == "" {
		t.Fatal("executive summary not backfilled")
	}
	if len(doc.FinancialProjections.Year1Monthly) != 12 {
		t.Fatalf("financials not backfilled: %d months", len(doc.FinancialProjections.Year1Monthly))
	}
	if len(doc.Roadmap) != 5 {
		t.Fatalf("roadmap not backfilled: %d milestones", len(doc.Roadmap))
	}
	if len(doc.CompetitiveAnalysis.Competitors) != 1 {
		t.Fatalf("competitors not backfilled: %d", len(doc.CompetitiveAnalysis.Competitors))
	}
	if doc.LastUpdated != "2026-08-31" {
		t.Fatalf("lastUpdated = %q", doc.LastUpdated)
	}
	if len(doc.Sources) == 0 {
		t.Fatal("sources empty")
	}
	if doc.ComprehensivenessScore != 10 {
		t.Fatalf("score = %d, want 10 after full backfill", doc.ComprehensivenessScore)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	agg := testAggregates()
	doc := &PlanDocument{}
	v := fixedValidator()
	v.Finalize(doc, agg)
	first, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	v.Finalize(doc, agg)
	second, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatal("second finalize changed a complete document")
	}
}

func TestFinalizeScoreReflectsIncompleteness(t *testing.T) {
	agg := testAggregates()
	// Starve the aggregates: no competitors and no facts means the
	// competitive section cannot be rescued.
	agg.Competitors = nil
	doc := &PlanDocument{}
	fixedValidator().Finalize(doc, agg)
	if doc.ComprehensivenessScore != 9 {
		t.Fatalf("score = %d, want 9 with one unfillable section", doc.ComprehensivenessScore)
	}
}

func TestFinalizePreservesModelNarratives(t *testing.T) {
	agg := testAggregates()
	summary := strings.Repeat("The plan targets dog groomers with scheduling software. ", 4)
	doc := &PlanDocument{ExecutiveSummary: summary}
	fixedValidator().Finalize(doc, agg)
	if doc.ExecutiveSummary != summary {
		t.Fatal("complete section was overwritten")
	}
}

func TestFinalizeEnforcesProfitArithmetic(t *testing.T) {
	agg := testAggregates()
	doc := &PlanDocument{}
	doc.FinancialProjections.Year1Monthly = []FinancialProjection{
		{Period: "Month 1", Revenue: 100, Costs: 40, Profit: 9999, Customers: -3},
	}
	fixedValidator().Finalize(doc, agg)
	got := doc.FinancialProjections.Year1Monthly[0]
	if got.Profit != 60 {
		t.Fatalf("profit = %f, want 60", got.Profit)
	}
	if got.Customers != 0 {
		t.Fatalf("customers = %d, want 0", got.Customers)
	}
}

func TestFinalizeResortsRisksByPriority(t *testing.T) {
	agg := testAggregates()
	doc := &PlanDocument{
		RiskAnalysis: []Risk{
			{Category: "B", Priority: 2},
			{Category: "A", Priority: 1},
		},
	}
	fixedValidator().Finalize(doc, agg)
	if doc.RiskAnalysis[0].Category != "A" {
		t.Fatalf("risks not sorted by priority: first is %s", doc.RiskAnalysis[0].Category)
	}
}

func TestFinalizeReplacesInvalidRoadmap(t *testing.T) {
	agg := testAggregates()
	doc := &PlanDocument{
		Roadmap: []Milestone{{ID: "x", Title: "Broken", DependsOn: []string{"ghost"}}},
	}
	fixedValidator().Finalize(doc, agg)
	if len(doc.Roadmap) != 5 {
		t.Fatalf("invalid roadmap not replaced: %d milestones", len(doc.Roadmap))
	}
	if err := ValidateRoadmap(doc.Roadmap); err != nil {
		t.Fatal(err)
	}
}

func TestFinalizeCapsCompetitors(t *testing.T) {
	agg := testAggregates()
	doc := &PlanDocument{}
	for i := 0; i < 12; i++ {
		doc.CompetitiveAnalysis.Competitors = append(doc.CompetitiveAnalysis.Competitors,
			marketintel.Competitor{Name: strings.Repeat("x", i+1)})
	}
	fixedValidator().Finalize(doc, agg)
	if len(doc.CompetitiveAnalysis.Competitors) != marketintel.MaxCompetitors {
		t.Fatalf("competitors = %d, want %d", len(doc.CompetitiveAnalysis.Competitors), marketintel.MaxCompetitors)
	}
}

func TestInjectVerifiedFacts(t *testing.T) {
	doc := &PlanDocument{}
	doc.Legal.Requirements = []VerifiedItem{
		{Content: "Collect and remit state sales tax on subscriptions", Verified: false},
		{Content: "Unrelated model suggestion", Verified: false},
	}
	doc.Operations.Tools = []string{"Slack"}

	facts := factstore.VerifiedFacts{
		LegalRequirements: []string{
			"Collect and remit state sales tax on subscriptions",
			"Register a DBA if operating under a trade name",
		},
		StartupCosts: []string{"Incorporation filing fees of $300-$800"},
		Tools:        []string{"Stripe Billing"},
	}

	InjectVerifiedFacts(doc, facts)

	if !doc.Legal.Requirements[0].Verified {
		t.Fatal("matching requirement not marked verified")
	}
	if doc.Legal.Requirements[1].Verified {
		t.Fatal("unmatched model suggestion must stay unverified")
	}
	if len(doc.Legal.Requirements) != 3 {
		t.Fatalf("missing fact not appended: %d requirements", len(doc.Legal.Requirements))
	}
	if len(doc.Operations.Tools) != 2 {
		t.Fatalf("tools = %v", doc.Operations.Tools)
	}
	if len(doc.FinancialProjections.Assumptions) != 1 {
		t.Fatalf("cost assumptions = %v", doc.FinancialProjections.Assumptions)
	}

	// Re-injection must not duplicate anything.
	InjectVerifiedFacts(doc, facts)
	if len(doc.Legal.Requirements) != 3 || len(doc.Operations.Tools) != 2 {
		t.Fatal("injection is not idempotent")
	}
}
