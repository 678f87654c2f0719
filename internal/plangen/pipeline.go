package plangen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/planforge/planforge/internal/factstore"
	"github.com/planforge/planforge/internal/llm"
	"github.com/planforge/planforge/internal/marketintel"
	"github.com/planforge/planforge/internal/websearch"
)

const (
	completionMaxTokens  = 8000
	completionTemp       = 0.7
	simplifiedMaxTokens  = 2000
	maxSearchDigestLines = 18
)

var (
	plansGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planforge_plans_generated_total",
		Help: "Plan documents successfully produced.",
	})
	simplifiedRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planforge_simplified_retries_total",
		Help: "Generations that fell back to the simplified schema after unparseable output.",
	})
)

var tracer = otel.Tracer("planforge/plangen")

// Completer is the slice of the LLM gateway the pipeline needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// FactSource looks up verified industry facts; lookups never fail, they
// degrade to an empty result.
type FactSource interface {
	Lookup(ctx context.Context, businessType string) factstore.VerifiedFacts
}

// Searcher is the slice of the web search client the pipeline needs.
type Searcher interface {
	SearchAll(ctx context.Context, queries []string) map[string][]websearch.Result
}

// Orchestrator runs the full generation pipeline: research fan-out,
// deterministic modeling, one LLM call (with a simplified retry),
// completeness validation, and verified-fact injection.
type Orchestrator struct {
	completer   Completer
	searcher    Searcher
	facts       FactSource
	markets     *marketintel.MarketAggregator
	competitors *marketintel.CompetitorAggregator
	validator   *Validator
}

func NewOrchestrator(completer Completer, searcher Searcher, facts FactSource, marketProvider marketintel.Provider) *Orchestrator {
	return &Orchestrator{
		completer:   completer,
		searcher:    searcher,
		facts:       facts,
		markets:     marketintel.NewMarketAggregator(marketProvider),
		competitors: marketintel.NewCompetitorAggregator(),
		validator:   NewValidator(),
	}
}

// GeneratePlan produces a complete, validated plan document. Errors are
// always *PipelineError so the transport layer can map them to statuses.
func (o *Orchestrator) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanDocument, error) {
	if strings.TrimSpace(req.Idea) == "" {
		return nil, errValidation("idea is required")
	}

	ctx, span := tracer.Start(ctx, "plangen.GeneratePlan")
	defer span.End()

	businessType := strings.TrimSpace(req.BusinessType)
	if businessType == "" {
		businessType = InferBusinessType(req.Idea)
	}
	span.SetAttributes(attribute.String("plan.business_type", businessType))

	agg := o.aggregate(ctx, req, businessType)

	doc, err := o.generateDocument(ctx, agg)
	if err != nil {
		return nil, err
	}

	_, vspan := tracer.Start(ctx, "plangen.validate")
	o.validator.Finalize(doc, agg)
	InjectVerifiedFacts(doc, agg.Facts)
	vspan.End()

	plansGenerated.Inc()
	return doc, nil
}

// aggregate runs the research fan-out and the deterministic generators.
// Every branch is failure-tolerant: a dead search API or an empty facts
// table narrows the data, it never aborts the plan.
func (o *Orchestrator) aggregate(ctx context.Context, req PlanRequest, businessType string) Aggregates {
	ctx, span := tracer.Start(ctx, "plangen.aggregate")
	defer span.End()

	queries := researchQueries(req, businessType)

	var (
		wg      sync.WaitGroup
		results map[string][]websearch.Result
		facts   factstore.VerifiedFacts
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results = o.searcher.SearchAll(ctx, queries)
	}()
	go func() {
		defer wg.Done()
		facts = o.facts.Lookup(ctx, businessType)
	}()
	wg.Wait()

	// The market build can surface location-sourced competitors from the
	// live provider, so it runs before the competitor merge.
	market, located := o.markets.Build(ctx, businessType, req.Location, results[queries[0]])
	rivals := o.competitors.Build(businessType, located, results[queries[1]])

	budgetUSD := ParseBudgetUSD(req.Budget)

	return Aggregates{
		Request:      req,
		BusinessType: businessType,
		Market:       market,
		Competitors:  rivals,
		Risks:        GenerateRisks(businessType, budgetUSD),
		Financials:   GenerateFinancials(businessType, budgetUSD),
		Marketing:    GenerateMarketing(businessType, budgetUSD),
		Roadmap:      GenerateRoadmap(businessType, req.Timeline),
		Facts:        facts,
		SearchDigest: digestResults(results, queries),
	}
}

// generateDocument performs the LLM round-trip: full prompt first, then
// one simplified retry when the output cannot be turned into JSON.
func (o *Orchestrator) generateDocument(ctx context.Context, agg Aggregates) (*PlanDocument, error) {
	ctx, span := tracer.Start(ctx, "plangen.complete")
	defer span.End()

	raw, err := o.completer.Complete(ctx, SystemPrompt, ComposePrompt(agg), completionMaxTokens, completionTemp)
	if err != nil {
		return nil, mapGatewayError(err)
	}

	doc, parseErr := parsePlanDocument(raw)
	if parseErr == nil {
		return doc, nil
	}
	log.Printf("plangen: full-schema output unparseable, retrying simplified: %v", parseErr)
	simplifiedRetries.Inc()

	raw, err = o.completer.Complete(ctx, SystemPrompt, ComposeSimplifiedPrompt(agg), simplifiedMaxTokens, completionTemp)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	doc, parseErr = parseSimplifiedDocument(raw)
	if parseErr != nil {
		return nil, errBadModelOutput(parseErr)
	}
	return doc, nil
}

func mapGatewayError(err error) *PipelineError {
	if errors.Is(err, llm.ErrAllRateLimited) {
		return errRateLimited(err)
	}
	return errUnavailable(err)
}

func parsePlanDocument(raw string) (*PlanDocument, error) {
	obj, err := llm.ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	var doc PlanDocument
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return nil, fmt.Errorf("decode plan document: %w", err)
	}
	return &doc, nil
}

// simplifiedDocument mirrors the reduced schema offered on retry. Missing
// sections are deliberate: the validator backfills them from aggregates.
type simplifiedDocument struct {
	ExecutiveSummary string `json:"executiveSummary"`
	MarketAnalysis   struct {
		Narrative string `json:"narrative"`
	} `json:"marketAnalysis"`
	CompetitiveAnalysis struct {
		Narrative string `json:"narrative"`
	} `json:"competitiveAnalysis"`
	Operations OperationsSection `json:"operations"`
	Funding    FundingSection    `json:"funding"`
	Legal      struct {
		Summary   string `json:"summary"`
		Structure string `json:"structure"`
	} `json:"legal"`
}

func parseSimplifiedDocument(raw string) (*PlanDocument, error) {
	obj, err := llm.ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	var simple simplifiedDocument
	if err := json.Unmarshal([]byte(obj), &simple); err != nil {
		return nil, fmt.Errorf("decode simplified document: %w", err)
	}
	doc := &PlanDocument{
		ExecutiveSummary: simple.ExecutiveSummary,
		Operations:       simple.Operations,
		Funding:          simple.Funding,
	}
	doc.MarketAnalysis.Narrative = simple.MarketAnalysis.Narrative
	doc.CompetitiveAnalysis.Narrative = simple.CompetitiveAnalysis.Narrative
	doc.Legal.Summary = simple.Legal.Summary
	doc.Legal.Structure = simple.Legal.Structure
	return doc, nil
}

// researchQueries returns the fan-out query set. Index 0 feeds the market
// aggregator and index 1 the competitor aggregator; the rest only enrich
// the prompt digest.
func researchQueries(req PlanRequest, businessType string) []string {
	loc := strings.TrimSpace(req.Location)
	if loc == "" {
		loc = "United States"
	}
	return []string{
		fmt.Sprintf("%s market size growth rate 2025", businessType),
		fmt.Sprintf("top %s companies competitors %s", businessType, loc),
		fmt.Sprintf("%s startup costs breakdown", businessType),
		fmt.Sprintf("%s licensing requirements %s", businessType, loc),
		fmt.Sprintf("%s customer acquisition channels", businessType),
		fmt.Sprintf("%s industry trends challenges", businessType),
	}
}

func digestResults(results map[string][]websearch.Result, queries []string) []string {
	var digest []string
	for _, q := range queries {
		for _, r := range results[q] {
			if strings.TrimSpace(r.Snippet) == "" {
				continue
			}
			digest = append(digest, fmt.Sprintf("%s: %s", r.Title, r.Snippet))
			if len(digest) >= maxSearchDigestLines {
				return digest
			}
		}
	}
	return digest
}

// typeKeywords maps idea phrasing to a business type label. First match
// wins, so more specific phrases come first.
var typeKeywords = []struct {
	keyword string
	label   string
}{
	{"saas", "saas"},
	{"software as a service", "saas"},
	{"subscription software", "saas"},
	{"mobile app", "mobile_app"},
	{"app for", "mobile_app"},
	{"marketplace", "marketplace"},
	{"platform connecting", "marketplace"},
	{"online store", "ecommerce"},
	{"e-commerce", "ecommerce"},
	{"ecommerce", "ecommerce"},
	{"sell online", "ecommerce"},
	{"restaurant", "food_beverage"},
	{"cafe", "food_beverage"},
	{"coffee", "food_beverage"},
	{"bakery", "food_beverage"},
	{"food truck", "food_beverage"},
	{"bar ", "food_beverage"},
	{"shop", "retail"},
	{"store", "retail"},
	{"boutique", "retail"},
	{"agency", "service"},
	{"consulting", "service"},
	{"cleaning", "service"},
	{"landscaping", "service"},
	{"salon", "service"},
	{"studio", "service"},
}

// InferBusinessType guesses a type label from the idea text when the
// request does not name one.
func InferBusinessType(idea string) string {
	lowered := strings.ToLower(idea)
	for _, tk := range typeKeywords {
		if strings.Contains(lowered, tk.keyword) {
			return tk.label
		}
	}
	return "general"
}

// InjectVerifiedFacts overlays database-verified facts onto the finished
// document: legal requirements become verified entries, recommended tools
// join the operations tooling list, and startup cost facts are added to
// the financial assumptions. The overlay is idempotent.
func InjectVerifiedFacts(doc *PlanDocument, facts factstore.VerifiedFacts) {
	if facts.Empty() {
		return
	}

	for _, req := range facts.LegalRequirements {
		idx := -1
		for i, existing := range doc.Legal.Requirements {
			if strings.EqualFold(strings.TrimSpace(existing.Content), strings.TrimSpace(req)) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			doc.Legal.Requirements[idx].Verified = true
			continue
		}
		doc.Legal.Requirements = append(doc.Legal.Requirements, VerifiedItem{Content: req, Verified: true})
	}

	doc.Operations.Tools = appendMissing(doc.Operations.Tools, facts.Tools)

	costNotes := make([]string, 0, len(facts.StartupCosts))
	for _, c := range facts.StartupCosts {
		costNotes = append(costNotes, "Verified cost: "+c)
	}
	doc.FinancialProjections.Assumptions = appendMissing(doc.FinancialProjections.Assumptions, costNotes)
}

func appendMissing(dst []string, add []string) []string {
	for _, item := range add {
		found := false
		for _, existing := range dst {
			if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(item)) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
