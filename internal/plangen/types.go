package plangen

import (
	"fmt"
	"strings"
	"time"

	"github.com/planforge/planforge/internal/factstore"
	"github.com/planforge/planforge/internal/marketintel"
)

type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneBold         Tone = "bold"
)

type JargonLevel string

const (
	JargonMinimal   JargonLevel = "minimal"
	JargonModerate  JargonLevel = "moderate"
	JargonTechnical JargonLevel = "technical"
)

type Audience string

const (
	AudienceInvestors Audience = "investors"
	AudienceLenders   Audience = "lenders"
	AudienceInternal  Audience = "internal"
)

type Personalization struct {
	Tone        Tone        `json:"tone,omitempty"`
	JargonLevel JargonLevel `json:"jargonLevel,omitempty"`
	Audience    Audience    `json:"audience,omitempty"`
}

// PlanRequest is immutable once received; CacheKey is derived from it.
type PlanRequest struct {
	Idea            string          `json:"idea"`
	Location        string          `json:"location,omitempty"`
	Budget          string          `json:"budget,omitempty"`
	Timeline        string          `json:"timeline,omitempty"`
	BusinessType    string          `json:"businessType,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	Personalization Personalization `json:"personalization,omitempty"`
}

// CacheKey serializes the normalized request fields plus a coarse time
// bucket. Two identical requests inside the same bucket share one
// computation.
func CacheKey(req PlanRequest, now time.Time) string {
	bucket := now.Unix() / int64(30*time.Minute/time.Second)
	fields := []string{
		strings.ToLower(strings.TrimSpace(req.Idea)),
		strings.ToLower(strings.TrimSpace(req.Location)),
		strings.ToLower(strings.TrimSpace(req.Budget)),
		strings.ToLower(strings.TrimSpace(req.Timeline)),
		strings.ToLower(strings.TrimSpace(req.BusinessType)),
		strings.ToLower(strings.TrimSpace(req.Currency)),
		string(req.Personalization.Tone),
		string(req.Personalization.JargonLevel),
		string(req.Personalization.Audience),
		fmt.Sprintf("b%d", bucket),
	}
	return strings.Join(fields, "|")
}

type Risk struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Probability Level  `json:"probability"`
	Impact      Level  `json:"impact"`
	Priority    int    `json:"priority"`
	Mitigation  string `json:"mitigation"`
	Timeline    string `json:"timeline"`
}

type FinancialProjection struct {
	Period      string   `json:"period"`
	Revenue     float64  `json:"revenue"`
	Costs       float64  `json:"costs"`
	Profit      float64  `json:"profit"`
	Customers   int      `json:"customers"`
	Assumptions []string `json:"assumptions"`
}

// NewProjection is the only constructor: profit is always derived, never
// independently set.
func NewProjection(period string, revenue, costs float64, customers int, assumptions []string) FinancialProjection {
	if customers < 0 {
		customers = 0
	}
	return FinancialProjection{
		Period:      period,
		Revenue:     revenue,
		Costs:       costs,
		Profit:      revenue - costs,
		Customers:   customers,
		Assumptions: assumptions,
	}
}

type Milestone struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Phase        string   `json:"phase"`
	DurationWeeks int     `json:"durationWeeks"`
	Deliverables []string `json:"deliverables"`
	DependsOn    []string `json:"dependsOn"`
}

type MarketingChannel struct {
	Channel       string `json:"channel"`
	BudgetShare   string `json:"budgetShare"`
	ExpectedCAC   string `json:"expectedCac"`
	FirstCampaign string `json:"firstCampaign"`
}

type VerifiedItem struct {
	Content  string `json:"content"`
	Verified bool   `json:"verified"`
}

type MarketAnalysisSection struct {
	Narrative string                 `json:"narrative"`
	Data      marketintel.MarketData `json:"data"`
}

type CompetitiveSection struct {
	Narrative   string                   `json:"narrative"`
	Competitors []marketintel.Competitor `json:"competitors"`
}

type FinancialSection struct {
	Year1Monthly   []FinancialProjection `json:"year1Monthly"`
	Year2Quarterly []FinancialProjection `json:"year2Quarterly"`
	Year3Quarterly []FinancialProjection `json:"year3Quarterly"`
	Assumptions    []string              `json:"assumptions"`
}

type MarketingSection struct {
	Positioning string             `json:"positioning"`
	Channels    []MarketingChannel `json:"channels"`
	BudgetNote  string             `json:"budgetNote"`
}

type OperationsSection struct {
	Summary      string   `json:"summary"`
	TeamPlan     []string `json:"teamPlan"`
	KeyProcesses []string `json:"keyProcesses"`
	Tools        []string `json:"tools"`
}

type FundingSection struct {
	Summary    string   `json:"summary"`
	AmountAsk  string   `json:"amountAsk"`
	UseOfFunds []string `json:"useOfFunds"`
}

type LegalSection struct {
	Summary      string         `json:"summary"`
	Requirements []VerifiedItem `json:"requirements"`
	Structure    string         `json:"structure"`
}

// PlanDocument is the final aggregate. Every top-level section must be
// non-trivially populated before it reaches the caller; the completeness
// validator is the sole writer that enforces this.
type PlanDocument struct {
	ExecutiveSummary       string                `json:"executiveSummary"`
	MarketAnalysis         MarketAnalysisSection `json:"marketAnalysis"`
	CompetitiveAnalysis    CompetitiveSection    `json:"competitiveAnalysis"`
	RiskAnalysis           []Risk                `json:"riskAnalysis"`
	FinancialProjections   FinancialSection      `json:"financialProjections"`
	MarketingStrategy      MarketingSection      `json:"marketingStrategy"`
	Operations             OperationsSection     `json:"operations"`
	Roadmap                []Milestone           `json:"roadmap"`
	Funding                FundingSection        `json:"funding"`
	Legal                  LegalSection          `json:"legal"`
	Sources                []string              `json:"sources"`
	LastUpdated            string                `json:"lastUpdated"`
	ComprehensivenessScore int                   `json:"comprehensivenessScore"`
}

// Aggregates carries everything computed before the LLM call, so the
// validator can backfill sections without another model round-trip.
type Aggregates struct {
	Request      PlanRequest
	BusinessType string
	Market       marketintel.MarketData
	Competitors  []marketintel.Competitor
	Risks        []Risk
	Financials   FinancialSection
	Marketing    MarketingSection
	Roadmap      []Milestone
	Facts        factstore.VerifiedFacts
	SearchDigest []string
}
