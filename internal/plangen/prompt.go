package plangen

import (
	"encoding/json"
	"fmt"
	"strings"
)

const SystemPrompt = "You are a senior business planning consultant. You write complete, specific, realistic business plans grounded in the data you are given. Respond with strict JSON only."

// sectionPlaceholder keeps the instruction to the model well-formed when
// an aggregator produced nothing: sections are never silently dropped.
const sectionPlaceholder = "(research in progress; produce your best estimate from context)"

var toneInstructions = map[Tone]string{
	ToneProfessional: "Write in a measured, professional voice.",
	ToneFriendly:     "Write in a warm, encouraging voice without losing rigor.",
	ToneBold:         "Write in a confident, direct voice that takes clear positions.",
}

var jargonInstructions = map[JargonLevel]string{
	JargonMinimal:   "Avoid jargon; explain any unavoidable term in plain words.",
	JargonModerate:  "Standard business vocabulary is fine; define niche terms.",
	JargonTechnical: "Industry terminology is welcome; the reader is an expert.",
}

var audienceInstructions = map[Audience]string{
	AudienceInvestors: "The reader is an investor evaluating upside and risk.",
	AudienceLenders:   "The reader is a lender focused on repayment capacity and downside protection.",
	AudienceInternal:  "The reader is the founding team; optimize for actionability.",
}

const planSchemaPrompt = `Required JSON schema (all ten sections are mandatory, none may be omitted):
{
  "executiveSummary": "string (>= 120 words)",
  "marketAnalysis": {"narrative": "string (>= 80 words)", "data": <echo the market data you were given>},
  "competitiveAnalysis": {"narrative": "string", "competitors": [<echo and enrich the competitor records>]},
  "riskAnalysis": [{"category":"string","description":"string","probability":"Low|Medium|High","impact":"Low|Medium|High","priority":1,"mitigation":"string","timeline":"string"}],
  "financialProjections": {"year1Monthly":[12 entries],"year2Quarterly":[4 entries],"year3Quarterly":[4 entries],"assumptions":["string"]},
  "marketingStrategy": {"positioning":"string","channels":[{"channel":"string","budgetShare":"string","expectedCac":"string","firstCampaign":"string"}],"budgetNote":"string"},
  "operations": {"summary":"string (>= 80 words)","teamPlan":["string"],"keyProcesses":["string"],"tools":["string"]},
  "roadmap": [{"id":"string","title":"string","phase":"string","durationWeeks":1,"deliverables":["string"],"dependsOn":["string"]}],
  "funding": {"summary":"string (>= 60 words)","amountAsk":"string","useOfFunds":["string"]},
  "legal": {"summary":"string (>= 60 words)","requirements":[{"content":"string","verified":false}],"structure":"string"}
}`

const simplifiedSchemaPrompt = `Required JSON schema. Keep every string under 60 words, no markdown, no commentary:
{
  "executiveSummary": "string",
  "marketAnalysis": {"narrative": "string"},
  "competitiveAnalysis": {"narrative": "string"},
  "operations": {"summary": "string", "teamPlan": ["string"], "keyProcesses": ["string"], "tools": ["string"]},
  "funding": {"summary": "string", "amountAsk": "string", "useOfFunds": ["string"]},
  "legal": {"summary": "string", "structure": "string"}
}`

// ComposePrompt renders the full instruction document: personalization
// directives, every aggregator output as readable text, and the exact
// output schema. Pure formatting; no I/O.
func ComposePrompt(agg Aggregates) string {
	req := agg.Request
	var b strings.Builder

	b.WriteString("Write a complete business plan for the following idea.\n\n")
	fmt.Fprintf(&b, "Idea: %s\n", req.Idea)
	writeField(&b, "Location", req.Location)
	writeField(&b, "Budget", req.Budget)
	writeField(&b, "Timeline", req.Timeline)
	writeField(&b, "Business type", agg.BusinessType)
	writeField(&b, "Currency", req.Currency)

	tone, jargon, audience := normalizePersonalization(req.Personalization)
	b.WriteString("\nVoice and audience:\n")
	b.WriteString("- " + toneInstructions[tone] + "\n")
	b.WriteString("- " + jargonInstructions[jargon] + "\n")
	b.WriteString("- " + audienceInstructions[audience] + "\n")

	b.WriteString("\nComputed market data (treat as ground truth):\n")
	b.WriteString(mustJSON(agg.Market) + "\n")

	b.WriteString("\nKnown competitors:\n")
	if len(agg.Competitors) > 0 {
		b.WriteString(mustJSON(agg.Competitors) + "\n")
	} else {
		b.WriteString(sectionPlaceholder + "\n")
	}

	b.WriteString("\nRisk register (keep ordering and priorities):\n")
	b.WriteString(mustJSON(agg.Risks) + "\n")

	b.WriteString("\nFinancial model (echo these figures; do not invent new ones):\n")
	b.WriteString(mustJSON(agg.Financials) + "\n")

	b.WriteString("\nMarketing plan basis:\n")
	b.WriteString(mustJSON(agg.Marketing) + "\n")

	b.WriteString("\nRoadmap milestones (keep ids and dependencies):\n")
	b.WriteString(mustJSON(agg.Roadmap) + "\n")

	b.WriteString("\nVerified facts from our database (mark these verified:true; everything else verified:false):\n")
	if !agg.Facts.Empty() {
		b.WriteString(mustJSON(agg.Facts) + "\n")
	} else {
		b.WriteString(sectionPlaceholder + "\n")
	}

	b.WriteString("\nResearch notes from web search:\n")
	if len(agg.SearchDigest) > 0 {
		for _, line := range agg.SearchDigest {
			b.WriteString("- " + line + "\n")
		}
	} else {
		b.WriteString(sectionPlaceholder + "\n")
	}

	b.WriteString("\n" + planSchemaPrompt + "\n\nRespond with only valid JSON matching the schema.")
	return b.String()
}

// ComposeSimplifiedPrompt is the recovery path after unparseable output:
// a much shorter instruction with a smaller, stricter schema. Sections it
// omits are backfilled from aggregator data afterwards.
func ComposeSimplifiedPrompt(agg Aggregates) string {
	req := agg.Request
	var b strings.Builder
	b.WriteString("Write a concise business plan summary for this idea. Brevity matters more than depth.\n\n")
	fmt.Fprintf(&b, "Idea: %s\n", req.Idea)
	writeField(&b, "Location", req.Location)
	writeField(&b, "Budget", req.Budget)
	fmt.Fprintf(&b, "Business type: %s\n", agg.BusinessType)
	fmt.Fprintf(&b, "Market size: %s TAM, %s demand\n", agg.Market.Size.TAM, agg.Market.Trends.Demand)
	b.WriteString("\n" + simplifiedSchemaPrompt + "\n\nRespond with only valid JSON matching the schema.")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

// normalizePersonalization snaps free-form request values onto the fixed
// enumerations, defaulting anything unrecognized.
func normalizePersonalization(p Personalization) (Tone, JargonLevel, Audience) {
	tone := p.Tone
	if _, ok := toneInstructions[tone]; !ok {
		tone = ToneProfessional
	}
	jargon := p.JargonLevel
	if _, ok := jargonInstructions[jargon]; !ok {
		jargon = JargonModerate
	}
	audience := p.Audience
	if _, ok := audienceInstructions[audience]; !ok {
		audience = AudienceInternal
	}
	return tone, jargon, audience
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
