package marketintel

import "strings"

// IndustryProfile carries the deterministic defaults used whenever live
// enrichment has nothing: market sizing multipliers, trend defaults, and
// the attributes backfilled onto competitor records.
type IndustryProfile struct {
	Key                string
	TAMUSD             float64
	SAMShare           float64
	SOMShare           float64
	CAGRPct            float64
	GrowthPct          float64
	Seasonality        string
	KeyDrivers         []string
	Threats            []string
	PricingModel       string
	PricingRange       string
	RevenuePerCustomer float64
	ChurnRiskNote      string
}

var DefaultProfiles = map[string]IndustryProfile{
	"saas": {
		Key:                "saas",
		TAMUSD:             195_000_000_000,
		SAMShare:           0.06,
		SOMShare:           0.004,
		CAGRPct:            13.7,
		GrowthPct:          11.2,
		Seasonality:        "Low seasonality; Q4 enterprise budget flush",
		KeyDrivers:         []string{"Cloud adoption", "Remote work tooling", "AI-assisted workflows"},
		Threats:            []string{"Platform consolidation", "Per-seat pricing pressure"},
		PricingModel:       "subscription",
		PricingRange:       "$15-$99/mo",
		RevenuePerCustomer: 79,
		ChurnRiskNote:      "Monthly churn above 5% erodes compounding growth",
	},
	"ecommerce": {
		Key:                "ecommerce",
		TAMUSD:             1_100_000_000_000,
		SAMShare:           0.02,
		SOMShare:           0.0008,
		CAGRPct:            9.4,
		GrowthPct:          8.1,
		Seasonality:        "Strong Q4 peak; summer trough",
		KeyDrivers:         []string{"Mobile checkout", "Social commerce", "Same-day logistics"},
		Threats:            []string{"Marketplace fee increases", "Paid acquisition costs"},
		PricingModel:       "per-unit",
		PricingRange:       "$10-$120/order",
		RevenuePerCustomer: 62,
		ChurnRiskNote:      "Repeat purchase rate under 20% signals weak retention",
	},
	"food_beverage": {
		Key:                "food_beverage",
		TAMUSD:             860_000_000_000,
		SAMShare:           0.01,
		SOMShare:           0.0004,
		CAGRPct:            5.2,
		GrowthPct:          4.0,
		Seasonality:        "Weekday morning peaks; weather-sensitive foot traffic",
		KeyDrivers:         []string{"Specialty demand", "Convenience formats", "Local sourcing"},
		Threats:            []string{"Commodity price swings", "Labor availability"},
		PricingModel:       "per-unit",
		PricingRange:       "$4-$12/ticket",
		RevenuePerCustomer: 9,
		ChurnRiskNote:      "Location dependence concentrates revenue risk",
	},
	"retail": {
		Key:                "retail",
		TAMUSD:             540_000_000_000,
		SAMShare:           0.015,
		SOMShare:           0.0006,
		CAGRPct:            4.1,
		GrowthPct:          3.2,
		Seasonality:        "Holiday-quarter concentration",
		KeyDrivers:         []string{"Experiential retail", "Omnichannel inventory"},
		Threats:            []string{"Online substitution", "Rent escalation"},
		PricingModel:       "per-unit",
		PricingRange:       "$15-$200/item",
		RevenuePerCustomer: 48,
		ChurnRiskNote:      "Thin margins amplify inventory mistakes",
	},
	"service": {
		Key:                "service",
		TAMUSD:             310_000_000_000,
		SAMShare:           0.02,
		SOMShare:           0.001,
		CAGRPct:            6.8,
		GrowthPct:          5.5,
		Seasonality:        "Steady demand; modest Q1 budget resets",
		KeyDrivers:         []string{"Outsourcing trend", "Specialist scarcity"},
		Threats:            []string{"Commoditization", "Client concentration"},
		PricingModel:       "hourly or retainer",
		PricingRange:       "$75-$250/hr",
		RevenuePerCustomer: 1200,
		ChurnRiskNote:      "Utilization under 60% breaks the labor model",
	},
	"marketplace": {
		Key:                "marketplace",
		TAMUSD:             420_000_000_000,
		SAMShare:           0.03,
		SOMShare:           0.0009,
		CAGRPct:            15.1,
		GrowthPct:          12.6,
		Seasonality:        "Category-dependent; network effects dampen swings",
		KeyDrivers:         []string{"Supply-side liquidity", "Trust and escrow tooling"},
		Threats:            []string{"Disintermediation", "Winner-take-most dynamics"},
		PricingModel:       "take-rate",
		PricingRange:       "8%-20% commission",
		RevenuePerCustomer: 34,
		ChurnRiskNote:      "Cold-start on both sides is the dominant failure mode",
	},
	"mobile_app": {
		Key:                "mobile_app",
		TAMUSD:             250_000_000_000,
		SAMShare:           0.04,
		SOMShare:           0.0012,
		CAGRPct:            12.3,
		GrowthPct:          10.4,
		Seasonality:        "App-store feature cycles; January install spike",
		KeyDrivers:         []string{"Smartphone penetration", "In-app subscriptions"},
		Threats:            []string{"Store policy changes", "Install cost inflation"},
		PricingModel:       "freemium",
		PricingRange:       "$0-$14.99/mo",
		RevenuePerCustomer: 6,
		ChurnRiskNote:      "Day-30 retention under 10% is typical and brutal",
	},
	"default": {
		Key:                "default",
		TAMUSD:             120_000_000_000,
		SAMShare:           0.02,
		SOMShare:           0.0008,
		CAGRPct:            6.0,
		GrowthPct:          4.5,
		Seasonality:        "No pronounced seasonality identified",
		KeyDrivers:         []string{"Digitization", "Changing consumer preferences"},
		Threats:            []string{"Incumbent response", "Economic cycles"},
		PricingModel:       "per-unit",
		PricingRange:       "varies",
		RevenuePerCustomer: 50,
		ChurnRiskNote:      "Unvalidated demand is the leading early risk",
	},
}

var profileAliases = []struct {
	keywords []string
	key      string
}{
	{[]string{"saas", "software", "b2b tool", "platform", "api"}, "saas"},
	{[]string{"coffee", "restaurant", "food", "beverage", "cafe", "bakery", "bar "}, "food_beverage"},
	{[]string{"ecommerce", "e-commerce", "online store", "online shop", "dropship"}, "ecommerce"},
	{[]string{"retail", "boutique", "store", "shop"}, "retail"},
	{[]string{"marketplace", "two-sided", "platform connecting"}, "marketplace"},
	{[]string{"mobile app", "ios", "android", "app "}, "mobile_app"},
	{[]string{"service", "consulting", "agency", "freelance", "physical"}, "service"},
}

// ProfileFor resolves a free-text business type to a profile. Matching is
// substring-based and ordered, so "saas marketplace" resolves to saas.
func ProfileFor(businessType string) IndustryProfile {
	needle := strings.ToLower(strings.TrimSpace(businessType))
	if needle == "" {
		return DefaultProfiles["default"]
	}
	if p, ok := DefaultProfiles[needle]; ok {
		return p
	}
	for _, alias := range profileAliases {
		for _, kw := range alias.keywords {
			if strings.Contains(needle, kw) {
				return DefaultProfiles[alias.key]
			}
		}
	}
	return DefaultProfiles["default"]
}
