package marketintel

type Demand string

const (
	DemandRising    Demand = "Rising"
	DemandStable    Demand = "Stable"
	DemandDeclining Demand = "Declining"
)

type MarketSize struct {
	TAM         string  `json:"tam"`
	SAM         string  `json:"sam"`
	SOM         string  `json:"som"`
	CAGR        float64 `json:"cagr"`
	Source      string  `json:"source"`
	LastUpdated string  `json:"lastUpdated"`
}

type MarketTrends struct {
	GrowthRate  float64  `json:"growthRate"`
	Demand      Demand   `json:"demand"`
	Seasonality string   `json:"seasonality"`
	KeyDrivers  []string `json:"keyDrivers"`
	Threats     []string `json:"threats"`
}

type MarketData struct {
	Size    MarketSize   `json:"size"`
	Trends  MarketTrends `json:"trends"`
	Sources []string     `json:"sources"`
}

type PricingInfo struct {
	Model string `json:"model"`
	Range string `json:"range"`
}

type Competitor struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	MarketShare     string      `json:"marketShare,omitempty"`
	Funding         string      `json:"funding,omitempty"`
	Strengths       []string    `json:"strengths"`
	Weaknesses      []string    `json:"weaknesses"`
	Pricing         PricingInfo `json:"pricing"`
	Features        []string    `json:"features"`
	Differentiators []string    `json:"differentiators"`
}

// Snapshot is what a live market-data provider returns. A nil snapshot
// means the provider had nothing and the caller falls back to heuristics.
type Snapshot struct {
	TAMUSD      float64      `json:"tam_usd"`
	SAMUSD      float64      `json:"sam_usd"`
	SOMUSD      float64      `json:"som_usd"`
	CAGRPct     float64      `json:"cagr_pct"`
	GrowthPct   float64      `json:"growth_pct"`
	Sentiment   int          `json:"sentiment"`
	Source      string       `json:"source"`
	Competitors []Competitor `json:"competitors"`
}
