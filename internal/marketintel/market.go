package marketintel

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/planforge/planforge/internal/websearch"
)

const providerTimeout = 10 * time.Second

// Provider is a live comprehensive-market-data source. Returning a nil
// snapshot without error means "no data for this business type".
type Provider interface {
	ComprehensiveMarketData(ctx context.Context, businessType, location string) (*Snapshot, error)
}

type MarketAggregator struct {
	provider Provider
}

func NewMarketAggregator(provider Provider) *MarketAggregator {
	return &MarketAggregator{provider: provider}
}

// Build produces a complete MarketData for the business type, plus any
// location-sourced competitors the live provider returned. The provider
// is attempted first; any failure or empty answer falls back to the
// profile-table heuristics, which never fail and carry no competitors.
func (a *MarketAggregator) Build(ctx context.Context, businessType, location string, searchResults []websearch.Result) (MarketData, []Competitor) {
	if a.provider != nil {
		pctx, cancel := context.WithTimeout(ctx, providerTimeout)
		snap, err := a.provider.ComprehensiveMarketData(pctx, businessType, location)
		cancel()
		if err != nil {
			log.Printf("marketintel provider failed type=%q err=%v", businessType, err)
		} else if snap != nil && snap.TAMUSD > 0 {
			return fromSnapshot(snap, businessType, searchResults), snap.Competitors
		}
	}
	return HeuristicMarketData(businessType, searchResults), nil
}

func fromSnapshot(snap *Snapshot, businessType string, searchResults []websearch.Result) MarketData {
	profile := ProfileFor(businessType)
	sentiment := snap.Sentiment
	if sentiment == 0 {
		sentiment = snippetSentiment(searchResults)
	}
	source := snap.Source
	if strings.TrimSpace(source) == "" {
		source = "market data provider"
	}
	return MarketData{
		Size: MarketSize{
			TAM:         FormatUSD(snap.TAMUSD),
			SAM:         FormatUSD(snap.SAMUSD),
			SOM:         FormatUSD(snap.SOMUSD),
			CAGR:        snap.CAGRPct,
			Source:      source,
			LastUpdated: time.Now().UTC().Format("2006-01-02"),
		},
		Trends: MarketTrends{
			GrowthRate:  snap.GrowthPct,
			Demand:      ClassifyDemand(sentiment, snap.GrowthPct),
			Seasonality: profile.Seasonality,
			KeyDrivers:  profile.KeyDrivers,
			Threats:     profile.Threats,
		},
		Sources: []string{source},
	}
}

// HeuristicMarketData is the base case of the whole pipeline: it always
// returns a fully populated MarketData and cannot fail.
func HeuristicMarketData(businessType string, searchResults []websearch.Result) MarketData {
	profile := ProfileFor(businessType)
	tam := profile.TAMUSD
	sam := tam * profile.SAMShare
	// SOM share is expressed against TAM, not SAM.
	som := tam * profile.SOMShare

	return MarketData{
		Size: MarketSize{
			TAM:         FormatUSD(tam),
			SAM:         FormatUSD(sam),
			SOM:         FormatUSD(som),
			CAGR:        profile.CAGRPct,
			Source:      "industry profile estimate",
			LastUpdated: time.Now().UTC().Format("2006-01-02"),
		},
		Trends: MarketTrends{
			GrowthRate:  profile.GrowthPct,
			Demand:      ClassifyDemand(snippetSentiment(searchResults), profile.GrowthPct),
			Seasonality: profile.Seasonality,
			KeyDrivers:  profile.KeyDrivers,
			Threats:     profile.Threats,
		},
		Sources: []string{"industry profile estimate"},
	}
}

// ClassifyDemand applies the fixed thresholds: Rising needs a positive
// sentiment signal and growth above 2%; Declining needs negative
// sentiment or negative growth; everything else is Stable.
func ClassifyDemand(sentiment int, growthPct float64) Demand {
	if sentiment > 0 && growthPct > 2.0 {
		return DemandRising
	}
	if sentiment < 0 || growthPct < 0 {
		return DemandDeclining
	}
	return DemandStable
}

var positiveSignals = []string{"growing", "growth", "surge", "booming", "rising", "expand", "record demand"}
var negativeSignals = []string{"declining", "decline", "shrinking", "downturn", "slump", "saturation", "falling"}

func snippetSentiment(results []websearch.Result) int {
	score := 0
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Snippet)
		for _, s := range positiveSignals {
			if strings.Contains(text, s) {
				score++
			}
		}
		for _, s := range negativeSignals {
			if strings.Contains(text, s) {
				score--
			}
		}
	}
	return score
}

// FormatUSD renders a dollar amount in compact form. NaN, infinite, and
// non-positive values get a descriptive string instead of "$NaN".
func FormatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return "Not yet quantified"
	}
	switch {
	case v >= 1e12:
		return trimZero(fmt.Sprintf("$%.1fT", v/1e12))
	case v >= 1e9:
		return trimZero(fmt.Sprintf("$%.1fB", v/1e9))
	case v >= 1e6:
		return trimZero(fmt.Sprintf("$%.1fM", v/1e6))
	case v >= 1e3:
		return trimZero(fmt.Sprintf("$%.1fK", v/1e3))
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}
