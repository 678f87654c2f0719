package marketintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ProviderConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPProvider fetches comprehensive market snapshots from a JSON
// market-data API. Unlike the search client it surfaces errors: the
// aggregator logs them and falls back to heuristics, so callers still
// never see a failure.
type HTTPProvider struct {
	cfg ProviderConfig
}

func NewHTTPProvider(cfg ProviderConfig) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = providerTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPProvider{cfg: cfg}
}

func (p *HTTPProvider) Configured() bool {
	return p != nil && strings.TrimSpace(p.cfg.APIKey) != "" && strings.TrimSpace(p.cfg.BaseURL) != ""
}

func (p *HTTPProvider) ComprehensiveMarketData(ctx context.Context, businessType, location string) (*Snapshot, error) {
	if !p.Configured() {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s?key=%s&type=%s&location=%s",
		strings.TrimRight(p.cfg.BaseURL, "/"),
		url.QueryEscape(p.cfg.APIKey),
		url.QueryEscape(businessType),
		url.QueryEscape(location),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	res, err := p.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 2<<20))

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data api status %d", res.StatusCode)
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode market snapshot: %w", err)
	}
	return &snap, nil
}
