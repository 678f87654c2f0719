package marketintel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newProviderServer(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPProvider(ProviderConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
}

func TestProviderUnconfigured(t *testing.T) {
	p := NewHTTPProvider(ProviderConfig{})
	if p.Configured() {
		t.Fatal("empty config reported as configured")
	}
	snap, err := p.ComprehensiveMarketData(context.Background(), "saas", "Austin")
	if snap != nil || err != nil {
		t.Fatalf("got %v, %v", snap, err)
	}
}

func TestProviderFetchesSnapshot(t *testing.T) {
	p := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "test-key" {
			t.Errorf("key missing from query: %s", r.URL.RawQuery)
		}
		if q.Get("type") != "saas" || q.Get("location") != "Austin, TX" {
			t.Errorf("type = %q, location = %q", q.Get("type"), q.Get("location"))
		}
		_ = json.NewEncoder(w).Encode(Snapshot{
			TAMUSD: 2_000_000_000, SAMUSD: 100_000_000, SOMUSD: 5_000_000,
			CAGRPct: 9.9, Source: "live feed",
			Competitors: []Competitor{{Name: "GroomPro"}},
		})
	})

	snap, err := p.ComprehensiveMarketData(context.Background(), "saas", "Austin, TX")
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil || snap.TAMUSD != 2_000_000_000 || snap.Source != "live feed" {
		t.Fatalf("got %+v", snap)
	}
	if len(snap.Competitors) != 1 || snap.Competitors[0].Name != "GroomPro" {
		t.Fatalf("competitors not decoded: %+v", snap.Competitors)
	}
}

func TestProviderNotFoundMeansNoData(t *testing.T) {
	p := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	snap, err := p.ComprehensiveMarketData(context.Background(), "underwater basket weaving", "US")
	if snap != nil || err != nil {
		t.Fatalf("got %v, %v", snap, err)
	}
}

func TestProviderServerErrorSurfaces(t *testing.T) {
	p := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	if _, err := p.ComprehensiveMarketData(context.Background(), "saas", "US"); err == nil {
		t.Fatal("expected an error for a 502")
	}
}

func TestProviderRejectsMalformedBody(t *testing.T) {
	p := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	if _, err := p.ComprehensiveMarketData(context.Background(), "saas", "US"); err == nil {
		t.Fatal("expected a decode error")
	}
}
