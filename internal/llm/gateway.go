package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const CallTimeout = 25 * time.Second

var (
	ErrAllRateLimited = errors.New("all completion providers are rate limited")
	ErrUnavailable    = errors.New("AI providers unavailable")
)

var (
	fallbackCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planforge_llm_fallbacks_total",
		Help: "Completions that fell through to a secondary provider.",
	})
	rateLimitCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planforge_llm_rate_limited_total",
		Help: "Provider attempts rejected with a rate limit.",
	})
)

// Gateway walks an ordered provider list until one returns a non-empty
// completion. Later providers are never contacted when an earlier one
// succeeds. When every provider fails, the returned error distinguishes
// "everything was rate limited" from a generic outage.
type Gateway struct {
	providers []Provider
}

func NewGateway(providers ...Provider) (*Gateway, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one completion provider is required")
	}
	return &Gateway{providers: providers}, nil
}

func (g *Gateway) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	allRateLimited := true
	var failures []string

	for i, p := range g.providers {
		if i > 0 {
			fallbackCounter.Inc()
		}
		cctx, cancel := context.WithTimeout(ctx, CallTimeout)
		raw, err := p.Complete(cctx, systemPrompt, userPrompt, maxTokens, temperature)
		cancel()
		if err == nil && strings.TrimSpace(raw) == "" {
			err = errors.New("empty completion body")
		}
		if err == nil {
			return raw, nil
		}

		class := classifyError(err)
		if class == failureRateLimit {
			rateLimitCounter.Inc()
		} else {
			allRateLimited = false
		}
		log.Printf("llm provider failed provider=%s class=%d err=%v", p.Name(), class, err)
		failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
	}

	if allRateLimited {
		return "", fmt.Errorf("%w: %s", ErrAllRateLimited, strings.Join(failures, "; "))
	}
	return "", fmt.Errorf("%w: %s", ErrUnavailable, strings.Join(failures, "; "))
}
