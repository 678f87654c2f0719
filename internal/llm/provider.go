package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Provider is one LLM completion backend with a uniform contract. The
// gateway walks an ordered list of these until one succeeds.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

type failureClass int

const (
	failureNone failureClass = iota
	failureRateLimit
	failureTimeout
	failureServer
	failureClient
	failureEmpty
)

func classifyError(err error) failureClass {
	if err == nil {
		return failureNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") || strings.Contains(msg, "quota"):
		return failureRateLimit
	case strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error") || strings.Contains(msg, "overloaded"):
		return failureServer
	case strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}
