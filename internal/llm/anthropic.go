package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicProvider struct {
	messages AnthropicMessager
	model    anthropic.Model
}

func NewAnthropicProviderFromEnv() (*AnthropicProvider, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{messages: &c.Messages, model: anthropic.ModelClaudeSonnet4_20250514}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := p.messages.New(ctx, anthropic.MessageNewParams{
		Model:       p.model,
		MaxTokens:   int64(maxTokens),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt))},
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}
