package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

type OpenAIChatCompleter interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type OpenAIProvider struct {
	chat  OpenAIChatCompleter
	model openai.ChatModel
}

func NewOpenAIProviderFromEnv() (*OpenAIProvider, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not configured")
	}
	model := openai.ChatModel(strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL")))
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{chat: &c.Chat.Completions, model: model}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := p.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
