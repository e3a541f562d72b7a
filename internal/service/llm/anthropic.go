package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic calls the Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewAnthropic(apiKey, model string, temperature float64, maxTokens int, opts ...option.RequestOption) *Anthropic {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Anthropic{
		client:      anthropic.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Summarize(ctx context.Context, instructions, content string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
		System: []anthropic.TextBlockParam{{Text: instructions}},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(a.temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: no text content")
	}
	return strings.TrimSpace(sb.String()), nil
}
