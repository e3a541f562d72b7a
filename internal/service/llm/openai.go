package llm

import (
	"context"
	"fmt"
	"strings"

	xhttp "MarketPulse/pkg/http"
)

// OpenAI calls the chat completions endpoint.
type OpenAI struct {
	client      *xhttp.Client
	url         string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(client *xhttp.Client, url, apiKey, model string, temperature float64, maxTokens int) *OpenAI {
	return &OpenAI{
		client:      client,
		url:         url,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (o *OpenAI) Name() string { return "openai" }

// Summarize sends instructions as the system message and content as the user message.
func (o *OpenAI) Summarize(ctx context.Context, instructions, content string) (string, error) {
	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: content},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	var resp chatResponse
	err := o.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    o.url,
		Headers: map[string]string{
			"Authorization": "Bearer " + o.apiKey,
			"Content-Type":  "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
